package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// SpeedClass is a locomotion gear requested by the AI.
type SpeedClass uint8

const (
	SpeedWalk SpeedClass = iota
	SpeedJog
	SpeedRun
	SpeedSprint
)

func (s SpeedClass) key() string {
	switch s {
	case SpeedWalk:
		return "walk"
	case SpeedJog:
		return "jog"
	case SpeedRun:
		return "run"
	}
	return "sprint"
}

// Mover is the force-based locomotion integrator every player shares.
type Mover struct {
	cfg           config.MovementConfig
	forwardAngle  float64
	backwardAngle float64
}

// NewMover creates a movement integrator from configuration.
func NewMover(cfg *config.Config) *Mover {
	return &Mover{
		cfg:           cfg.Movement,
		forwardAngle:  cfg.Derived.ForwardAngleRad,
		backwardAngle: cfg.Derived.BackwardAngleRad,
	}
}

// TopSpeed returns the character's sprint speed from its speed rating.
func (m *Mover) TopSpeed(c *components.Character) float64 {
	return m.cfg.BaseMaxSpeed * Lerp(m.cfg.MinSpeedStatFactor, 1, components.Rating(c.Stats.Speed))
}

// SpeedCap returns the speed limit for a gear, reduced or raised by the
// character's ball and action state.
func (m *Mover) SpeedCap(c *components.Character, class SpeedClass) float64 {
	cap := m.TopSpeed(c) * m.cfg.Classes[class.key()].CapFactor
	if c.HasBall {
		cap *= m.cfg.DribbleFactor
	}
	if c.Action.InProgress() {
		switch {
		case c.Action.Type == components.ActionDribbleBreakthrough && c.Action.Phase == components.PhaseActive:
			cap *= m.cfg.BreakthroughFactor
		case c.Action.Phase == components.PhaseStartup || c.Action.Phase == components.PhaseActive:
			cap *= m.cfg.ActionFactor
		}
	}
	if c.Biting > 0 {
		cap *= m.cfg.BitingFactor
	}
	return cap
}

// DirectionMultiplier scales thrust by how the requested direction relates
// to the character's facing. A cut against the current lateral velocity
// earns the change-of-direction bonus.
func (m *Mover) DirectionMultiplier(c *components.Character, dir r3.Vec) float64 {
	angle, ok := AngleBetween(c.Facing, dir)
	if !ok {
		return 0
	}
	mult := m.cfg.ForwardMultiplier
	switch {
	case angle > m.backwardAngle:
		mult = m.cfg.BackwardMultiplier
	case angle > m.forwardAngle:
		mult = m.cfg.LateralMultiplier
	}

	right := RightVector(c.Facing)
	wantLateral := r3.Dot(dir, right)
	haveLateral := r3.Dot(Flat(c.Velocity), right)
	if math.Abs(wantLateral) > 0.2 && math.Abs(haveLateral) > m.cfg.StopEpsilon && wantLateral*haveLateral < 0 {
		mult *= m.cfg.ChangeDirectionBonus
	}
	return mult
}

// ApplyForce pushes the character along dir (unit or zero) with the given
// force, clamps the result to speedCap and integrates position.
func (m *Mover) ApplyForce(c *components.Character, dir r3.Vec, magnitude, speedCap, dt float64) {
	if dt <= 0 {
		return
	}
	mass := c.Body.Mass
	if mass <= 0 {
		mass = m.cfg.DefaultMass
	}
	accel := r3.Scale(magnitude/mass, Flat(dir))
	v := r3.Add(Flat(c.Velocity), r3.Scale(dt, accel))

	speed := r3.Norm(v)
	if speedCap < 0 {
		speedCap = 0
	}
	if speed > speedCap {
		if speed < Epsilon {
			v = r3.Vec{}
		} else {
			v = r3.Scale(speedCap/speed, v)
		}
	}
	c.Velocity = v
	c.Position = r3.Add(c.Position, r3.Scale(dt, v))
	c.Position.Y = 0
}

// ApplyFriction decelerates the character with a floor friction force
// proportional to its mass and integrates position. Velocity never reverses.
func (m *Mover) ApplyFriction(c *components.Character, dt float64) {
	if dt <= 0 {
		return
	}
	v := Flat(c.Velocity)
	speed := r3.Norm(v)
	mass := c.Body.Mass
	if mass <= 0 {
		mass = m.cfg.DefaultMass
	}
	force := m.cfg.Friction * mass * m.cfg.Gravity
	drop := force / mass * dt
	if speed < m.cfg.StopEpsilon || drop >= speed {
		c.Velocity = r3.Vec{}
		return
	}
	v = r3.Scale((speed-drop)/speed, v)
	c.Velocity = v
	c.Position = r3.Add(c.Position, r3.Scale(dt, v))
	c.Position.Y = 0
}

// Coast brakes a character whose cap may have just dropped, for example when
// a shot starts mid-sprint. Speed is clamped to the gear's current cap before
// friction applies.
func (m *Mover) Coast(c *components.Character, class SpeedClass, dt float64) {
	v := Flat(c.Velocity)
	limit := math.Max(m.SpeedCap(c, class), 0)
	if speed := r3.Norm(v); speed > limit {
		c.Velocity = r3.Scale(limit/speed, v)
	}
	m.ApplyFriction(c, dt)
}

// Drive applies the gear's force along dir, scaled by the direction multiplier.
func (m *Mover) Drive(c *components.Character, dir r3.Vec, class SpeedClass, dt float64) {
	u, ok := SafeUnit(dir)
	if !ok {
		m.ApplyFriction(c, dt)
		return
	}
	force := m.cfg.Classes[class.key()].Force * m.DirectionMultiplier(c, u)
	m.ApplyForce(c, u, force, m.SpeedCap(c, class), dt)
}

// MoveTo drives toward target, easing off inside the slow radius and braking
// on arrival. It reports whether the character has arrived.
func (m *Mover) MoveTo(c *components.Character, target r3.Vec, class SpeedClass, dt float64) bool {
	dist := FlatDistance(c.Position, target)
	if dist <= m.cfg.ArrivalRadius {
		m.ApplyFriction(c, dt)
		return true
	}
	if dist < m.cfg.SlowRadius && class > SpeedJog {
		class = SpeedJog
	}
	if dist < m.cfg.SlowRadius/2 && class > SpeedWalk {
		class = SpeedWalk
	}
	dir, ok := Direction(c.Position, target)
	if !ok {
		m.ApplyFriction(c, dt)
		return true
	}
	m.Drive(c, dir, class, dt)
	return false
}

// TurnTowards rotates facing toward angle, limited by the turn rate.
// It reports whether the facing now matches.
func (m *Mover) TurnTowards(c *components.Character, angle, dt float64) bool {
	diff := AngleDiff(c.Facing, angle)
	step := m.cfg.TurnRate * math.Max(dt, 0)
	if math.Abs(diff) <= step {
		c.Facing = NormalizeAngle(angle)
		return true
	}
	if diff > 0 {
		c.Facing = NormalizeAngle(c.Facing + step)
	} else {
		c.Facing = NormalizeAngle(c.Facing - step)
	}
	return false
}

// FaceTowards turns toward a world point. Coincident points leave facing unchanged.
func (m *Mover) FaceTowards(c *components.Character, point r3.Vec, dt float64) bool {
	angle, ok := FacingTowards(c.Position, point)
	if !ok {
		return true
	}
	return m.TurnTowards(c, angle, dt)
}
