package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// BallEventKind classifies what happened to the ball during a step.
type BallEventKind uint8

const (
	BallCaught BallEventKind = iota
	BallScored
	BallMissed
	BallPickedUp
	BallOutOfBounds
	BallPassDropped
)

func (k BallEventKind) String() string {
	switch k {
	case BallCaught:
		return "caught"
	case BallScored:
		return "scored"
	case BallMissed:
		return "missed"
	case BallPickedUp:
		return "picked_up"
	case BallOutOfBounds:
		return "out_of_bounds"
	}
	return "pass_dropped"
}

// BallEvent reports a ball transition to the match loop.
type BallEvent struct {
	Kind      BallEventKind
	Character components.CharacterID // catcher, picker or shooter
	Team      components.Team        // scoring team, or last touch for out of bounds
	Points    int
	Position  r3.Vec
}

// BallSystem moves the ball: following the holder, flying passes and shots,
// and bouncing loose on the floor.
type BallSystem struct {
	cfg     config.BallConfig
	gravity float64
	field   *components.Field

	pass     *Trajectory
	elapsed  float64
	duration float64
	made     bool
	points   int
	deflect  float64
}

// NewBallSystem creates the ball system.
func NewBallSystem(cfg *config.Config, field *components.Field) *BallSystem {
	return &BallSystem{cfg: cfg.Ball, gravity: cfg.Movement.Gravity, field: field}
}

// HandPosition returns where a holder carries the ball.
func (s *BallSystem) HandPosition(c *components.Character) r3.Vec {
	p := r3.Add(Flat(c.Position), r3.Scale(s.cfg.HoldOffset, ForwardVector(c.Facing)))
	p.Y = s.cfg.HoldHeight
	return p
}

// Give puts the ball in a character's hands.
func (s *BallSystem) Give(b *components.Ball, c *components.Character) {
	b.HolderID = c.ID
	b.InFlight = false
	b.Flight = components.FlightNone
	b.PassTargetID = components.NoCharacter
	b.ShooterID = components.NoCharacter
	b.LastTouch = c.Team
	b.Velocity = r3.Vec{}
	b.Position = s.HandPosition(c)
	s.pass = nil
}

// LaunchPass releases a pass along a trajectory toward the receiver.
func (s *BallSystem) LaunchPass(b *components.Ball, passer *components.Character, receiver components.CharacterID, traj *Trajectory) {
	b.HolderID = components.NoCharacter
	b.InFlight = true
	b.Flight = components.FlightPass
	b.PassTargetID = receiver
	b.ShooterID = components.NoCharacter
	b.LastTouch = passer.Team
	b.Position = traj.Points[0].Position
	b.Target = traj.Points[len(traj.Points)-1].Position
	s.pass = traj
	s.elapsed = 0
	s.duration = traj.Duration()
}

// ShotRelease describes a shot leaving the shooter's hands. The outcome is
// decided at release and revealed on arrival.
type ShotRelease struct {
	Rim        r3.Vec
	FlightTime float64
	Made       bool
	Points     int
	Deflection float64 // radians off straight back for a miss
}

// LaunchShot releases a shot that reaches the rim after the flight time.
func (s *BallSystem) LaunchShot(b *components.Ball, shooter *components.Character, shot ShotRelease) {
	rim, flightTime := shot.Rim, shot.FlightTime
	if flightTime <= 0 {
		flightTime = 1
	}
	start := s.HandPosition(shooter)
	start.Y = math.Max(start.Y, shooter.Body.Height)
	b.HolderID = components.NoCharacter
	b.InFlight = true
	b.Flight = components.FlightShot
	b.PassTargetID = components.NoCharacter
	b.ShooterID = shooter.ID
	b.LastTouch = shooter.Team
	b.Position = start
	b.Target = rim
	// v0 = d/T + g*T/2 on the vertical axis
	b.Velocity = r3.Scale(1/flightTime, r3.Sub(rim, start))
	b.Velocity.Y += 0.5 * s.gravity * flightTime
	s.pass = nil
	s.elapsed = 0
	s.duration = flightTime
	s.made = shot.Made
	s.points = shot.Points
	s.deflect = shot.Deflection
}

// Toss throws the ball straight up for a jump ball.
func (s *BallSystem) Toss(b *components.Ball, at r3.Vec) {
	b.HolderID = components.NoCharacter
	b.InFlight = true
	b.Flight = components.FlightToss
	b.PassTargetID = components.NoCharacter
	b.ShooterID = components.NoCharacter
	b.Position = r3.Vec{X: at.X, Y: 1.8, Z: at.Z}
	b.Velocity = r3.Vec{Y: s.cfg.TossSpeed}
	s.pass = nil
}

// Knock sets the ball loose with a new velocity, as after a tip, steal or block.
func (s *BallSystem) Knock(b *components.Ball, vel r3.Vec, touch components.Team) {
	b.HolderID = components.NoCharacter
	b.InFlight = true
	b.Flight = components.FlightLoose
	b.PassTargetID = components.NoCharacter
	b.ShooterID = components.NoCharacter
	b.LastTouch = touch
	b.Velocity = vel
	s.pass = nil
}

// Place parks a dead ball at a floor point, as before a throw-in.
func (s *BallSystem) Place(b *components.Ball, at r3.Vec) {
	*b = components.NewBall(r3.Vec{X: at.X, Y: s.cfg.Radius, Z: at.Z})
	s.pass = nil
}

// PassProgress returns the elapsed and total flight time of the current pass.
func (s *BallSystem) PassProgress() (elapsed, total float64, ok bool) {
	if s.pass == nil {
		return 0, 0, false
	}
	return s.elapsed, s.duration, true
}

// CurrentPass returns the trajectory of the pass in the air.
func (s *BallSystem) CurrentPass() *Trajectory {
	return s.pass
}

// Step advances the ball by dt and reports any transition.
func (s *BallSystem) Step(b *components.Ball, characters []components.Character, dt float64) []BallEvent {
	if dt <= 0 {
		return nil
	}
	if b.Held() {
		if c, ok := FindCharacter(characters, b.HolderID); ok {
			b.Position = s.HandPosition(c)
			b.Velocity = c.Velocity
		}
		return nil
	}
	if !b.InFlight {
		return s.stepLoose(b, characters, dt)
	}

	switch b.Flight {
	case components.FlightPass:
		return s.stepPass(b, characters, dt)
	case components.FlightShot:
		return s.stepShot(b, dt)
	case components.FlightToss:
		s.integrate(b, dt)
		if b.Velocity.Y < 0 && b.Position.Y <= s.cfg.PickupHeight {
			b.Flight = components.FlightLoose
		}
		return nil
	}
	return s.stepLoose(b, characters, dt)
}

func (s *BallSystem) stepPass(b *components.Ball, characters []components.Character, dt float64) []BallEvent {
	prev := b.Position
	s.elapsed += dt
	b.Position = s.pass.PositionAt(s.elapsed)
	b.Velocity = r3.Scale(1/dt, r3.Sub(b.Position, prev))
	if s.elapsed < s.duration {
		return nil
	}

	receiver, ok := FindCharacter(characters, b.PassTargetID)
	if ok && FlatDistance(receiver.Position, b.Position) <= s.cfg.PickupReach*1.5 {
		s.Give(b, receiver)
		return []BallEvent{{Kind: BallCaught, Character: receiver.ID, Team: receiver.Team, Position: b.Position}}
	}
	// Receiver moved off the catch point; the ball keeps rolling.
	b.Flight = components.FlightLoose
	b.PassTargetID = components.NoCharacter
	s.pass = nil
	return []BallEvent{{Kind: BallPassDropped, Team: b.LastTouch, Position: b.Position}}
}

func (s *BallSystem) stepShot(b *components.Ball, dt float64) []BallEvent {
	s.elapsed += dt
	s.integrate(b, dt)
	if s.elapsed < s.duration {
		return nil
	}
	b.Position = b.Target
	shooter := b.ShooterID
	if s.made {
		b.Velocity = r3.Vec{Y: -1}
		b.Flight = components.FlightLoose
		b.ShooterID = components.NoCharacter
		return []BallEvent{{Kind: BallScored, Character: shooter, Team: b.LastTouch, Points: s.points, Position: b.Position}}
	}

	// Off the rim back toward the court.
	back := -s.field.AttackingGoal(b.LastTouch).Direction
	dir := ForwardVector(back*math.Pi/2 + s.deflect)
	b.Velocity = r3.Scale(s.cfg.RimBounceSpeed, dir)
	b.Velocity.Y = s.cfg.RimBounceSpeed * 0.5
	b.Flight = components.FlightLoose
	b.ShooterID = components.NoCharacter
	return []BallEvent{{Kind: BallMissed, Character: shooter, Team: b.LastTouch, Position: b.Position}}
}

// integrate applies gravity and position update.
func (s *BallSystem) integrate(b *components.Ball, dt float64) {
	b.Velocity.Y -= s.gravity * dt
	b.Position = r3.Add(b.Position, r3.Scale(dt, b.Velocity))
}

func (s *BallSystem) stepLoose(b *components.Ball, characters []components.Character, dt float64) []BallEvent {
	s.integrate(b, dt)
	if b.Position.Y <= s.cfg.Radius {
		b.Position.Y = s.cfg.Radius
		if b.Velocity.Y < 0 {
			b.Velocity.Y = -b.Velocity.Y * s.cfg.Restitution
			if b.Velocity.Y < 0.5 {
				b.Velocity.Y = 0
			}
		}
		// Rolling friction on the floor.
		h := Flat(b.Velocity)
		speed := r3.Norm(h)
		drop := s.cfg.RollingFriction * dt
		if speed <= drop {
			b.Velocity.X, b.Velocity.Z = 0, 0
		} else {
			h = r3.Scale((speed-drop)/speed, h)
			b.Velocity.X, b.Velocity.Z = h.X, h.Z
		}
		if b.Velocity.Y == 0 && speed <= drop {
			b.InFlight = false
		}
	}

	if !s.field.InBounds(b.Position) {
		b.Velocity = r3.Vec{}
		b.InFlight = false
		b.Flight = components.FlightNone
		return []BallEvent{{Kind: BallOutOfBounds, Team: b.LastTouch, Position: b.Position}}
	}

	if b.Position.Y > s.cfg.PickupHeight {
		return nil
	}
	if n, ok := Nearest(characters, b.Position, 0, AnyTeam, components.NoCharacter); ok && n.Dist <= s.cfg.PickupReach {
		c := &characters[n.Index]
		s.Give(b, c)
		return []BallEvent{{Kind: BallPickedUp, Character: c.ID, Team: c.Team, Position: b.Position}}
	}
	return nil
}
