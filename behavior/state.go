package behavior

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// StateAI is one behavior role. The dispatcher calls OnEnter when a player
// switches into the state, Update every tick while it stays, and OnExit when
// it leaves. OnExit must restore every transient field to its initial value.
type StateAI interface {
	State() components.BehaviorState
	OnEnter(f *Frame)
	OnExit(f *Frame)
	Update(f *Frame, dt float64)
}

// base holds what every state shares.
type base struct {
	deps *Deps
}

func (b *base) attackRim(c *components.Character) r3.Vec {
	return b.deps.Field.AttackingGoal(c.Team).Floor()
}

func (b *base) ownRim(c *components.Character) r3.Vec {
	return b.deps.Field.DefendingGoal(c.Team).Floor()
}

// request forwards an action request and reports whether it was accepted.
func (b *base) request(f *Frame, req ActionRequest) bool {
	res := b.deps.Actions.StartAction(f.Self, req)
	b.deps.Tracer.ActionRequested(f.Self.ID, req, res)
	return res.Success
}

// idle brakes and faces the ball. Every fallback chain ends here.
func (b *base) idle(f *Frame, dt float64) {
	b.deps.Mover.ApplyFriction(f.Self, dt)
	b.faceBall(f, dt)
}

func (b *base) faceBall(f *Frame, dt float64) {
	b.deps.Mover.FaceTowards(f.Self, f.World.Ball.Position, dt)
}

// moveTo walks toward a point clamped inside the court.
func (b *base) moveTo(f *Frame, target r3.Vec, class systems.SpeedClass, dt float64) bool {
	return b.deps.Mover.MoveTo(f.Self, b.deps.Field.Clamp(target, 0.2), class, dt)
}

// classFor picks a gear by remaining distance.
func classFor(dist float64) systems.SpeedClass {
	switch {
	case dist > 6:
		return systems.SpeedSprint
	case dist > 3:
		return systems.SpeedRun
	case dist > 1:
		return systems.SpeedJog
	}
	return systems.SpeedWalk
}

// matchup returns the opponent guarding or guarded by c: same role first,
// nearest opponent otherwise.
func matchup(chars []components.Character, c *components.Character) (*components.Character, bool) {
	for i := range chars {
		o := &chars[i]
		if o.Team != c.Team && o.Role == c.Role {
			return o, true
		}
	}
	n, ok := systems.Nearest(chars, c.Position, c.Team, systems.OtherTeam, c.ID)
	if !ok {
		return nil, false
	}
	return &chars[n.Index], true
}

// boxOutSpot returns a point sealing opp away from the rim.
func boxOutSpot(opp *components.Character, rim r3.Vec) r3.Vec {
	dir, ok := systems.Direction(opp.Position, rim)
	if !ok {
		return opp.Position
	}
	return r3.Add(systems.Flat(opp.Position), r3.Scale(0.8, dir))
}

// shotInFlight reports whether a shot is airborne.
func shotInFlight(b *components.Ball) bool {
	return b.InFlight && b.Flight == components.FlightShot
}

// passInFlight reports whether a pass is airborne.
func passInFlight(b *components.Ball) bool {
	return b.InFlight && b.Flight == components.FlightPass
}

// nearRim reports which rim a point is within radius of.
func nearRim(field *components.Field, p r3.Vec, radius float64) (components.Goal, bool) {
	for _, g := range field.Goals {
		if systems.FlatDistance(p, g.Floor()) <= radius {
			return g, true
		}
	}
	return components.Goal{}, false
}

// timeToReach estimates how long c needs to cover the floor distance to p.
func timeToReach(m *systems.Mover, c *components.Character, p r3.Vec) float64 {
	speed := math.Max(m.TopSpeed(c), systems.Epsilon)
	return systems.FlatDistance(c.Position, p) / speed
}
