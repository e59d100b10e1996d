package behavior

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// OffBallOffense spaces the floor around the ball handler. Guards fill the
// handler support spots; everyone else claims a tactical zone and drifts
// around it looking for a cleaner passing lane.
type OffBallOffense struct {
	base

	zone          int
	shared        bool
	spot          r3.Vec
	hasSpot       bool
	decisionTimer float64
}

// NewOffBallOffense creates the off-ball offense state.
func NewOffBallOffense(deps *Deps) *OffBallOffense {
	return &OffBallOffense{base: base{deps: deps}, zone: systems.NoZone}
}

func (a *OffBallOffense) State() components.BehaviorState { return components.StateOffBallOffense }

// Zone returns the held zone index, or NoZone.
func (a *OffBallOffense) Zone() int { return a.zone }

// Spot returns the current target spot.
func (a *OffBallOffense) Spot() (r3.Vec, bool) { return a.spot, a.hasSpot }

func (a *OffBallOffense) reset() {
	*a = OffBallOffense{base: a.base, zone: systems.NoZone}
}

func (a *OffBallOffense) OnEnter(*Frame) { a.reset() }

func (a *OffBallOffense) OnExit(f *Frame) {
	if reg := f.World.Zones[f.Self.Team]; reg != nil {
		reg.Release(f.Self.ID)
	}
	a.reset()
}

func (a *OffBallOffense) Update(f *Frame, dt float64) {
	self := f.Self
	w := f.World

	if shotInFlight(&w.Ball) {
		a.watchShot(f, dt)
		return
	}
	if passInFlight(&w.Ball) && w.Ball.PassTargetID == self.ID {
		a.deps.Mover.FaceTowards(self, w.Ball.Position, dt)
		a.moveTo(f, w.Ball.Target, systems.SpeedSprint, dt)
		return
	}

	holder, _ := w.Holder()
	if holder != nil && holder.Team == self.Team {
		if role := systems.HandlerRoleFor(self, holder); role != systems.HandlerNone {
			a.releaseZone(f)
			if a.supportHandler(f, holder, role, dt) {
				return
			}
		}
	}

	if !a.holdZone(f, holder, dt) {
		a.formationFallback(f, dt)
	}
}

// watchShot boxes out for interior players and freezes everyone else facing
// the rim.
func (a *OffBallOffense) watchShot(f *Frame, dt float64) {
	self := f.Self
	rim := a.attackRim(self)
	if self.Role.Interior() {
		n, ok := systems.Nearest(f.World.Characters, self.Position, self.Team, systems.OtherTeam, self.ID)
		if ok && n.Dist <= a.deps.Config.AI.Defense.BoxOutRadius*2 {
			a.deps.Mover.FaceTowards(self, rim, dt)
			a.moveTo(f, boxOutSpot(&f.World.Characters[n.Index], rim), systems.SpeedRun, dt)
			return
		}
	}
	a.deps.Mover.ApplyFriction(self, dt)
	a.deps.Mover.FaceTowards(self, rim, dt)
}

func (a *OffBallOffense) supportHandler(f *Frame, holder *components.Character, role systems.HandlerRole, dt float64) bool {
	q := systems.HandlerQuery{
		Self:       f.Self,
		Holder:     holder,
		Role:       role,
		Characters: f.World.Characters,
	}
	for i := range f.World.Characters {
		c := &f.World.Characters[i]
		if c.Team != f.Self.Team || c.ID == f.Self.ID || c.ID == holder.ID {
			continue
		}
		if r := systems.HandlerRoleFor(c, holder); r != systems.HandlerNone && r != role {
			q.Other = c.Position
			q.HasOther = true
			break
		}
	}
	target, ok := a.deps.Handlers.Solve(a.deps.Field, q)
	if !ok {
		return false
	}
	a.spot, a.hasSpot = target, true
	a.moveTo(f, target, classFor(systems.FlatDistance(f.Self.Position, target)), dt)
	a.deps.Mover.FaceTowards(f.Self, holder.Position, dt)
	return true
}

// holdZone claims or keeps a zone and moves to the current spot inside it.
// It reports false when the role has no zone priorities at all.
func (a *OffBallOffense) holdZone(f *Frame, holder *components.Character, dt float64) bool {
	self := f.Self
	reg := f.World.Zones[self.Team]
	if reg == nil {
		return false
	}
	zones := a.deps.Zones.Zones()

	// Another player may have taken the zone while we were elsewhere.
	if a.zone != systems.NoZone && !a.shared {
		if held, ok := reg.HeldBy(self.ID); !ok || held != a.zone {
			a.zone = systems.NoZone
			a.hasSpot = false
		}
	}

	if a.zone == systems.NoZone {
		choice, ok := a.deps.Zones.SelectZone(reg, a.deps.Field, self, f.World.Characters)
		if !ok {
			return false
		}
		a.zone = choice.Zone
		a.shared = choice.Shared
		a.spot = zones.Anchor(a.deps.Field, self.Team, a.zone)
		a.hasSpot = true
		a.decisionTimer = zones.DecisionInterval(self)
	}

	a.decisionTimer -= dt
	if a.decisionTimer <= 0 {
		a.decisionTimer = zones.DecisionInterval(self)
		if a.shared {
			if choice, ok := a.deps.Zones.SelectZone(reg, a.deps.Field, self, f.World.Characters); ok && !choice.Shared {
				a.zone, a.shared = choice.Zone, false
				a.spot = zones.Anchor(a.deps.Field, self.Team, a.zone)
			}
		}
		if holder != nil && holder.Team == self.Team {
			center := zones.Anchor(a.deps.Field, self.Team, a.zone)
			if p, moved := a.deps.Zones.Reposition(a.deps.Field, self, a.spot, center, holder, f.World.Characters, a.deps.Rand); moved {
				a.spot = p
			}
		}
	}

	a.moveTo(f, a.spot, classFor(systems.FlatDistance(self.Position, a.spot)), dt)
	a.faceBall(f, dt)
	return true
}

func (a *OffBallOffense) releaseZone(f *Frame) {
	if a.zone == systems.NoZone {
		return
	}
	if reg := f.World.Zones[f.Self.Team]; reg != nil {
		reg.Release(f.Self.ID)
	}
	a.zone = systems.NoZone
	a.shared = false
}

func (a *OffBallOffense) formationFallback(f *Frame, dt float64) {
	p, ok := a.deps.Formations.AttackPoint(a.deps.Field, f.Self.Team, systems.FormationOffense, f.Self.Role)
	if !ok {
		a.idle(f, dt)
		return
	}
	a.moveTo(f, p, classFor(systems.FlatDistance(f.Self.Position, p)), dt)
	a.faceBall(f, dt)
}
