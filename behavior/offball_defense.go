package behavior

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// OffBallDefense guards a matchup away from the ball. It denies when the
// matchup is near the ball and sags toward the rim when far, jumps passing
// lanes within reach and boxes out on shots.
type OffBallDefense struct {
	base

	passTried bool
	spot      r3.Vec
	hasSpot   bool
}

// NewOffBallDefense creates the off-ball defender state.
func NewOffBallDefense(deps *Deps) *OffBallDefense {
	return &OffBallDefense{base: base{deps: deps}}
}

func (a *OffBallDefense) State() components.BehaviorState { return components.StateOffBallDefense }

// Spot returns the last guarding spot.
func (a *OffBallDefense) Spot() (r3.Vec, bool) { return a.spot, a.hasSpot }

func (a *OffBallDefense) reset() {
	*a = OffBallDefense{base: a.base}
}

func (a *OffBallDefense) OnEnter(*Frame) { a.reset() }
func (a *OffBallDefense) OnExit(*Frame)  { a.reset() }

func (a *OffBallDefense) Update(f *Frame, dt float64) {
	self := f.Self
	w := f.World

	if shotInFlight(&w.Ball) {
		a.boxOut(f, dt)
		return
	}

	if !passInFlight(&w.Ball) {
		a.passTried = false
	} else if a.jumpLane(f, dt) {
		return
	}

	man, ok := matchup(w.Characters, self)
	if !ok {
		a.formationFallback(f, dt)
		return
	}
	a.spot, a.hasSpot = a.guardSpot(f, man), true
	a.moveTo(f, a.spot, classFor(systems.FlatDistance(self.Position, a.spot)), dt)
	a.faceBall(f, dt)
}

// guardSpot places the defender between the matchup and the rim. The gap
// grows from the deny distance to the sag distance as the matchup gets
// farther from the ball, and shades toward the ball side.
func (a *OffBallDefense) guardSpot(f *Frame, man *components.Character) r3.Vec {
	def := a.deps.Config.AI.Defense
	rim := a.ownRim(f.Self)
	ball := systems.Flat(f.World.Ball.Position)
	manPos := systems.Flat(man.Position)

	t := systems.Clamp01(systems.FlatDistance(manPos, ball) / def.SagDistance)
	gap := math.Min(systems.Lerp(def.DenyGap, def.SagGap, t), 0.8*systems.FlatDistance(manPos, rim))

	dir, ok := systems.Direction(manPos, rim)
	if !ok {
		return manPos
	}
	spot := r3.Add(manPos, r3.Scale(gap, dir))
	if toBall, ok := systems.Direction(spot, ball); ok {
		spot = r3.Add(spot, r3.Scale(0.3*t, toBall))
	}
	return spot
}

// jumpLane goes for a pass passing within reach, once per pass. It reports
// whether the defender committed to the lane this tick.
func (a *OffBallDefense) jumpLane(f *Frame, dt float64) bool {
	self := f.Self
	b := &f.World.Ball
	if b.LastTouch == self.Team {
		return false
	}
	p, dist, ok := interceptPoint(b, self)
	if !ok || dist > a.deps.Config.AI.Defense.InterceptReach {
		return false
	}
	a.deps.Mover.FaceTowards(self, b.Position, dt)
	a.moveTo(f, p, systems.SpeedSprint, dt)
	if !a.passTried && !self.Busy() && a.deps.Actions.CanSteal(self) {
		a.passTried = true
		a.request(f, ActionRequest{Type: components.ActionStealAttempt, TargetID: b.PassTargetID, TargetPos: p})
	}
	return true
}

func (a *OffBallDefense) boxOut(f *Frame, dt float64) {
	self := f.Self
	rim := a.ownRim(self)
	n, ok := systems.Nearest(f.World.Characters, self.Position, self.Team, systems.OtherTeam, self.ID)
	if ok && n.Dist <= a.deps.Config.AI.Defense.BoxOutRadius*2 {
		a.moveTo(f, boxOutSpot(&f.World.Characters[n.Index], rim), systems.SpeedRun, dt)
		a.deps.Mover.FaceTowards(self, rim, dt)
		return
	}
	if systems.FlatDistance(self.Position, rim) > a.deps.Config.AI.LooseBall.ReboundRadius {
		a.moveTo(f, rim, systems.SpeedRun, dt)
	} else {
		a.deps.Mover.ApplyFriction(self, dt)
	}
	a.deps.Mover.FaceTowards(self, rim, dt)
}

func (a *OffBallDefense) formationFallback(f *Frame, dt float64) {
	p, ok := a.deps.Formations.DefensePoint(a.deps.Field, f.Self.Team, systems.FormationDefense, f.Self.Role)
	if !ok {
		a.idle(f, dt)
		return
	}
	a.moveTo(f, p, classFor(systems.FlatDistance(f.Self.Position, p)), dt)
	a.faceBall(f, dt)
}
