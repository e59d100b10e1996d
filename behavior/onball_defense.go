package behavior

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// DefenseSubState is the on-ball defender's mode.
type DefenseSubState uint8

const (
	SubApproach DefenseSubState = iota
	SubContact
)

func (s DefenseSubState) String() string {
	if s == SubContact {
		return "contact"
	}
	return "approach"
}

// OnBallDefense guards the ball handler: close out to the contact point,
// then mirror the handler and give ground slowly, gambling on steals and
// contesting jump shots.
type OnBallDefense struct {
	base

	sub         DefenseSubState
	stealTimer  float64
	blockRolled bool
}

// NewOnBallDefense creates the on-ball defender state.
func NewOnBallDefense(deps *Deps) *OnBallDefense {
	return &OnBallDefense{base: base{deps: deps}}
}

func (a *OnBallDefense) State() components.BehaviorState { return components.StateOnBallDefense }

// SubState returns the current mode.
func (a *OnBallDefense) SubState() DefenseSubState { return a.sub }

func (a *OnBallDefense) reset() {
	*a = OnBallDefense{base: a.base}
}

func (a *OnBallDefense) OnEnter(*Frame) { a.reset() }
func (a *OnBallDefense) OnExit(*Frame)  { a.reset() }

// ContactDistance is the sum of both foot circles.
func ContactDistance(a, b *components.Character) float64 {
	return a.Body.FootRadius + b.Body.FootRadius
}

func (a *OnBallDefense) Update(f *Frame, dt float64) {
	self := f.Self
	holder, ok := f.World.Holder()
	if !ok || holder.Team == self.Team {
		a.idle(f, dt)
		return
	}
	def := a.deps.Config.AI.Defense
	a.deps.Mover.FaceTowards(self, holder.Position, dt)

	if self.Busy() {
		a.deps.Mover.Coast(self, systems.SpeedSprint, dt)
		return
	}

	dist := systems.FlatDistance(self.Position, holder.Position)
	if a.contestShot(f, holder, dist, dt) {
		return
	}

	contact := ContactDistance(self, holder)
	switch a.sub {
	case SubApproach:
		if dist <= contact {
			a.sub = SubContact
			a.stealTimer = 0
		}
	case SubContact:
		if dist > contact*def.ContactHysteresis {
			a.sub = SubApproach
		}
	}

	forward := systems.ForwardVector(holder.Facing)
	point := r3.Add(systems.Flat(holder.Position), r3.Scale(contact, forward))

	if a.sub == SubApproach {
		dir, ok := systems.Direction(self.Position, point)
		if !ok {
			a.deps.Mover.ApplyFriction(self, dt)
			return
		}
		a.deps.Mover.Drive(self, dir, systems.SpeedSprint, dt)
		return
	}

	// Mirror the handler's lateral movement and give ground along its facing.
	right := systems.RightVector(holder.Facing)
	lateral := r3.Scale(r3.Dot(systems.Flat(holder.Velocity), right), right)
	point = r3.Add(point, r3.Scale(0.25, lateral))
	if r3.Dot(systems.Flat(holder.Velocity), forward) > 0 {
		point = r3.Add(point, r3.Scale(def.ConcedeRate, forward))
	}
	if dir, ok := systems.Direction(self.Position, point); ok {
		gap := systems.FlatDistance(self.Position, point)
		a.deps.Mover.Drive(self, dir, classFor(gap*4), dt)
	} else {
		a.deps.Mover.ApplyFriction(self, dt)
	}

	a.stealTimer += dt
	if a.stealTimer < def.StealInterval {
		return
	}
	a.stealTimer = 0
	skill := systems.Lerp(0.5, 1.5, components.Rating(self.Stats.Steal))
	if a.deps.Actions.CanSteal(self) && a.deps.Rand.Float64() < def.StealProbability*skill {
		a.request(f, ActionRequest{Type: components.ActionStealAttempt, TargetID: holder.ID, TargetPos: holder.Position})
	}
}

// contestShot handles a jump shot going up: one block roll per shot, and
// otherwise a closeout toward the shooter. It reports whether the shot took
// over this tick.
func (a *OnBallDefense) contestShot(f *Frame, holder *components.Character, dist, dt float64) bool {
	act := holder.Action
	shooting := act.InProgress() && act.Type.Blockable() &&
		(act.Phase == components.PhaseStartup || act.Phase == components.PhaseActive)
	if !shooting {
		a.blockRolled = false
		return false
	}
	def := a.deps.Config.AI.Defense
	if dist > def.BlockRange {
		return false
	}
	if !a.blockRolled {
		a.blockRolled = true
		if a.deps.Actions.CanBlock(f.Self) && a.deps.Rand.Float64() < def.BlockTrialProbability {
			if a.request(f, ActionRequest{Type: components.ActionBlockShot, TargetID: holder.ID, TargetPos: holder.Position}) {
				a.deps.Mover.ApplyFriction(f.Self, dt)
				return true
			}
		}
	}
	if dir, ok := systems.Direction(f.Self.Position, holder.Position); ok && dist > ContactDistance(f.Self, holder) {
		a.deps.Mover.Drive(f.Self, dir, systems.SpeedRun, dt)
	} else {
		a.deps.Mover.ApplyFriction(f.Self, dt)
	}
	return true
}

// interceptPoint returns the point on the airborne pass nearest to c and its
// distance. ok is false when no pass is in the air.
func interceptPoint(b *components.Ball, c *components.Character) (r3.Vec, float64, bool) {
	if !passInFlight(b) {
		return r3.Vec{}, math.Inf(1), false
	}
	p, _ := systems.ClosestPointOnSegment(systems.Flat(c.Position), systems.Flat(b.Position), systems.Flat(b.Target))
	return p, systems.FlatDistance(p, c.Position), true
}
