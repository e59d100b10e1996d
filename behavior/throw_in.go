package behavior

import (
	"github.com/looplab/fsm"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// ThrowInThrower walks to the inbound spot, waits for the referee and
// inbounds to the designated receiver.
type ThrowInThrower struct {
	base

	script *fsm.FSM
}

// NewThrowInThrower creates the inbounder state.
func NewThrowInThrower(deps *Deps) *ThrowInThrower {
	return &ThrowInThrower{base: base{deps: deps}, script: newScript()}
}

func (a *ThrowInThrower) State() components.BehaviorState { return components.StateThrowInThrower }

// Step returns the current script step.
func (a *ThrowInThrower) Step() string { return a.script.Current() }

func (a *ThrowInThrower) reset() { a.script = newScript() }

func (a *ThrowInThrower) OnEnter(*Frame) { a.reset() }
func (a *ThrowInThrower) OnExit(*Frame)  { a.reset() }

func (a *ThrowInThrower) Update(f *Frame, dt float64) {
	self := f.Self
	sig := f.World.Script
	receiver, hasReceiver := f.World.Character(sig.ReceiverID)

	switch a.script.Current() {
	case stepPositioning:
		if a.deps.Mover.MoveTo(self, sig.ThrowInSpot, systems.SpeedRun, dt) {
			advance(a.script, evArrive)
		}
		a.faceBall(f, dt)
	case stepReady:
		a.deps.Mover.ApplyFriction(self, dt)
		if !hasReceiver {
			a.faceBall(f, dt)
			return
		}
		a.deps.Mover.FaceTowards(self, receiver.Position, dt)
		if !sig.ThrowInReady || !self.HasBall || !a.deps.Actions.CanPass(self) {
			return
		}
		if a.request(f, a.inbound(f, receiver)) {
			advance(a.script, evAct)
		}
	case stepActing:
		a.deps.Mover.ApplyFriction(self, dt)
		if !self.Busy() {
			advance(a.script, evFinish)
		}
	default:
		a.idle(f, dt)
	}
}

// inbound picks the safest pass style to the receiver, chest when none fits.
func (a *ThrowInThrower) inbound(f *Frame, receiver *components.Character) ActionRequest {
	req := ActionRequest{Type: components.ActionPassChest, TargetID: receiver.ID, TargetPos: receiver.Position}
	pt, risk, ok := a.deps.Risk.BestPassRisk(f.Self.Position, receiver.Position, f.World.Characters, f.Self.Team)
	if !ok {
		return req
	}
	a.deps.Tracer.PassEvaluated(f.Self.ID, receiver.ID, risk.Probability)
	if spec, ok := a.deps.Passer.Spec(pt); ok {
		req.Type = components.ActionType(spec.Action)
	}
	return req
}

// ThrowInReceiver gets open a few meters inside the court from the inbound
// spot and comes to meet the pass.
type ThrowInReceiver struct {
	base
}

// NewThrowInReceiver creates the inbound receiver state.
func NewThrowInReceiver(deps *Deps) *ThrowInReceiver {
	return &ThrowInReceiver{base: base{deps: deps}}
}

func (a *ThrowInReceiver) State() components.BehaviorState { return components.StateThrowInReceiver }

func (a *ThrowInReceiver) OnEnter(*Frame) {}
func (a *ThrowInReceiver) OnExit(*Frame)  {}

// ReceiveSpot returns where the receiver waits for the inbound.
func (a *ThrowInReceiver) ReceiveSpot(spot r3.Vec) r3.Vec {
	inward, ok := systems.Direction(spot, r3.Vec{X: spot.X})
	if !ok {
		if inward, ok = systems.Direction(spot, r3.Vec{}); !ok {
			return spot
		}
	}
	p := r3.Add(systems.Flat(spot), r3.Scale(a.deps.Config.AI.Scripts.ReceiverDistance, inward))
	return a.deps.Field.Clamp(p, 0.5)
}

func (a *ThrowInReceiver) Update(f *Frame, dt float64) {
	self := f.Self
	b := &f.World.Ball
	if passInFlight(b) && b.PassTargetID == self.ID {
		a.deps.Mover.FaceTowards(self, b.Position, dt)
		a.moveTo(f, b.Target, systems.SpeedRun, dt)
		return
	}
	a.moveTo(f, a.ReceiveSpot(f.World.Script.ThrowInSpot), systems.SpeedRun, dt)
	if thrower, ok := f.World.Character(f.World.Script.ThrowerID); ok {
		a.deps.Mover.FaceTowards(self, thrower.Position, dt)
		return
	}
	a.faceBall(f, dt)
}

// ThrowInOther takes a formation spot while the ball is inbounded: the
// inbounding team spreads out, the other team sets its defense.
type ThrowInOther struct {
	base
}

// NewThrowInOther creates the formation state used during throw-ins.
func NewThrowInOther(deps *Deps) *ThrowInOther {
	return &ThrowInOther{base: base{deps: deps}}
}

func (a *ThrowInOther) State() components.BehaviorState { return components.StateThrowInOther }

func (a *ThrowInOther) OnEnter(*Frame) {}
func (a *ThrowInOther) OnExit(*Frame)  {}

func (a *ThrowInOther) Update(f *Frame, dt float64) {
	self := f.Self
	var (
		p  r3.Vec
		ok bool
	)
	if self.Team == f.World.Script.ThrowInTeam {
		p, ok = a.deps.Formations.AttackPoint(a.deps.Field, self.Team, systems.FormationThrowIn, self.Role)
	} else {
		p, ok = a.deps.Formations.DefensePoint(a.deps.Field, self.Team, systems.FormationDefense, self.Role)
	}
	if !ok {
		a.idle(f, dt)
		return
	}
	a.moveTo(f, p, classFor(systems.FlatDistance(self.Position, p)), dt)
	a.faceBall(f, dt)
}
