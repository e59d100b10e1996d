package behavior

import (
	"context"
	"math"

	"github.com/looplab/fsm"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// Script step names shared by the scripted states.
const (
	stepPositioning = "positioning"
	stepReady       = "ready"
	stepActing      = "acting"
	stepDone        = "done"
)

// Script events.
const (
	evArrive = "arrive"
	evAct    = "act"
	evFinish = "finish"
)

// newScript builds the positioning → ready → acting → done sequence every
// scripted state follows.
func newScript() *fsm.FSM {
	return fsm.NewFSM(
		stepPositioning,
		fsm.Events{
			{Name: evArrive, Src: []string{stepPositioning}, Dst: stepReady},
			{Name: evAct, Src: []string{stepReady}, Dst: stepActing},
			{Name: evFinish, Src: []string{stepActing}, Dst: stepDone},
		},
		fsm.Callbacks{},
	)
}

// advance fires an event when the script allows it.
func advance(s *fsm.FSM, event string) {
	if s.Can(event) {
		_ = s.Event(context.Background(), event)
	}
}

// JumpBallJumper is one of the two players contesting the opening tip.
type JumpBallJumper struct {
	base

	script *fsm.FSM
}

// NewJumpBallJumper creates the jumper state.
func NewJumpBallJumper(deps *Deps) *JumpBallJumper {
	return &JumpBallJumper{base: base{deps: deps}, script: newScript()}
}

func (a *JumpBallJumper) State() components.BehaviorState { return components.StateJumpBallJumper }

// Step returns the current script step.
func (a *JumpBallJumper) Step() string { return a.script.Current() }

func (a *JumpBallJumper) reset() { a.script = newScript() }

func (a *JumpBallJumper) OnEnter(*Frame) { a.reset() }
func (a *JumpBallJumper) OnExit(*Frame)  { a.reset() }

// jumpSpot is just inside the center circle on the jumper's own half.
func (a *JumpBallJumper) jumpSpot(c *components.Character) r3.Vec {
	own := a.deps.Field.DefendingGoal(c.Team).Direction
	return r3.Vec{X: own * 0.5}
}

func (a *JumpBallJumper) Update(f *Frame, dt float64) {
	self := f.Self
	b := &f.World.Ball
	a.faceOpponent(f, dt)

	switch a.script.Current() {
	case stepPositioning:
		if a.deps.Mover.MoveTo(self, a.jumpSpot(self), systems.SpeedJog, dt) {
			advance(a.script, evArrive)
		}
	case stepReady:
		a.deps.Mover.ApplyFriction(self, dt)
		if !f.World.Script.TossReleased || !b.InFlight || b.Flight != components.FlightToss {
			return
		}
		if b.Velocity.Y > 0 || b.Position.Y > a.deps.Config.AI.Scripts.TipHeight {
			return
		}
		if a.request(f, ActionRequest{Type: components.ActionJumpTip, TargetPos: b.Position}) {
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

func (a *JumpBallJumper) faceOpponent(f *Frame, dt float64) {
	opp, ok := f.World.Character(f.World.Script.Jumpers[f.Self.Team.Opponent()])
	if !ok {
		a.faceBall(f, dt)
		return
	}
	a.deps.Mover.FaceTowards(f.Self, opp.Position, dt)
}

// JumpBallOther lines up around the center circle during the opening tip.
type JumpBallOther struct {
	base
}

// NewJumpBallOther creates the circle state.
func NewJumpBallOther(deps *Deps) *JumpBallOther {
	return &JumpBallOther{base: base{deps: deps}}
}

func (a *JumpBallOther) State() components.BehaviorState { return components.StateJumpBallOther }

func (a *JumpBallOther) OnEnter(*Frame) {}
func (a *JumpBallOther) OnExit(*Frame)  {}

// slotAngles spread the four non-jumpers over the team's half of the circle.
var slotAngles = [...]float64{-60, -20, 20, 60}

// CircleSlot returns the player's spot around the center circle. Slots are
// handed out by role among the team's non-jumpers.
func (a *JumpBallOther) CircleSlot(w *World, c *components.Character) r3.Vec {
	slot := 0
	for i := range w.Characters {
		o := &w.Characters[i]
		if o.Team == c.Team && o.ID != c.ID && o.ID != w.Script.Jumpers[c.Team] && o.Role < c.Role {
			slot++
		}
	}
	slot = min(slot, len(slotAngles)-1)
	own := a.deps.Field.DefendingGoal(c.Team).Direction
	phi := slotAngles[slot] * math.Pi / 180
	r := a.deps.Config.AI.Scripts.CircleSlotRadius
	return r3.Vec{X: own * r * math.Cos(phi), Z: r * math.Sin(phi)}
}

func (a *JumpBallOther) Update(f *Frame, dt float64) {
	a.moveTo(f, a.CircleSlot(f.World, f.Self), systems.SpeedJog, dt)
	a.faceBall(f, dt)
}
