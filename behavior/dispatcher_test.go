package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

// TestAssignStates covers role assignment for each match situation.
func TestAssignStates(t *testing.T) {
	deps := newTestDeps(testConfig(), &fakeActions{}, 40)

	t.Run("ball held", func(t *testing.T) {
		w := newWorld(deps, 1, fullLineup()...)
		got := AssignStates(w, SituationLive)
		want := []components.BehaviorState{
			components.StateOffBallOffense, components.StateOnBallOffense, components.StateOffBallOffense,
			components.StateOffBallOffense, components.StateOffBallOffense,
			components.StateOffBallDefense, components.StateOnBallDefense, components.StateOffBallDefense,
			components.StateOffBallDefense, components.StateOffBallDefense,
		}
		assert.Equal(t, want, got)
	})

	t.Run("pass in flight", func(t *testing.T) {
		w := newWorld(deps, components.NoCharacter, fullLineup()...)
		w.Ball.InFlight = true
		w.Ball.Flight = components.FlightPass
		w.Ball.LastTouch = components.TeamEnemy
		got := AssignStates(w, SituationLive)
		for i, c := range w.Characters {
			want := components.StateOffBallDefense
			if c.Team == components.TeamEnemy {
				want = components.StateOffBallOffense
			}
			assert.Equal(t, want, got[i], "player %d", c.ID)
		}
	})

	t.Run("loose ball", func(t *testing.T) {
		w := newWorld(deps, components.NoCharacter, fullLineup()...)
		for _, s := range AssignStates(w, SituationLive) {
			assert.Equal(t, components.StateLooseBall, s)
		}
	})

	t.Run("jump ball", func(t *testing.T) {
		w := newWorld(deps, components.NoCharacter, fullLineup()...)
		w.Script.Jumpers = [2]components.CharacterID{4, 9}
		got := AssignStates(w, SituationJumpBall)
		for i, c := range w.Characters {
			want := components.StateJumpBallOther
			if c.ID == 4 || c.ID == 9 {
				want = components.StateJumpBallJumper
			}
			assert.Equal(t, want, got[i], "player %d", c.ID)
		}
	})

	t.Run("throw-in", func(t *testing.T) {
		w := newWorld(deps, 0, fullLineup()...)
		w.Script.ThrowerID = 0
		w.Script.ReceiverID = 1
		got := AssignStates(w, SituationThrowIn)
		assert.Equal(t, components.StateThrowInThrower, got[0])
		assert.Equal(t, components.StateThrowInReceiver, got[1])
		for _, s := range got[2:] {
			assert.Equal(t, components.StateThrowInOther, s)
		}
	})
}

// TestDispatcherSwitchesStates verifies enter/exit routing and that the
// snapshot is never written.
func TestDispatcherSwitchesStates(t *testing.T) {
	deps := newTestDeps(testConfig(), &fakeActions{}, 41)
	tracer := &recordingTracer{}
	deps.Tracer = tracer
	d := NewDispatcher(deps)

	w := newWorld(deps, 0, fullLineup()...)
	before := make([]r3.Vec, len(w.Characters))
	for i, c := range w.Characters {
		before[i] = c.Position
	}

	out := d.Tick(w, AssignStates(w, SituationLive), testDT)
	require.Len(t, out, len(w.Characters))
	// Player 0 starts as on-ball offense and stays there.
	assert.Len(t, tracer.changes, len(w.Characters)-1, "every other player changes state")
	for i, c := range w.Characters {
		assert.Equal(t, before[i], c.Position, "snapshot must stay untouched")
		active, ok := d.Active(c.ID)
		require.True(t, ok)
		assert.Equal(t, out[i].State, active.State())
	}
	assert.Equal(t, components.StateOnBallOffense, out[0].State)

	// Same roles: no transitions.
	w.Characters = out
	d.Tick(w, AssignStates(w, SituationLive), testDT)
	assert.Len(t, tracer.changes, len(w.Characters)-1)

	// Ball comes loose: everyone switches once.
	w.Ball = components.NewBall(r3.Vec{Y: 0.2})
	w.OnBallID = components.NoCharacter
	out = d.Tick(w, AssignStates(w, SituationLive), testDT)
	assert.Len(t, tracer.changes, 2*len(w.Characters)-1)
	for _, c := range out {
		assert.Equal(t, components.StateLooseBall, c.State)
	}
	_, held := w.Zones[components.TeamAlly].HeldBy(2)
	assert.False(t, held, "leaving off-ball offense releases the zone")
}

// TestDispatcherFirstEntry checks that entering the state a character already
// carries runs OnEnter without reporting a transition.
func TestDispatcherFirstEntry(t *testing.T) {
	tests := []struct {
		name    string
		initial components.BehaviorState
		want    components.BehaviorState
		changes int
	}{
		{"same state", components.StateLooseBall, components.StateLooseBall, 0},
		{"different state", components.StateOffBallDefense, components.StateLooseBall, 1},
		{"keep carried state", components.StateLooseBall, components.BehaviorState(255), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(testConfig(), &fakeActions{}, 43)
			tracer := &recordingTracer{}
			deps.Tracer = tracer
			d := NewDispatcher(deps)

			c := newChar(3, components.TeamAlly, components.RolePF, -5, -2)
			c.State = tt.initial
			w := newWorld(deps, components.NoCharacter, c)

			out := d.Tick(w, []components.BehaviorState{tt.want}, testDT)
			require.Len(t, out, 1)
			assert.Len(t, tracer.changes, tt.changes)

			active, ok := d.Active(c.ID)
			require.True(t, ok, "state entered")
			assert.Equal(t, out[0].State, active.State())
		})
	}
}

// TestDispatcherDeterministic runs the same match slice twice with the same
// seed and expects identical results.
func TestDispatcherDeterministic(t *testing.T) {
	run := func() []components.Character {
		deps := newTestDeps(testConfig(), &fakeActions{}, 42)
		d := NewDispatcher(deps)
		w := newWorld(deps, 0, fullLineup()...)
		for i := 0; i < 240; i++ {
			w.Characters = d.Tick(w, AssignStates(w, SituationLive), testDT)
			if h, ok := w.Holder(); ok {
				w.Ball.Position = h.Position
			}
		}
		return w.Characters
	}
	assert.Equal(t, run(), run())
}
