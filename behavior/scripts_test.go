package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

// TestJumperTipsOnDescendingToss walks the jumper through its script.
func TestJumperTipsOnDescendingToss(t *testing.T) {
	actions := &fakeActions{acceptAll: true}
	deps := newTestDeps(testConfig(), actions, 30)
	ally := newChar(0, components.TeamAlly, components.RoleC, -0.5, 0)
	enemy := newChar(9, components.TeamEnemy, components.RoleC, 0.5, 0)
	w := newWorld(deps, components.NoCharacter, ally, enemy)
	w.Script.Jumpers = [2]components.CharacterID{0, 9}
	f := frameFor(w, 0)

	a := NewJumpBallJumper(deps)
	a.OnEnter(f)
	a.Update(f, testDT)
	require.Equal(t, stepReady, a.Step())

	// Rising toss: wait.
	w.Script.TossReleased = true
	w.Ball.InFlight = true
	w.Ball.Flight = components.FlightToss
	w.Ball.Position = r3.Vec{Y: 3.0}
	w.Ball.Velocity = r3.Vec{Y: 2}
	a.Update(f, testDT)
	assert.Empty(t, actions.requests)

	// Falling through tip height: jump.
	w.Ball.Velocity = r3.Vec{Y: -1}
	a.Update(f, testDT)
	require.Len(t, actions.requests, 1)
	assert.Equal(t, components.ActionJumpTip, actions.requests[0].Type)
	assert.Equal(t, stepActing, a.Step())

	a.Update(f, testDT)
	assert.Equal(t, stepDone, a.Step())

	a.OnExit(f)
	assert.Equal(t, stepPositioning, a.Step())
}

// TestCircleSlotsDistinct checks the four non-jumpers of a team get
// different spots on their own half of the circle.
func TestCircleSlotsDistinct(t *testing.T) {
	deps := newTestDeps(testConfig(), &fakeActions{}, 31)
	w := newWorld(deps, components.NoCharacter, fullLineup()...)
	w.Script.Jumpers = [2]components.CharacterID{4, 9}
	a := NewJumpBallOther(deps)

	seen := map[r3.Vec]bool{}
	for i := 0; i < 4; i++ {
		c := &w.Characters[i]
		p := a.CircleSlot(w, c)
		assert.False(t, seen[p], "slot reused for %v", c.Role)
		seen[p] = true
		assert.Less(t, p.X, 0.0, "ally lines up on its own half")
		assert.InDelta(t, deps.Config.AI.Scripts.CircleSlotRadius, r3.Norm(p), 1e-9)
	}
}

// TestThrowInThrowerWaitsForReferee checks the inbound is only thrown once
// the referee allows it.
func TestThrowInThrowerWaitsForReferee(t *testing.T) {
	actions := &fakeActions{acceptAll: true}
	deps := newTestDeps(testConfig(), actions, 32)
	spot := r3.Vec{X: -4, Z: -7.5}
	thrower := newChar(0, components.TeamAlly, components.RolePG, spot.X, spot.Z)
	receiver := newChar(1, components.TeamAlly, components.RoleSG, -4, -4)
	w := newWorld(deps, 0, thrower, receiver)
	w.Script.ThrowInTeam = components.TeamAlly
	w.Script.ThrowInSpot = spot
	w.Script.ThrowerID = 0
	w.Script.ReceiverID = 1
	f := frameFor(w, 0)

	a := NewThrowInThrower(deps)
	a.OnEnter(f)
	a.Update(f, testDT)
	require.Equal(t, stepReady, a.Step())
	a.Update(f, testDT)
	assert.Empty(t, actions.requests, "no inbound before the referee signal")

	w.Script.ThrowInReady = true
	a.Update(f, testDT)
	require.Len(t, actions.requests, 1)
	assert.True(t, actions.requests[0].Type.IsPass())
	assert.Equal(t, components.CharacterID(1), actions.requests[0].TargetID)
	assert.Equal(t, stepActing, a.Step())
}

// TestReceiveSpotInsideCourt checks the receiver steps onto the floor from
// sideline and baseline spots.
func TestReceiveSpotInsideCourt(t *testing.T) {
	deps := newTestDeps(testConfig(), &fakeActions{}, 33)
	a := NewThrowInReceiver(deps)
	d := deps.Config.AI.Scripts.ReceiverDistance

	tests := []struct {
		name string
		spot r3.Vec
		want r3.Vec
	}{
		{"sideline", r3.Vec{X: 3, Z: 7.5}, r3.Vec{X: 3, Z: 7.5 - d}},
		{"baseline", r3.Vec{X: -14, Z: 0}, r3.Vec{X: -14 + d, Z: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.ReceiveSpot(tt.spot)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
			assert.True(t, deps.Field.InBounds(got))
		})
	}
}
