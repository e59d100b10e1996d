package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

// runBall steps the ball until an event fires or the step limit is reached.
func runBall(s *BallSystem, b *components.Ball, chars []components.Character, dt float64, steps int) []BallEvent {
	for i := 0; i < steps; i++ {
		if ev := s.Step(b, chars, dt); len(ev) > 0 {
			return ev
		}
	}
	return nil
}

// TestBallPassCaught verifies a pass reaches a stationary receiver.
func TestBallPassCaught(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	s := NewBallSystem(cfg, field)
	passer := newChar(0, components.TeamAlly, components.RolePG, 0, 0)
	receiver := newChar(1, components.TeamAlly, components.RoleSG, 6, 0)
	chars := []components.Character{passer, receiver}

	traj := NewPasser(cfg).CalculateTrajectory(passer.Position, receiver.Position, PassChest, 0)
	require.NotNil(t, traj)
	b := components.NewBall(r3.Vec{})
	s.Give(&b, &passer)
	s.LaunchPass(&b, &passer, receiver.ID, traj)
	assert.True(t, b.InFlight)
	assert.False(t, b.Loose())

	ev := runBall(s, &b, chars, cfg.Match.DT, 120)
	require.Len(t, ev, 1)
	assert.Equal(t, BallCaught, ev[0].Kind)
	assert.Equal(t, receiver.ID, b.HolderID)
	assert.False(t, b.InFlight)
}

// TestBallShotScores verifies a made shot reports its points on arrival.
func TestBallShotScores(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	s := NewBallSystem(cfg, field)
	shooter := newChar(0, components.TeamAlly, components.RoleSG, 6, 0)
	b := components.NewBall(r3.Vec{})
	s.Give(&b, &shooter)

	rim := field.AttackingGoal(components.TeamAlly).Rim
	s.LaunchShot(&b, &shooter, ShotRelease{Rim: rim, FlightTime: 1, Made: true, Points: 3})
	ev := runBall(s, &b, nil, cfg.Match.DT, 120)
	require.Len(t, ev, 1)
	assert.Equal(t, BallScored, ev[0].Kind)
	assert.Equal(t, 3, ev[0].Points)
	assert.Equal(t, components.TeamAlly, ev[0].Team)
	assert.InDelta(t, rim.X, ev[0].Position.X, 1e-9)
}

// TestBallMissBouncesBack verifies a miss leaves the rim toward the court.
func TestBallMissBouncesBack(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	s := NewBallSystem(cfg, field)
	shooter := newChar(0, components.TeamAlly, components.RoleSG, 6, 0)
	b := components.NewBall(r3.Vec{})
	s.Give(&b, &shooter)

	rim := field.AttackingGoal(components.TeamAlly).Rim
	s.LaunchShot(&b, &shooter, ShotRelease{Rim: rim, FlightTime: 1})
	ev := runBall(s, &b, nil, cfg.Match.DT, 120)
	require.Len(t, ev, 1)
	assert.Equal(t, BallMissed, ev[0].Kind)
	assert.True(t, b.Loose())
	assert.Less(t, b.Velocity.X, 0.0, "ball should come off toward midcourt")
}

// TestLooseBallSettlesAndIsPickedUp verifies bouncing, rolling friction and pickup.
func TestLooseBallSettlesAndIsPickedUp(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	s := NewBallSystem(cfg, field)
	b := components.NewBall(r3.Vec{Y: 2})
	s.Knock(&b, r3.Vec{X: 1}, components.TeamAlly)

	ev := runBall(s, &b, nil, cfg.Match.DT, 600)
	assert.Empty(t, ev)
	assert.False(t, b.InFlight, "ball should come to rest")
	assert.InDelta(t, cfg.Ball.Radius, b.Position.Y, 1e-9)

	picker := newChar(4, components.TeamEnemy, components.RoleC, b.Position.X+0.5, b.Position.Z)
	ev = s.Step(&b, []components.Character{picker}, cfg.Match.DT)
	require.Len(t, ev, 1)
	assert.Equal(t, BallPickedUp, ev[0].Kind)
	assert.Equal(t, picker.ID, b.HolderID)
	assert.Equal(t, components.TeamEnemy, b.LastTouch)
}

// TestLooseBallOutOfBounds verifies the last touch is reported.
func TestLooseBallOutOfBounds(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	s := NewBallSystem(cfg, field)
	b := components.NewBall(r3.Vec{Z: 7, Y: 0.5})
	s.Knock(&b, r3.Vec{Z: 4}, components.TeamEnemy)

	ev := runBall(s, &b, nil, cfg.Match.DT, 120)
	require.Len(t, ev, 1)
	assert.Equal(t, BallOutOfBounds, ev[0].Kind)
	assert.Equal(t, components.TeamEnemy, ev[0].Team)
}
