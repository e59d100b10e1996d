package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/systems"
	"github.com/pthm-cable/hoops/telemetry"
)

func newTestGame(t *testing.T, seed uint64) *Game {
	t.Helper()
	config.MustInit("")
	return NewGameWithOptions(Options{Seed: seed})
}

// goLiveWith hands the ball to a player and skips the opening tip.
func goLiveWith(g *Game, id components.CharacterID) {
	g.script = behavior.NoScript()
	g.setPhase(PhaseLive)
	g.ballSys.Give(&g.ball, &g.chars[id])
	g.syncHasBall()
	g.possession = g.chars[id].Team
	g.commit()
}

func hasEvent(events []telemetry.Event, typ telemetry.EventType, detail string) bool {
	for _, e := range events {
		if e.Type == typ && (detail == "" || e.Detail == detail) {
			return true
		}
	}
	return false
}

// TestNewGameSpawnsRoster checks the opening state of a match.
func TestNewGameSpawnsRoster(t *testing.T) {
	g := newTestGame(t, 1)

	chars := g.Characters()
	require.Len(t, chars, 10)
	for i, c := range chars {
		assert.Equal(t, components.CharacterID(i), c.ID)
		pos, ok := g.PlayerPosition(c.ID)
		require.True(t, ok)
		assert.Equal(t, c.Position, pos, "ECS and character view agree")
		assert.True(t, g.field.InBounds(c.Position))
	}

	assert.Equal(t, PhaseJumpBall, g.Phase())
	assert.False(t, g.Ball().Held())
	assert.Equal(t, g.cfg.Match.GameLength, g.GameClock())
	assert.Equal(t, g.cfg.Match.ShotClock, g.ShotClock())
	assert.Equal(t, telemetry.Score{}, g.Score())

	for team, id := range g.script.Jumpers {
		require.NotEqual(t, components.NoCharacter, id)
		jumper := chars[id]
		assert.Equal(t, components.Team(team), jumper.Team)
		for _, c := range chars {
			if c.Team == jumper.Team {
				assert.LessOrEqual(t, c.Body.Height, jumper.Body.Height)
			}
		}
	}

	_, ok := g.PlayerPosition(42)
	assert.False(t, ok)
}

// TestJumpBallGoesLive checks the toss is released and play starts.
func TestJumpBallGoesLive(t *testing.T) {
	g := newTestGame(t, 2)
	maxTicks := int(5 / g.cfg.Match.DT)

	tossed := false
	for i := 0; i < maxTicks && g.Phase() == PhaseJumpBall; i++ {
		g.Step()
		if g.script.TossReleased {
			tossed = true
		}
	}
	assert.True(t, tossed, "referee tosses the ball")
	assert.Equal(t, PhaseLive, g.Phase())
	assert.Equal(t, behavior.NoScript(), g.script)
}

// TestDeterministicReplay runs the same seed twice and expects the same match.
func TestDeterministicReplay(t *testing.T) {
	run := func() (telemetry.Score, []components.Character, components.Ball) {
		g := newTestGame(t, 77)
		for i := 0; i < 900; i++ {
			g.Step()
		}
		return g.Score(), g.Characters(), g.Ball()
	}

	s1, c1, b1 := run()
	s2, c2, b2 := run()
	assert.Equal(t, s1, s2)
	assert.Equal(t, c1, c2)
	assert.Equal(t, b1, b2)
}

// TestShotClockViolation checks an expired shot clock hands the ball over.
func TestShotClockViolation(t *testing.T) {
	g := newTestGame(t, 3)
	goLiveWith(g, 0)
	g.shotClock = 0.001

	g.Step()

	assert.Equal(t, PhaseThrowIn, g.Phase())
	assert.Equal(t, components.TeamEnemy, g.script.ThrowInTeam)
	assert.Equal(t, components.TeamEnemy, g.Possession())
	assert.Equal(t, g.cfg.Match.ShotClock, g.ShotClock())
	assert.True(t, hasEvent(g.Events(), telemetry.EventViolation, "shot_clock"))

	thrower, ok := systems.FindCharacter(g.chars, g.Ball().HolderID)
	require.True(t, ok)
	assert.Equal(t, components.TeamEnemy, thrower.Team)
	assert.Equal(t, g.script.ThrowerID, thrower.ID)
	assert.InDelta(t, g.field.Width/2, abs(g.script.ThrowInSpot.Z), 1e-9, "inbound from the sideline")
	assert.Equal(t, 1, g.BoxScore().Get(0).Turnovers)
}

// TestMadeBasketRestartsFromBaseline checks scoring and the inbound spot.
func TestMadeBasketRestartsFromBaseline(t *testing.T) {
	g := newTestGame(t, 4)
	goLiveWith(g, 1)

	g.handleBallEvents([]systems.BallEvent{{Kind: systems.BallScored, Character: 1, Team: components.TeamAlly, Points: 3}})

	assert.Equal(t, telemetry.Score{Ally: 3}, g.Score())
	assert.Equal(t, 3, g.BoxScore().Get(1).Points)
	assert.Equal(t, 1, g.BoxScore().Get(1).ThreesMade)
	assert.True(t, hasEvent(g.Events(), telemetry.EventScore, ""))

	assert.Equal(t, PhaseThrowIn, g.Phase())
	assert.Equal(t, components.TeamEnemy, g.script.ThrowInTeam)
	assert.InDelta(t, g.field.Length/2, g.script.ThrowInSpot.X, 1e-9, "under the basket ally attacks")
	assert.InDelta(t, 0, g.script.ThrowInSpot.Z, 1e-9)
	assert.NotEqual(t, components.NoCharacter, g.script.ReceiverID)
	assert.NotEqual(t, g.script.ThrowerID, g.script.ReceiverID)
}

// TestOutOfBoundsAwardsOpponent checks the last touch loses the ball.
func TestOutOfBoundsAwardsOpponent(t *testing.T) {
	g := newTestGame(t, 5)
	goLiveWith(g, 6)

	g.handleBallEvents([]systems.BallEvent{{
		Kind:     systems.BallOutOfBounds,
		Team:     components.TeamEnemy,
		Position: r3.Vec{X: 3, Z: 9},
	}})

	assert.Equal(t, PhaseThrowIn, g.Phase())
	assert.Equal(t, components.TeamAlly, g.script.ThrowInTeam)
	assert.Equal(t, r3.Vec{X: 3, Z: g.field.Width / 2}, g.script.ThrowInSpot)
	assert.True(t, hasEvent(g.Events(), telemetry.EventOutOfBounds, ""))
	assert.Equal(t, components.TeamAlly, g.Possession())
}

// TestThrowInSequence walks an inbound through the delay and into live play,
// and checks a held inbound turns into a violation.
func TestThrowInSequence(t *testing.T) {
	t.Run("ready after delay", func(t *testing.T) {
		g := newTestGame(t, 6)
		g.startThrowIn(components.TeamAlly, r3.Vec{X: -3, Z: -7.5}, "test")
		dt := g.cfg.Match.DT

		g.referee(dt)
		assert.False(t, g.script.ThrowInReady)

		g.phaseTime = g.cfg.Match.ThrowInDelay
		g.referee(dt)
		assert.True(t, g.script.ThrowInReady)

		// Inbound released: the thrower no longer holds the ball.
		g.ball.HolderID = components.NoCharacter
		g.referee(dt)
		assert.Equal(t, PhaseLive, g.Phase())
	})

	t.Run("held too long", func(t *testing.T) {
		g := newTestGame(t, 7)
		g.startThrowIn(components.TeamAlly, r3.Vec{X: -3, Z: -7.5}, "test")
		thrower := g.script.ThrowerID
		g.script.ThrowInReady = true
		g.readyTime = g.cfg.Match.ThrowInTimeout

		g.referee(g.cfg.Match.DT)

		assert.Equal(t, PhaseThrowIn, g.Phase())
		assert.Equal(t, components.TeamEnemy, g.script.ThrowInTeam)
		assert.False(t, g.script.ThrowInReady)
		assert.True(t, hasEvent(g.Events(), telemetry.EventViolation, "inbound"))
		assert.Equal(t, 1, g.BoxScore().Get(thrower).Turnovers)
	})
}

// TestMatchEndsWhenClockExpires checks the final buzzer stops the match.
func TestMatchEndsWhenClockExpires(t *testing.T) {
	g := newTestGame(t, 8)
	goLiveWith(g, 2)
	g.gameClock = g.cfg.Match.DT / 2

	g.Step()
	require.True(t, g.Over())
	assert.Equal(t, 0.0, g.GameClock())
	events := g.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, telemetry.EventPeriodEnd, events[len(events)-1].Type)

	tick := g.Tick()
	g.Step()
	assert.Equal(t, tick, g.Tick(), "no ticks after the buzzer")
}

// TestShotInAirBeatsTheBuzzer checks the match waits for a released shot.
func TestShotInAirBeatsTheBuzzer(t *testing.T) {
	g := newTestGame(t, 9)
	goLiveWith(g, 0)
	g.ballSys.LaunchShot(&g.ball, &g.chars[0], systems.ShotRelease{
		Rim:        g.field.AttackingGoal(components.TeamAlly).Rim,
		FlightTime: 1,
		Made:       true,
		Points:     2,
	})
	g.syncHasBall()
	g.gameClock = g.cfg.Match.DT / 2
	shotClock := g.shotClock

	g.referee(g.cfg.Match.DT)
	assert.False(t, g.Over(), "shot still in the air")
	assert.Equal(t, shotClock, g.shotClock, "shot clock off while the shot flies")

	for i := 0; i < 200 && !g.Over(); i++ {
		g.Step()
	}
	assert.True(t, g.Over())
	assert.Equal(t, 2, g.Score().Ally)
}

// TestOutputFiles checks a short match writes its CSV and config outputs.
func TestOutputFiles(t *testing.T) {
	config.MustInit("")
	dir := t.TempDir()
	g := NewGameWithOptions(Options{Seed: 10, OutputDir: dir, StatsWindowSec: 1})
	for i := 0; i < 150; i++ {
		g.Step()
	}
	g.Unload()

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "box_score.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
