package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/roster"
	"github.com/pthm-cable/hoops/systems"
	"github.com/pthm-cable/hoops/telemetry"
)

// spawnRoster creates one entity per roster entry. Entries are ordered by ID.
func (g *Game) spawnRoster(r *roster.Roster) {
	g.entities = make([]ecs.Entity, len(r.Entries))
	g.chars = make([]components.Character, len(r.Entries))

	for _, e := range r.Entries {
		body := components.BodyFromStats(e.Stats, g.cfg.Movement.DefaultMass)
		at := g.lineupSpot(e.Team, e.Role)

		pos := components.Position{Vec: at}
		vel := components.Velocity{}
		rot := components.Rotation{Facing: g.centerFacing(e.Team)}
		player := components.Player{ID: e.ID, Name: e.Name, Team: e.Team, Role: e.Role}
		stats := e.Stats

		g.entities[e.ID] = g.playerMapper.NewEntity(&pos, &vel, &rot, &player, &stats, &body)
		g.boxScore.Register(e.ID, e.Name, e.Team, e.Role)
	}

	g.snapshot()
	slog.Info("roster spawned", "players", len(r.Entries))
}

// lineupSpot is where a player waits on its own half before the tip.
func (g *Game) lineupSpot(t components.Team, role components.PositionRole) r3.Vec {
	own := g.field.DefendingGoal(t).Direction
	return r3.Vec{
		X: own * (2 + 1.5*float64(role)),
		Z: (float64(role) - 2) * 2.5,
	}
}

// centerFacing faces a team toward the basket it attacks.
func (g *Game) centerFacing(t components.Team) float64 {
	return g.field.AttackingGoal(t).Direction * math.Pi / 2
}

// startMatch resets the clocks and score and sets up the opening tip.
func (g *Game) startMatch() {
	g.gameClock = g.cfg.Match.GameLength
	g.score = telemetry.Score{}
	g.setupJumpBall()
	slog.Info("match_started",
		"seed", g.rngSeed,
		"game_length", g.cfg.Match.GameLength,
		"players", len(g.chars),
	)
}

// setupJumpBall lines both teams up and parks the ball at center court.
func (g *Game) setupJumpBall() {
	w := g.worldView()
	g.dispatcher.Reset(w)
	g.controller.Reset()
	for _, z := range g.zones {
		z.Reset()
	}

	for i := range g.chars {
		c := &g.chars[i]
		c.Position = g.lineupSpot(c.Team, c.Role)
		c.Velocity = r3.Vec{}
		c.Facing = g.centerFacing(c.Team)
		c.Action = nil
		c.Biting = 0
		c.HasBall = false
	}
	g.ballSys.Place(&g.ball, r3.Vec{})

	g.script = behavior.NoScript()
	g.script.Jumpers = [2]components.CharacterID{
		g.tallest(components.TeamAlly),
		g.tallest(components.TeamEnemy),
	}
	g.shotClock = g.cfg.Match.ShotClock
	g.rimTouched = false
	g.setPhase(PhaseJumpBall)
	g.commit()
}

// tallest picks a team's jumper; ties go to the lower ID.
func (g *Game) tallest(t components.Team) components.CharacterID {
	best := components.NoCharacter
	height := 0.0
	for i := range g.chars {
		c := &g.chars[i]
		if c.Team == t && c.Body.Height > height {
			best, height = c.ID, c.Body.Height
		}
	}
	return best
}

// startThrowIn hands the ball to the team's nearest player and scripts the
// inbound from a spot on the boundary line.
func (g *Game) startThrowIn(t components.Team, spot r3.Vec, reason string) {
	spot = g.field.Clamp(spot, 0)

	for i := range g.chars {
		g.controller.Cancel(g.chars[i].ID)
		g.chars[i].Action = nil
	}

	n, ok := systems.Nearest(g.chars, spot, t, systems.SameTeam, components.NoCharacter)
	if !ok {
		slog.Error("no thrower for throw-in", "team", t.String())
		return
	}
	thrower := &g.chars[n.Index]
	receiverID := components.NoCharacter
	if r, ok := systems.Nearest(g.chars, spot, t, systems.SameTeam, thrower.ID); ok {
		receiverID = g.chars[r.Index].ID
	}

	g.ballSys.Give(&g.ball, thrower)
	g.syncHasBall()

	g.script = behavior.NoScript()
	g.script.ThrowInTeam = t
	g.script.ThrowInSpot = spot
	g.script.ThrowerID = thrower.ID
	g.script.ReceiverID = receiverID

	g.readyTime = 0
	g.shotClock = g.cfg.Match.ShotClock
	g.rimTouched = false
	g.changePossession(t)
	g.setPhase(PhaseThrowIn)

	slog.Info("throw_in",
		"team", t.String(),
		"reason", reason,
		"thrower", thrower.ID,
		"receiver", receiverID,
		"x", spot.X,
		"z", spot.Z,
	)
}

// setPhase moves the referee to a new phase.
func (g *Game) setPhase(p Phase) {
	if p != g.phase {
		slog.Debug("phase_changed", "tick", g.tick, "from", g.phase.String(), "to", p.String())
	}
	g.phase = p
	g.phaseTime = 0
}

// changePossession records the team in control and restarts the shot clock
// when it changes hands.
func (g *Game) changePossession(t components.Team) {
	if t == g.possession {
		return
	}
	g.possession = t
	g.shotClock = g.cfg.Match.ShotClock
	slog.Debug("possession_changed", "tick", g.tick, "team", t.String(), "clock", g.gameClock)
}
