package game

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/actions"
	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
	"github.com/pthm-cable/hoops/telemetry"
)

// Step advances the match by one tick. Every AI reads the same snapshot,
// then all writes are committed before actions and the ball resolve.
func (g *Game) Step() {
	if g.phase == PhaseOver {
		return
	}
	dt := g.cfg.Match.DT

	g.perfCollector.StartTick()
	if g.tracing != nil {
		g.tracing.StartTick(g.ctx, g.tick, g.phase.String())
	}

	// 1. Read the ECS world into the tick snapshot
	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.snapshot()
	w := g.worldView()

	// 2. Decide everyone's behavior role
	g.perfCollector.StartPhase(telemetry.PhaseAssign)
	next := behavior.AssignStates(w, g.situation())

	// 3. Run the state AIs and commit their copies
	g.perfCollector.StartPhase(telemetry.PhaseBehavior)
	g.commitCharacters(g.dispatcher.Tick(w, next, dt))

	// 4. Advance action phases and resolve effects
	g.perfCollector.StartPhase(telemetry.PhaseActions)
	g.handleActionEvents(g.controller.Step(&g.ball, g.chars, dt))

	// 5. Move the ball
	g.perfCollector.StartPhase(telemetry.PhaseBall)
	var ballEvents []systems.BallEvent
	if g.ballInPlay() {
		ballEvents = g.ballSys.Step(&g.ball, g.chars, dt)
	}
	g.syncHasBall()

	// 6. Referee: scoring, clocks, restarts
	g.perfCollector.StartPhase(telemetry.PhaseReferee)
	g.handleBallEvents(ballEvents)
	g.referee(dt)
	g.commit()

	// 7. Telemetry
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	if g.ball.Held() {
		g.boxScore.AddBallTime(g.ball.HolderID, dt)
	}
	g.flushTelemetry()

	g.perfCollector.EndTick()
	if g.tracing != nil {
		g.tracing.EndTick()
	}
	g.time += dt
	g.tick++
}

// snapshot reads player components from the ECS world into the character
// view. Action and feint state are not stored as components.
func (g *Game) snapshot() {
	query := g.playerFilter.Query()
	for query.Next() {
		pos, vel, rot, player, stats, body := query.Get()
		c := &g.chars[player.ID]
		c.ID = player.ID
		c.Name = player.Name
		c.Team = player.Team
		c.Role = player.Role
		c.State = player.State
		c.HasBall = player.HasBall
		c.Position = pos.Vec
		c.Velocity = vel.Vec
		c.Facing = rot.Facing
		c.Stats = *stats
		c.Body = *body
		c.Action = g.controller.ActionOf(player.ID)
	}
}

// commit writes the character view back to the ECS world.
func (g *Game) commit() {
	for i := range g.chars {
		c := &g.chars[i]
		pos, vel, rot, player, _, _ := g.playerMapper.Get(g.entities[c.ID])
		pos.Vec = c.Position
		vel.Vec = c.Velocity
		rot.Facing = c.Facing
		player.State = c.State
		player.HasBall = c.HasBall
	}
}

// commitCharacters accepts the AIs' copies. Players stay on the floor and the
// controller's view of each action wins.
func (g *Game) commitCharacters(out []components.Character) {
	for i := range out {
		c := &out[i]
		c.Position = g.field.Clamp(c.Position, 0)
		c.Action = g.controller.ActionOf(c.ID)
	}
	g.chars = out
}

// worldView builds the read-only view the AIs share this tick.
func (g *Game) worldView() *behavior.World {
	return &behavior.World{
		Characters: g.chars,
		Ball:       g.ball,
		Field:      &g.field,
		OnBallID:   g.ball.HolderID,
		ShotClock:  g.shotClock,
		Time:       g.time,
		Zones:      g.zones,
		Script:     g.script,
	}
}

func (g *Game) situation() behavior.Situation {
	switch g.phase {
	case PhaseJumpBall:
		return behavior.SituationJumpBall
	case PhaseThrowIn:
		return behavior.SituationThrowIn
	}
	return behavior.SituationLive
}

// syncHasBall mirrors the ball's holder onto the characters.
func (g *Game) syncHasBall() {
	for i := range g.chars {
		g.chars[i].HasBall = g.chars[i].ID == g.ball.HolderID
	}
}

// handleActionEvents feeds resolved actions into the stats.
func (g *Game) handleActionEvents(events []actions.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case actions.EventPassReleased:
			g.lastPasser = ev.Actor
			g.collector.RecordPass()
			g.boxScore.RecordPass(ev.Actor)
		case actions.EventShotReleased:
			g.collector.RecordShot()
			g.boxScore.RecordShot(ev.Actor, ev.Points == 3)
			slog.Debug("shot_released", "tick", g.tick, "player", ev.Actor, "type", string(ev.Type), "points", ev.Points)
		case actions.EventStealWon:
			g.recordSteal(ev.Actor, ev.Team, ev.Target, false)
		case actions.EventInterception:
			g.recordSteal(ev.Actor, ev.Team, g.lastPasser, true)
		case actions.EventBlocked:
			g.collector.RecordBlock()
			g.boxScore.RecordBlock(ev.Actor)
			g.addEvent(telemetry.NewBlockEvent(g.tick, g.gameClock, ev.Actor, ev.Team, ev.Target))
		case actions.EventTipWon:
			slog.Info("jump_ball_won", "tick", g.tick, "player", ev.Actor, "team", ev.Team.String())
		case actions.EventPassAborted:
			slog.Debug("pass_aborted", "tick", g.tick, "player", ev.Actor, "receiver", ev.Target)
		}
	}
}

func (g *Game) recordSteal(stealer components.CharacterID, team components.Team, victim components.CharacterID, interception bool) {
	detail := "strip"
	if interception {
		detail = "interception"
	}
	g.collector.RecordSteal(interception)
	g.collector.RecordTurnover()
	g.boxScore.RecordSteal(stealer)
	g.boxScore.RecordTurnover(victim)
	g.addEvent(telemetry.NewStealEvent(g.tick, g.gameClock, stealer, team, victim, detail))
}

// handleBallEvents applies scoring and restarts for ball transitions.
func (g *Game) handleBallEvents(events []systems.BallEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case systems.BallCaught, systems.BallPickedUp:
			if g.rimTouched {
				// Rebound: a fresh possession either way.
				g.rimTouched = false
				g.shotClock = g.cfg.Match.ShotClock
			}
			g.changePossession(ev.Team)
		case systems.BallPassDropped:
			slog.Debug("pass_dropped", "tick", g.tick, "team", ev.Team.String())
		case systems.BallScored:
			g.addPoints(ev.Team, ev.Points)
			g.collector.RecordScore(ev.Points)
			g.boxScore.RecordScore(ev.Character, ev.Points)
			g.addEvent(telemetry.NewScoreEvent(g.tick, g.gameClock, ev.Character, ev.Team, ev.Points))
			slog.Info("shot_resolved",
				"tick", g.tick,
				"player", ev.Character,
				"team", ev.Team.String(),
				"made", true,
				"points", ev.Points,
				"ally", g.score.Ally,
				"enemy", g.score.Enemy,
			)
			g.startThrowIn(ev.Team.Opponent(), g.baselineSpot(ev.Team), "made_basket")
		case systems.BallMissed:
			g.rimTouched = true
			g.addEvent(telemetry.NewMissEvent(g.tick, g.gameClock, ev.Character, ev.Team))
			slog.Info("shot_resolved", "tick", g.tick, "player", ev.Character, "team", ev.Team.String(), "made", false)
		case systems.BallOutOfBounds:
			if ev.Team == g.possession {
				g.collector.RecordTurnover()
			}
			g.addEvent(telemetry.NewOutOfBoundsEvent(g.tick, g.gameClock, ev.Team))
			g.startThrowIn(ev.Team.Opponent(), ev.Position, "out_of_bounds")
		}
	}
}

// referee runs the clocks and the scripted restarts.
func (g *Game) referee(dt float64) {
	g.phaseTime += dt

	switch g.phase {
	case PhaseJumpBall:
		if !g.script.TossReleased {
			if g.phaseTime >= g.cfg.Match.JumpBallTossDelay {
				g.ballSys.Toss(&g.ball, r3.Vec{})
				g.script.TossReleased = true
				slog.Debug("ball_tossed", "tick", g.tick)
			}
			return
		}
		// Tipped, caught or dropped untouched.
		if !g.ball.InFlight || g.ball.Flight != components.FlightToss {
			g.goLive()
		}
	case PhaseThrowIn:
		if g.ball.HolderID != g.script.ThrowerID {
			g.goLive()
			return
		}
		if !g.script.ThrowInReady {
			g.script.ThrowInReady = g.phaseTime >= g.cfg.Match.ThrowInDelay
			return
		}
		g.readyTime += dt
		if g.readyTime >= g.cfg.Match.ThrowInTimeout {
			t := g.script.ThrowInTeam
			g.violation(t, g.script.ThrowerID, "inbound")
			g.startThrowIn(t.Opponent(), g.script.ThrowInSpot, "inbound_violation")
		}
	case PhaseLive:
		g.runClocks(dt)
	}

	if g.phase != PhaseOver && g.gameClock <= 0 && !g.shotInAir() {
		g.endMatch()
	}
}

// runClocks counts down the game and shot clocks. A released shot beats
// the shot clock.
func (g *Game) runClocks(dt float64) {
	g.gameClock = math.Max(0, g.gameClock-dt)
	if g.shotInAir() {
		return
	}
	g.shotClock -= dt
	if g.shotClock > 0 || g.gameClock <= 0 {
		return
	}

	t := g.possession
	g.violation(t, g.ball.HolderID, "shot_clock")
	g.startThrowIn(t.Opponent(), g.sidelineSpot(g.ball.Position), "shot_clock")
}

// violation charges a turnover to the team.
func (g *Game) violation(t components.Team, player components.CharacterID, detail string) {
	g.collector.RecordViolation()
	g.collector.RecordTurnover()
	if player != components.NoCharacter {
		g.boxScore.RecordTurnover(player)
	}
	g.addEvent(telemetry.NewViolationEvent(g.tick, g.gameClock, t, detail))
	slog.Info("violation", "tick", g.tick, "team", t.String(), "detail", detail)
}

// goLive hands control back to the behavior roles.
func (g *Game) goLive() {
	g.script = behavior.NoScript()
	if holder, ok := systems.FindCharacter(g.chars, g.ball.HolderID); ok {
		g.changePossession(holder.Team)
	}
	g.setPhase(PhaseLive)
}

// endMatch stops play and records the final buzzer.
func (g *Game) endMatch() {
	g.setPhase(PhaseOver)
	g.controller.Reset()
	for i := range g.chars {
		g.chars[i].Action = nil
	}
	g.addEvent(telemetry.NewPeriodEndEvent(g.tick, "final"))
	slog.Info("match_over",
		"tick", g.tick,
		"ally", g.score.Ally,
		"enemy", g.score.Enemy,
	)
	g.flushWindow()
	if g.logStats {
		g.logBoxScore()
	}
}

// ballInPlay reports whether the ball moves this tick. It stays dead at
// center court until the jump ball toss.
func (g *Game) ballInPlay() bool {
	return g.phase != PhaseJumpBall || g.script.TossReleased
}

func (g *Game) shotInAir() bool {
	return g.ball.InFlight && g.ball.Flight == components.FlightShot
}

func (g *Game) addPoints(t components.Team, points int) {
	if t == components.TeamAlly {
		g.score.Ally += points
	} else {
		g.score.Enemy += points
	}
}

func (g *Game) addEvent(ev telemetry.Event) {
	g.events = append(g.events, ev)
}

// baselineSpot is the inbound spot after the team scores: under the basket
// it attacks.
func (g *Game) baselineSpot(scorer components.Team) r3.Vec {
	goal := g.field.AttackingGoal(scorer)
	return r3.Vec{X: goal.Direction * g.field.Length / 2}
}

// sidelineSpot is the closest sideline point to p.
func (g *Game) sidelineSpot(p r3.Vec) r3.Vec {
	side := 1.0
	if p.Z < 0 {
		side = -1
	}
	return r3.Vec{X: p.X, Z: side * g.field.Width / 2}
}
