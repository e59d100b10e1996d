package actions

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// EventKind tags an action outcome.
type EventKind uint8

const (
	EventPassReleased EventKind = iota
	EventPassAborted
	EventShotReleased
	EventStealWon
	EventInterception
	EventStealMissed
	EventBlocked
	EventBlockMissed
	EventFeint
	EventTipWon
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventPassReleased:
		return "pass_released"
	case EventPassAborted:
		return "pass_aborted"
	case EventShotReleased:
		return "shot_released"
	case EventStealWon:
		return "steal_won"
	case EventInterception:
		return "interception"
	case EventStealMissed:
		return "steal_missed"
	case EventBlocked:
		return "blocked"
	case EventBlockMissed:
		return "block_missed"
	case EventFeint:
		return "feint"
	case EventTipWon:
		return "tip_won"
	case EventCompleted:
		return "completed"
	}
	return "unknown"
}

// Event is one resolved action effect.
type Event struct {
	Kind   EventKind
	Type   components.ActionType
	Actor  components.CharacterID
	Target components.CharacterID
	Team   components.Team
	Points int     // shots: value if made
	Made   bool    // shots: outcome decided at release
	Risk   float64 // passes: interception risk at release
	Count  int     // feints: defenders biting
}

// Step advances every action by dt and applies effects to the ball and the
// characters. characters is the committed state for this tick and is written
// in place: biting timers and the Action view of every character.
func (c *Controller) Step(b *components.Ball, characters []components.Character, dt float64) []Event {
	if dt < 0 {
		dt = 0
	}
	for i := range characters {
		if characters[i].Biting > 0 {
			characters[i].Biting = math.Max(0, characters[i].Biting-dt)
		}
	}
	for _, groups := range c.cooldowns {
		for g, left := range groups {
			if left > 0 {
				groups[g] = math.Max(0, left-dt)
			}
		}
	}

	var events []Event
	for _, r := range c.sortedRunning() {
		if _, ok := c.running[r.actor]; !ok {
			continue // cancelled by an earlier resolution this step
		}
		events = c.advance(r, b, characters, dt, events)
	}

	for i := range characters {
		characters[i].Action = c.ActionOf(characters[i].ID)
	}
	return events
}

// advance moves one action through as many phase boundaries as dt covers.
func (c *Controller) advance(r *running, b *components.Ball, characters []components.Character, dt float64, events []Event) []Event {
	r.elapsed += dt
	for {
		var limit float64
		switch r.phase {
		case components.PhaseStartup:
			limit = r.timing.Startup
		case components.PhaseActive:
			limit = r.timing.Active
		case components.PhaseRecovery:
			limit = r.timing.Recovery
		}
		if r.elapsed < limit {
			return events
		}
		r.elapsed -= limit

		switch r.phase {
		case components.PhaseStartup:
			r.phase = components.PhaseActive
			events = c.onActive(r, b, characters, events)
		case components.PhaseActive:
			r.phase = components.PhaseRecovery
			events = c.onRelease(r, b, characters, events)
		case components.PhaseRecovery:
			c.finish(r)
			return append(events, Event{Kind: EventCompleted, Type: r.typ, Actor: r.actor, Team: r.team})
		}
		if _, ok := c.running[r.actor]; !ok {
			return events
		}
	}
}

func (c *Controller) finish(r *running) {
	delete(c.running, r.actor)
	groups, ok := c.cooldowns[r.actor]
	if !ok {
		groups = make(map[string]float64)
		c.cooldowns[r.actor] = groups
	}
	groups[cooldownGroup(r.typ)] = r.timing.Cooldown
}

// abort ends an action early. The cooldown still applies.
func (c *Controller) abort(id components.CharacterID) {
	if r, ok := c.running[id]; ok {
		c.finish(r)
	}
}

// onActive resolves actions that take effect as soon as they go live.
func (c *Controller) onActive(r *running, b *components.Ball, characters []components.Character, events []Event) []Event {
	actor, ok := systems.FindCharacter(characters, r.actor)
	if !ok {
		c.Cancel(r.actor)
		return events
	}
	switch r.typ {
	case components.ActionStealAttempt:
		return c.resolveSteal(actor, b, characters, events)
	case components.ActionBlockShot:
		return c.resolveBlock(r, actor, b, characters, events)
	case components.ActionFeintShot:
		return c.resolveFeint(actor, characters, events)
	case components.ActionJumpTip:
		return c.resolveTip(actor, b, characters, events)
	}
	if r.typ.NeedsBall() && b.HolderID != actor.ID {
		c.abort(r.actor)
	}
	return events
}

// onRelease lets go of passes and shots at the end of the active window.
func (c *Controller) onRelease(r *running, b *components.Ball, characters []components.Character, events []Event) []Event {
	if !r.typ.IsPass() && !r.typ.IsShot() {
		return events
	}
	actor, ok := systems.FindCharacter(characters, r.actor)
	if !ok || b.HolderID != actor.ID {
		c.abort(r.actor)
		return events
	}
	if r.typ.IsPass() {
		return c.releasePass(r, actor, b, characters, events)
	}
	return c.releaseShot(r, actor, b, characters, events)
}

func (c *Controller) releasePass(r *running, passer *components.Character, b *components.Ball, characters []components.Character, events []Event) []Event {
	receiver, ok := systems.FindCharacter(characters, r.target)
	if !ok {
		c.abort(r.actor)
		return append(events, Event{Kind: EventPassAborted, Type: r.typ, Actor: r.actor, Target: r.target, Team: r.team})
	}
	pt := c.passTypes[r.typ]
	traj := c.passer.CalculateTrajectory(passer.Position, receiver.Position, pt, 0)
	if traj == nil {
		// The receiver moved out of range for the chosen style.
		if best, _, ok := c.risk.BestPassRisk(passer.Position, receiver.Position, characters, passer.Team); ok {
			traj = c.passer.CalculateTrajectory(passer.Position, receiver.Position, best, 0)
		}
	}
	if traj == nil {
		c.abort(r.actor)
		return append(events, Event{Kind: EventPassAborted, Type: r.typ, Actor: r.actor, Target: r.target, Team: r.team})
	}
	risk := c.risk.AnalyzeTrajectoryRisk(traj, characters, passer.Team)
	c.ball.LaunchPass(b, passer, receiver.ID, traj)
	return append(events, Event{Kind: EventPassReleased, Type: r.typ, Actor: r.actor, Target: receiver.ID, Team: r.team, Risk: risk.Probability})
}

// makeProbability combines the base rate, the shooter's rating and the
// nearest defender's contest.
func (c *Controller) makeProbability(shooter *components.Character, typ components.ActionType, inRange bool, characters []components.Character) float64 {
	shots := c.cfg.Actions.Shots
	p := shots.BaseMake[string(typ)] * systems.Lerp(0.6, 1.4, components.Rating(shooter.Stats.Shooting))
	if !inRange {
		p *= 0.3
	}
	if n, ok := systems.Nearest(characters, shooter.Position, shooter.Team, systems.OtherTeam, shooter.ID); ok && shots.ContestRadius > 0 {
		contest := systems.Clamp01(1 - n.Dist/shots.ContestRadius)
		p *= 1 - shots.ContestPenalty*contest
	}
	return systems.Clamp01(p)
}

func (c *Controller) releaseShot(r *running, shooter *components.Character, b *components.Ball, characters []components.Character, events []Event) []Event {
	info := c.ShootRangeInfo(shooter)
	made := c.rng.Float64() < c.makeProbability(shooter, r.typ, info.InRange, characters)
	points := info.Points
	if r.typ == components.ActionShoot3pt && !c.field.BeyondArc(shooter.Team, shooter.Position) {
		points = 2
	}
	c.ball.LaunchShot(b, shooter, systems.ShotRelease{
		Rim:        c.field.AttackingGoal(shooter.Team).Rim,
		FlightTime: c.cfg.Actions.Shots.FlightTime,
		Made:       made,
		Points:     points,
		Deflection: (c.rng.Float64()*2 - 1) * 0.6,
	})
	return append(events, Event{Kind: EventShotReleased, Type: r.typ, Actor: r.actor, Team: r.team, Points: points, Made: made})
}

func (c *Controller) resolveSteal(actor *components.Character, b *components.Ball, characters []components.Character, events []Event) []Event {
	a := c.cfg.Actions
	skill := systems.Lerp(0.5, 1.5, components.Rating(actor.Stats.Steal))
	ev := Event{Kind: EventStealMissed, Type: components.ActionStealAttempt, Actor: actor.ID, Team: actor.Team}

	if holder, ok := systems.FindCharacter(characters, b.HolderID); ok && holder.Team != actor.Team {
		ev.Target = holder.ID
		if systems.FlatDistance(actor.Position, holder.Position) > a.StealReach {
			return append(events, ev)
		}
		security := systems.Lerp(1.3, 0.7, components.Rating(holder.Stats.Offense))
		if c.rng.Float64() < systems.Clamp01(a.StealBase*skill*security) {
			c.Cancel(holder.ID)
			c.ball.Give(b, actor)
			ev.Kind = EventStealWon
		}
		return append(events, ev)
	}

	if b.InFlight && b.Flight == components.FlightPass && b.LastTouch != actor.Team {
		ev.Target = b.PassTargetID
		reach := actor.Body.Height*c.cfg.Risk.ReachFactor + c.cfg.Risk.JumpReach
		if systems.FlatDistance(actor.Position, b.Position) <= a.StealReach && b.Position.Y <= reach {
			if c.rng.Float64() < systems.Clamp01(2*a.StealBase*skill) {
				c.ball.Give(b, actor)
				ev.Kind = EventInterception
			}
		}
	}
	return append(events, ev)
}

func (c *Controller) resolveBlock(r *running, actor *components.Character, b *components.Ball, characters []components.Character, events []Event) []Event {
	ev := Event{Kind: EventBlockMissed, Type: components.ActionBlockShot, Actor: actor.ID, Target: r.target, Team: actor.Team}
	shot, ok := c.running[r.target]
	if !ok || !shot.typ.Blockable() || shot.phase == components.PhaseRecovery || b.HolderID != shot.actor {
		return append(events, ev)
	}
	shooter, ok := systems.FindCharacter(characters, shot.actor)
	if !ok || systems.FlatDistance(actor.Position, shooter.Position) > c.cfg.AI.Defense.BlockRange {
		return append(events, ev)
	}

	skill := systems.Lerp(0.6, 1.4, (components.Rating(actor.Stats.Defense)+components.Rating(actor.Stats.Reflexes))/2)
	size := systems.Clamp(actor.Body.Height/math.Max(shooter.Body.Height, 1), 0.8, 1.2)
	if c.rng.Float64() >= systems.Clamp01(c.cfg.Actions.BlockBase*skill*size) {
		return append(events, ev)
	}

	c.Cancel(shooter.ID)
	away, ok := systems.Direction(actor.Position, shooter.Position)
	if !ok {
		away = systems.ForwardVector(actor.Facing)
	}
	vel := r3.Scale(3, away)
	vel.Y = 1
	b.Position = c.ball.HandPosition(shooter)
	c.ball.Knock(b, vel, actor.Team)
	ev.Kind = EventBlocked
	return append(events, ev)
}

func (c *Controller) resolveFeint(actor *components.Character, characters []components.Character, events []Event) []Event {
	a := c.cfg.Actions
	count := 0
	for i := range characters {
		d := &characters[i]
		if d.Team == actor.Team || systems.FlatDistance(d.Position, actor.Position) > a.FeintRadius {
			continue
		}
		bite := systems.Lerp(0.8, 0.2, components.Rating(d.Stats.Reflexes)) * systems.Lerp(0.7, 1.3, components.Rating(actor.Stats.Offense))
		if c.rng.Float64() < systems.Clamp01(bite) {
			d.Biting = a.FeintBiteDuration
			count++
		}
	}
	return append(events, Event{Kind: EventFeint, Type: components.ActionFeintShot, Actor: actor.ID, Team: actor.Team, Count: count})
}

// resolveTip settles the jump ball between the actor and the opposing jumper.
// The winner taps the ball toward the nearest teammate.
func (c *Controller) resolveTip(actor *components.Character, b *components.Ball, characters []components.Character, events []Event) []Event {
	if !b.InFlight || b.Flight != components.FlightToss {
		return events
	}
	reach := actor.Body.Height*c.cfg.Risk.ReachFactor + c.cfg.Risk.JumpReach
	if systems.FlatDistance(actor.Position, b.Position) > c.cfg.Ball.PickupReach*2 || b.Position.Y > reach+0.5 {
		return events
	}

	score := func(ch *components.Character) float64 {
		return ch.Body.Height * systems.Lerp(0.5, 1.5, components.Rating(ch.Stats.Quickness))
	}
	winner := actor
	for i := range characters {
		o := &characters[i]
		r, ok := c.running[o.ID]
		if o.Team == actor.Team || !ok || r.typ != components.ActionJumpTip {
			continue
		}
		sa, so := score(actor), score(o)
		if c.rng.Float64() >= sa/(sa+so) {
			winner = o
		}
		break
	}

	dir := r3.Vec{X: c.field.AttackingGoal(winner.Team).Direction}
	if n, ok := systems.Nearest(characters, winner.Position, winner.Team, systems.SameTeam, winner.ID); ok {
		if d, ok := systems.SafeUnit(n.Delta); ok {
			dir = d
		}
	}
	vel := r3.Scale(4, dir)
	vel.Y = 1
	c.ball.Knock(b, vel, winner.Team)
	return append(events, Event{Kind: EventTipWon, Type: components.ActionJumpTip, Actor: winner.ID, Team: winner.Team})
}
