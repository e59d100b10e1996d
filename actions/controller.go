// Package actions is the reference action controller: it owns action phases
// and cooldowns, answers the behavior engine's requests and resolves the
// effect of every action on the ball and the players.
package actions

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/systems"
)

// Rejection messages.
const (
	msgStarted    = "started"
	msgBusy       = "busy"
	msgCooldown   = "cooldown"
	msgUnknown    = "unknown action"
	msgNoBall     = "needs the ball"
	msgHasBall    = "cannot while holding the ball"
	msgNoReceiver = "no receiver"
)

// cooldown groups share one timer.
func cooldownGroup(t components.ActionType) string {
	switch {
	case t.IsShot():
		return "shot"
	case t.IsPass():
		return "pass"
	}
	return string(t)
}

// running is an action in progress.
type running struct {
	actor     components.CharacterID
	team      components.Team
	typ       components.ActionType
	phase     components.ActionPhase
	elapsed   float64
	target    components.CharacterID
	targetPos r3.Vec
	timing    config.ActionTiming
}

func (r *running) view() *components.Action {
	return &components.Action{Type: r.typ, Phase: r.phase, Elapsed: r.elapsed, Target: r.target}
}

// Controller is the single owner of action phases and cooldowns.
type Controller struct {
	cfg    *config.Config
	field  *components.Field
	ball   *systems.BallSystem
	passer *systems.Passer
	risk   *systems.RiskAnalyzer
	rng    systems.Rand

	running   map[components.CharacterID]*running
	cooldowns map[components.CharacterID]map[string]float64
	passTypes map[components.ActionType]systems.PassType
}

// NewController creates a controller resolving effects through the given
// ball system.
func NewController(cfg *config.Config, field *components.Field, ball *systems.BallSystem, rng systems.Rand) *Controller {
	passer := systems.NewPasser(cfg)
	c := &Controller{
		cfg:       cfg,
		field:     field,
		ball:      ball,
		passer:    passer,
		risk:      systems.NewRiskAnalyzer(cfg, passer),
		rng:       rng,
		running:   make(map[components.CharacterID]*running),
		cooldowns: make(map[components.CharacterID]map[string]float64),
		passTypes: make(map[components.ActionType]systems.PassType),
	}
	for name, spec := range cfg.Passes.Types {
		c.passTypes[components.ActionType(spec.Action)] = systems.PassType(name)
	}
	return c
}

var _ behavior.ActionController = (*Controller)(nil)

// Reset cancels every action and clears all cooldowns.
func (c *Controller) Reset() {
	clear(c.running)
	clear(c.cooldowns)
}

// Cancel drops a character's action without resolving it.
func (c *Controller) Cancel(id components.CharacterID) {
	delete(c.running, id)
}

// ActionOf returns a fresh copy of the character's action, or nil when idle.
func (c *Controller) ActionOf(id components.CharacterID) *components.Action {
	r, ok := c.running[id]
	if !ok {
		return nil
	}
	return r.view()
}

// Cooldown returns the seconds left before the action's group is ready.
func (c *Controller) Cooldown(id components.CharacterID, t components.ActionType) float64 {
	return c.cooldowns[id][cooldownGroup(t)]
}

func (c *Controller) ready(ch *components.Character, t components.ActionType) bool {
	if _, busy := c.running[ch.ID]; busy || ch.Busy() {
		return false
	}
	return c.Cooldown(ch.ID, t) <= 0
}

// StartAction validates a request and starts the action on success. The
// character's Action is replaced with the controller's view.
func (c *Controller) StartAction(ch *components.Character, req behavior.ActionRequest) behavior.ActionResult {
	timing, ok := c.cfg.Actions.Timings[string(req.Type)]
	if !ok {
		return behavior.ActionResult{Message: msgUnknown}
	}
	if _, busy := c.running[ch.ID]; busy || ch.Busy() {
		return behavior.ActionResult{Message: msgBusy}
	}
	if c.Cooldown(ch.ID, req.Type) > 0 {
		return behavior.ActionResult{Message: msgCooldown}
	}
	switch {
	case req.Type.NeedsBall() && !ch.HasBall:
		return behavior.ActionResult{Message: msgNoBall}
	case (req.Type == components.ActionStealAttempt || req.Type == components.ActionBlockShot) && ch.HasBall:
		return behavior.ActionResult{Message: msgHasBall}
	case req.Type.IsPass() && req.TargetID == components.NoCharacter:
		return behavior.ActionResult{Message: msgNoReceiver}
	}

	r := &running{
		actor:     ch.ID,
		team:      ch.Team,
		typ:       req.Type,
		phase:     components.PhaseStartup,
		target:    req.TargetID,
		targetPos: req.TargetPos,
		timing:    timing,
	}
	c.running[ch.ID] = r
	ch.Action = r.view()
	return behavior.ActionResult{Success: true, Message: msgStarted}
}

func (c *Controller) CanShoot(ch *components.Character) bool {
	return ch.HasBall && c.ready(ch, components.ActionShoot3pt)
}

func (c *Controller) CanPass(ch *components.Character) bool {
	return ch.HasBall && c.ready(ch, components.ActionPassChest)
}

func (c *Controller) CanFeint(ch *components.Character) bool {
	return ch.HasBall && c.ready(ch, components.ActionFeintShot)
}

func (c *Controller) CanSteal(ch *components.Character) bool {
	return !ch.HasBall && c.ready(ch, components.ActionStealAttempt)
}

func (c *Controller) CanBlock(ch *components.Character) bool {
	return !ch.HasBall && c.ready(ch, components.ActionBlockShot)
}

// ShootRangeInfo classifies a shot from the character's spot toward the rim
// it attacks.
func (c *Controller) ShootRangeInfo(ch *components.Character) behavior.ShotRange {
	shots := c.cfg.Actions.Shots
	rim := c.field.AttackingGoal(ch.Team).Floor()
	dist := systems.FlatDistance(ch.Position, rim)
	beyond := c.field.BeyondArc(ch.Team, ch.Position)

	info := behavior.ShotRange{Distance: dist, InRange: dist <= shots.MaxRange, Points: 2}
	switch {
	case dist <= shots.DunkRange && ch.Body.Height >= shots.DunkHeight:
		info.Type = components.ActionShootDunk
	case dist <= shots.LayupRange:
		info.Type = components.ActionShootLayup
	case beyond:
		info.Type = components.ActionShoot3pt
		info.Points = 3
	default:
		info.Type = components.ActionShootMidrange
	}
	return info
}

// sortedRunning returns the running actions in actor order.
func (c *Controller) sortedRunning() []*running {
	out := make([]*running, 0, len(c.running))
	for _, r := range c.running {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].actor < out[j].actor })
	return out
}
