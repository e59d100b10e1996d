package telemetry

import (
	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
)

// Collector accumulates decisions and outcomes within time windows and
// produces WindowStats. It also serves as the behavior engine's tracer.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Decision counters for current window
	transitions int
	requests    map[components.ActionType]int
	rejections  map[components.ActionType]int
	passRisks   []float64

	// Outcome counters for current window
	shotsAttempted int
	shotsMade      int
	threesMade     int
	passes         int
	steals         int
	interceptions  int
	blocks         int
	turnovers      int
	violations     int
}

var _ behavior.Tracer = (*Collector)(nil)

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in match seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		requests:            make(map[components.ActionType]int),
		rejections:          make(map[components.ActionType]int),
	}
}

// StateChanged counts behavior state transitions.
func (c *Collector) StateChanged(components.CharacterID, components.BehaviorState, components.BehaviorState) {
	c.transitions++
}

// ActionRequested counts requests and rejections per action type.
func (c *Collector) ActionRequested(_ components.CharacterID, req behavior.ActionRequest, res behavior.ActionResult) {
	c.requests[req.Type]++
	if !res.Success {
		c.rejections[req.Type]++
	}
}

// PassEvaluated records the risk of the pass a holder settled on.
func (c *Collector) PassEvaluated(_, _ components.CharacterID, risk float64) {
	c.passRisks = append(c.passRisks, risk)
}

// RecordShot records a released shot.
func (c *Collector) RecordShot() {
	c.shotsAttempted++
}

// RecordScore records a made basket.
func (c *Collector) RecordScore(points int) {
	c.shotsMade++
	if points == 3 {
		c.threesMade++
	}
}

// RecordPass records a released pass.
func (c *Collector) RecordPass() {
	c.passes++
}

// RecordSteal records a steal. Interceptions are steals of a pass in flight.
func (c *Collector) RecordSteal(interception bool) {
	c.steals++
	if interception {
		c.interceptions++
	}
}

// RecordBlock records a blocked shot.
func (c *Collector) RecordBlock() {
	c.blocks++
}

// RecordTurnover records a change of possession without a shot.
func (c *Collector) RecordTurnover() {
	c.turnovers++
}

// RecordViolation records a shot clock or inbound violation.
func (c *Collector) RecordViolation() {
	c.violations++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Score is the scoreboard at flush time.
type Score struct {
	Ally  int `json:"ally"`
	Enemy int `json:"enemy"`
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, score Score) WindowStats {
	var fgPct float64
	if c.shotsAttempted > 0 {
		fgPct = float64(c.shotsMade) / float64(c.shotsAttempted)
	}

	var requests, rejections, shotRequests, passRequests int
	for t, n := range c.requests {
		requests += n
		switch {
		case t.IsShot():
			shotRequests += n
		case t.IsPass():
			passRequests += n
		}
	}
	for _, n := range c.rejections {
		rejections += n
	}
	var rejectRate float64
	if requests > 0 {
		rejectRate = float64(rejections) / float64(requests)
	}

	riskMean, riskP90 := ComputeRiskStats(c.passRisks)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		MatchTimeSec:    float64(currentTick) * c.dt,

		AllyScore:  score.Ally,
		EnemyScore: score.Enemy,

		Transitions:   c.transitions,
		Requests:      requests,
		Rejections:    rejections,
		RejectRate:    rejectRate,
		ShotRequests:  shotRequests,
		PassRequests:  passRequests,
		StealRequests: c.requests[components.ActionStealAttempt],
		BlockRequests: c.requests[components.ActionBlockShot],
		FeintRequests: c.requests[components.ActionFeintShot],
		DriveRequests: c.requests[components.ActionDribbleBreakthrough],

		PassesEvaluated: len(c.passRisks),
		PassRiskMean:    riskMean,
		PassRiskP90:     riskP90,

		ShotsAttempted: c.shotsAttempted,
		ShotsMade:      c.shotsMade,
		ThreesMade:     c.threesMade,
		FieldGoalPct:   fgPct,
		Passes:         c.passes,
		Steals:         c.steals,
		Interceptions:  c.interceptions,
		Blocks:         c.blocks,
		Turnovers:      c.turnovers,
		Violations:     c.violations,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.transitions = 0
	clear(c.requests)
	clear(c.rejections)
	c.passRisks = c.passRisks[:0]
	c.shotsAttempted = 0
	c.shotsMade = 0
	c.threesMade = 0
	c.passes = 0
	c.steals = 0
	c.interceptions = 0
	c.blocks = 0
	c.turnovers = 0
	c.violations = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
