// Package game runs a match: the ECS player world, the referee and the
// per-tick pipeline that feeds the behavior engine and the action controller.
package game

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/actions"
	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/roster"
	"github.com/pthm-cable/hoops/systems"
	"github.com/pthm-cable/hoops/telemetry"
)

// Options configures a match.
type Options struct {
	Seed           uint64
	LogStats       bool           // Output window stats via slog
	StatsWindowSec float64        // Stats window size in seconds (0 = use config)
	OutputDir      string         // Directory for CSV logs, box score and snapshots
	Roster         *roster.Roster // nil = built-in roster
	Tracing        bool           // Export decisions through OpenTelemetry
	Config         *config.Config // nil = global config

	// Called with every flushed stats window
	StatsCallback func(telemetry.WindowStats)
}

// Phase is the referee state of the match.
type Phase uint8

const (
	PhaseJumpBall Phase = iota
	PhaseLive
	PhaseThrowIn
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseJumpBall:
		return "jump_ball"
	case PhaseLive:
		return "live"
	case PhaseThrowIn:
		return "throw_in"
	}
	return "over"
}

// Game holds the complete match state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed uint64

	// Entity mappers over the six player components
	playerMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Player,
		components.Stats,
		components.Body,
	]
	playerFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Player,
		components.Stats,
		components.Body,
	]
	entities []ecs.Entity // indexed by CharacterID

	// Per-tick character view; carries what the ECS does not store
	chars []components.Character

	field      components.Field
	ballSys    *systems.BallSystem
	ball       components.Ball
	controller *actions.Controller
	deps       *behavior.Deps
	dispatcher *behavior.Dispatcher
	zones      [2]*systems.ZoneRegistry
	script     behavior.ScriptSignals

	// Referee state
	phase      Phase
	phaseTime  float64
	readyTime  float64 // throw-in time since the inbound was allowed
	tick       int32
	time       float64
	gameClock  float64
	shotClock  float64
	score      telemetry.Score
	possession components.Team
	rimTouched bool
	lastPasser components.CharacterID

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	boxScore         *telemetry.BoxScore
	outputManager    *telemetry.OutputManager
	tracing          *telemetry.Tracing
	events           []telemetry.Event
	eventsWritten    int // events already in events.csv
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	ctx              context.Context
}

// NewGame creates a match with default options.
func NewGame() *Game {
	return NewGameWithOptions(Options{Seed: 1})
}

// NewGameWithOptions creates a match with the given options.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	world := ecs.NewWorld()

	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:     cfg,
		world:   world,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		rngSeed: opts.Seed,
		playerMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Player,
			components.Stats,
			components.Body,
		](world),
		playerFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Player,
			components.Stats,
			components.Body,
		](world),
		field:            components.NewField(cfg.Court),
		script:           behavior.NoScript(),
		lastPasser:       components.NoCharacter,
		collector:        telemetry.NewCollector(windowSec, cfg.Match.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		boxScore:         telemetry.NewBoxScore(),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		ctx:              context.Background(),
	}

	g.ballSys = systems.NewBallSystem(cfg, &g.field)
	// Action rolls draw from their own stream so AI changes do not shift them.
	actionRNG := rand.New(rand.NewPCG(opts.Seed^0x5851f42d4c957f2d, opts.Seed))
	g.controller = actions.NewController(cfg, &g.field, g.ballSys, actionRNG)
	g.deps = behavior.NewDeps(cfg, &g.field, g.controller, g.rng)
	g.deps.Tracer = g.collector
	for t := range g.zones {
		g.zones[t] = systems.NewZoneRegistry(g.deps.Zones.Zones())
	}

	if opts.Tracing {
		tr, err := telemetry.NewTracing()
		if err != nil {
			slog.Error("failed to create tracing", "error", err)
		} else {
			g.tracing = tr
			g.deps.Tracer = telemetry.Tracers{g.collector, tr}
		}
	}
	g.dispatcher = behavior.NewDispatcher(g.deps)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	r := opts.Roster
	if r == nil {
		r = roster.Default()
	}
	g.spawnRoster(r)
	g.startMatch()

	return g
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Phase returns the referee phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Over reports whether the game clock has run out.
func (g *Game) Over() bool {
	return g.phase == PhaseOver
}

// Score returns the current score.
func (g *Game) Score() telemetry.Score {
	return g.score
}

// GameClock returns the seconds left in the match.
func (g *Game) GameClock() float64 {
	return g.gameClock
}

// ShotClock returns the seconds left in the possession.
func (g *Game) ShotClock() float64 {
	return g.shotClock
}

// Possession returns the team last in control of the ball.
func (g *Game) Possession() components.Team {
	return g.possession
}

// Ball returns a copy of the ball.
func (g *Game) Ball() components.Ball {
	return g.ball
}

// Characters returns a copy of the current character view.
func (g *Game) Characters() []components.Character {
	out := make([]components.Character, len(g.chars))
	copy(out, g.chars)
	return out
}

// Events returns the play-by-play so far.
func (g *Game) Events() []telemetry.Event {
	return g.events
}

// BoxScore returns the per-player box score.
func (g *Game) BoxScore() *telemetry.BoxScore {
	return g.boxScore
}

// PlayerPosition reads a player's position from the ECS world.
func (g *Game) PlayerPosition(id components.CharacterID) (r3.Vec, bool) {
	if int(id) < 0 || int(id) >= len(g.entities) {
		return r3.Vec{}, false
	}
	pos, _, _, _, _, _ := g.playerMapper.Get(g.entities[id])
	return pos.Vec, true
}

// Unload writes the final outputs and releases resources.
func (g *Game) Unload() {
	if g.outputManager == nil {
		return
	}
	g.writeEvents()
	if err := g.outputManager.WriteBoxScore(g.boxScore); err != nil {
		slog.Error("failed to write box score", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
	g.outputManager = nil
}
