package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/game"
	"github.com/pthm-cable/hoops/roster"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	rosterPath := flag.String("roster", "", "Path to roster CSV (empty = built-in roster)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, box score and snapshots")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until the final buzzer)")
	trace := flag.Bool("trace", false, "Export decisions through OpenTelemetry")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	r, err := roster.Load(*rosterPath)
	if err != nil {
		slog.Error("failed to load roster", "error", err)
		os.Exit(1)
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Roster:         r,
		Tracing:        *trace,
	}

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless match",
		"seed", rngSeed,
		"stats_window", *statsWindow,
		"max_ticks", *maxTicks,
	)

	for !g.Over() {
		g.Step()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	score := g.Score()
	slog.Info("final score", "ally", score.Ally, "enemy", score.Enemy, "tick", g.Tick())
}
