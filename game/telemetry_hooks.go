package game

import (
	"log/slog"

	"github.com/pthm-cable/hoops/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}
	g.flushWindow()
}

// flushWindow closes the current stats window.
func (g *Game) flushWindow() {
	stats := g.collector.Flush(g.tick, g.score)
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logMatchState()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		g.writeEvents()
	}

	// Check for bookmarks
	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			g.saveSnapshot(&bm)
		}
	}
}

// writeEvents appends the play-by-play recorded since the last write.
func (g *Game) writeEvents() {
	if g.eventsWritten >= len(g.events) {
		return
	}
	if err := g.outputManager.WriteEvents(g.events[g.eventsWritten:]); err != nil {
		slog.Error("failed to write events", "error", err)
		return
	}
	g.eventsWritten = len(g.events)
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := g.outputManager.WriteSnapshot(g.createSnapshot(bookmark))
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   g.rngSeed,
		Tick:      g.tick,
		Phase:     g.phase.String(),
		GameClock: g.gameClock,
		ShotClock: g.shotClock,
		Score:     g.score,
		Ball:      telemetry.NewBallState(&g.ball),
		Bookmark:  bookmark,
	}

	// Positions come from the ECS world; the rest from the tick view.
	for i := range g.chars {
		c := g.chars[i]
		if pos, ok := g.PlayerPosition(c.ID); ok {
			c.Position = pos
		}
		snapshot.Players = append(snapshot.Players, telemetry.NewPlayerState(&c))
	}

	return snapshot
}
