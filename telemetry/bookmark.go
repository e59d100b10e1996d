package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkScoringRun    BookmarkType = "scoring_run"
	BookmarkLeadChange    BookmarkType = "lead_change"
	BookmarkHotShooting   BookmarkType = "hot_shooting"
	BookmarkTurnoverSpree BookmarkType = "turnover_spree"
	BookmarkCloseGame     BookmarkType = "close_game"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the match.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	last             *WindowStats
	allyRun          int // unanswered ally points
	enemyRun         int
	closeWindowCount int // consecutive windows within CloseMargin
}

// Thresholds for bookmark triggers.
const (
	RunPoints    = 8 // unanswered points for a scoring run
	CloseMargin  = 3 // score gap for a close game
	CloseWindows = 5
)

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for rolling averages
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.last != nil {
		if b := bd.checkScoringRun(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkLeadChange(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkHotShooting(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkTurnoverSpree(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkCloseGame(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	last := stats
	bd.last = &last

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkScoringRun fires once a side scores RunPoints unanswered. A window
// where both sides score breaks any run.
func (bd *BookmarkDetector) checkScoringRun(stats WindowStats) *Bookmark {
	allyGain := stats.AllyScore - bd.last.AllyScore
	enemyGain := stats.EnemyScore - bd.last.EnemyScore

	team, before, after := "", 0, 0
	switch {
	case allyGain > 0 && enemyGain > 0:
		bd.allyRun, bd.enemyRun = 0, 0
		return nil
	case allyGain > 0:
		before = bd.allyRun
		bd.allyRun += allyGain
		bd.enemyRun = 0
		team, after = "ally", bd.allyRun
	case enemyGain > 0:
		before = bd.enemyRun
		bd.enemyRun += enemyGain
		bd.allyRun = 0
		team, after = "enemy", bd.enemyRun
	default:
		return nil
	}
	if before >= RunPoints || after < RunPoints {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkScoringRun,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%s on a %d-0 run", team, after),
	}
}

func leader(ally, enemy int) int {
	switch {
	case ally > enemy:
		return 1
	case enemy > ally:
		return -1
	}
	return 0
}

func (bd *BookmarkDetector) checkLeadChange(stats WindowStats) *Bookmark {
	before := leader(bd.last.AllyScore, bd.last.EnemyScore)
	after := leader(stats.AllyScore, stats.EnemyScore)
	if before == 0 || after == 0 || before == after {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkLeadChange,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Lead changed, now %d-%d", stats.AllyScore, stats.EnemyScore),
	}
}

func (bd *BookmarkDetector) checkHotShooting(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var made, attempted int
	for _, h := range history {
		made += h.ShotsMade
		attempted += h.ShotsAttempted
	}
	if attempted == 0 || made == 0 {
		return nil
	}

	avgPct := float64(made) / float64(attempted)
	if stats.FieldGoalPct > avgPct*1.5 && stats.ShotsMade >= 3 {
		return &Bookmark{
			Type:        BookmarkHotShooting,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Shooting %.2f is %.1fx average (%.2f)", stats.FieldGoalPct, stats.FieldGoalPct/avgPct, avgPct),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkTurnoverSpree(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Turnovers < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Turnovers
	}
	avg := float64(total) / float64(len(history))
	if float64(stats.Turnovers) > avg*2 {
		return &Bookmark{
			Type:        BookmarkTurnoverSpree,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d turnovers against an average of %.1f", stats.Turnovers, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkCloseGame(stats WindowStats) *Bookmark {
	gap := stats.AllyScore - stats.EnemyScore
	if gap < 0 {
		gap = -gap
	}
	if gap > CloseMargin || stats.AllyScore+stats.EnemyScore == 0 {
		bd.closeWindowCount = 0
		return nil
	}

	bd.closeWindowCount++
	if bd.closeWindowCount == CloseWindows { // trigger exactly once per stretch
		return &Bookmark{
			Type:        BookmarkCloseGame,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Within %d points for %d windows at %d-%d", CloseMargin, CloseWindows, stats.AllyScore, stats.EnemyScore),
		}
	}

	return nil
}
