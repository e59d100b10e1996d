package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	MatchTimeSec    float64 `csv:"match_time"`

	// Scoreboard at window end
	AllyScore  int `csv:"ally_score"`
	EnemyScore int `csv:"enemy_score"`

	// Decisions during window
	Transitions   int     `csv:"transitions"`
	Requests      int     `csv:"requests"`
	Rejections    int     `csv:"rejections"`
	RejectRate    float64 `csv:"reject_rate"`
	ShotRequests  int     `csv:"shot_requests"`
	PassRequests  int     `csv:"pass_requests"`
	StealRequests int     `csv:"steal_requests"`
	BlockRequests int     `csv:"block_requests"`
	FeintRequests int     `csv:"feint_requests"`
	DriveRequests int     `csv:"drive_requests"`

	// Chosen pass risk distribution
	PassesEvaluated int     `csv:"passes_evaluated"`
	PassRiskMean    float64 `csv:"pass_risk_mean"`
	PassRiskP90     float64 `csv:"pass_risk_p90"`

	// Outcomes during window
	ShotsAttempted int     `csv:"shots_attempted"`
	ShotsMade      int     `csv:"shots_made"`
	ThreesMade     int     `csv:"threes_made"`
	FieldGoalPct   float64 `csv:"fg_pct"`
	Passes         int     `csv:"passes"`
	Steals         int     `csv:"steals"`
	Interceptions  int     `csv:"interceptions"`
	Blocks         int     `csv:"blocks"`
	Turnovers      int     `csv:"turnovers"`
	Violations     int     `csv:"violations"`
}

// ComputeRiskStats returns the mean and 90th percentile of pass risks.
func ComputeRiskStats(values []float64) (mean, p90 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return stat.Mean(sorted, nil), stat.Quantile(0.9, stat.Empirical, sorted, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("match_time", s.MatchTimeSec),
		slog.Int("ally_score", s.AllyScore),
		slog.Int("enemy_score", s.EnemyScore),
		slog.Int("transitions", s.Transitions),
		slog.Int("requests", s.Requests),
		slog.Int("rejections", s.Rejections),
		slog.Float64("reject_rate", s.RejectRate),
		slog.Int("shot_requests", s.ShotRequests),
		slog.Int("pass_requests", s.PassRequests),
		slog.Int("steal_requests", s.StealRequests),
		slog.Int("block_requests", s.BlockRequests),
		slog.Int("feint_requests", s.FeintRequests),
		slog.Int("drive_requests", s.DriveRequests),
		slog.Int("passes_evaluated", s.PassesEvaluated),
		slog.Float64("pass_risk_mean", s.PassRiskMean),
		slog.Float64("pass_risk_p90", s.PassRiskP90),
		slog.Int("shots_attempted", s.ShotsAttempted),
		slog.Int("shots_made", s.ShotsMade),
		slog.Int("threes_made", s.ThreesMade),
		slog.Float64("fg_pct", s.FieldGoalPct),
		slog.Int("passes", s.Passes),
		slog.Int("steals", s.Steals),
		slog.Int("interceptions", s.Interceptions),
		slog.Int("blocks", s.Blocks),
		slog.Int("turnovers", s.Turnovers),
		slog.Int("violations", s.Violations),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"match_time", s.MatchTimeSec,
		"score", [2]int{s.AllyScore, s.EnemyScore},
		"transitions", s.Transitions,
		"requests", s.Requests,
		"reject_rate", s.RejectRate,
		"pass_risk_mean", s.PassRiskMean,
		"pass_risk_p90", s.PassRiskP90,
		"shots", s.ShotsAttempted,
		"made", s.ShotsMade,
		"fg_pct", s.FieldGoalPct,
		"passes", s.Passes,
		"steals", s.Steals,
		"blocks", s.Blocks,
		"turnovers", s.Turnovers,
	)
}
