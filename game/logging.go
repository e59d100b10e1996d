package game

import (
	"log/slog"
	"math"
)

// logMatchState logs the scoreboard and who has the ball.
func (g *Game) logMatchState() {
	slog.Info("match_state",
		"tick", g.tick,
		"phase", g.phase.String(),
		"clock", round1(g.gameClock),
		"shot_clock", round1(g.shotClock),
		"ally", g.score.Ally,
		"enemy", g.score.Enemy,
		"possession", g.possession.String(),
		"holder", g.ball.HolderID,
	)
}

// logBoxScore logs one line per player.
func (g *Game) logBoxScore() {
	for _, l := range g.boxScore.Lines() {
		slog.Info("box_score",
			"player", l.Name,
			"team", l.Team,
			"role", l.Role,
			"pts", l.Points,
			"fg", l.ShotsMade,
			"fga", l.ShotsAttempted,
			"3p", l.ThreesMade,
			"3pa", l.ThreesAttempted,
			"passes", l.Passes,
			"stl", l.Steals,
			"blk", l.Blocks,
			"tov", l.Turnovers,
			"on_ball", round1(l.SecondsOnBall),
		)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
