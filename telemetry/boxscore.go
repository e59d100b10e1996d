package telemetry

import "github.com/pthm-cable/hoops/components"

// PlayerLine tracks one player's box score line.
type PlayerLine struct {
	ID   components.CharacterID `csv:"id"`
	Name string                 `csv:"name"`
	Team string                 `csv:"team"`
	Role string                 `csv:"role"`

	Points          int `csv:"pts"`
	ShotsAttempted  int `csv:"fga"`
	ShotsMade       int `csv:"fgm"`
	ThreesAttempted int `csv:"3pa"`
	ThreesMade      int `csv:"3pm"`
	Passes          int `csv:"passes"`
	Steals          int `csv:"stl"`
	Blocks          int `csv:"blk"`
	Turnovers       int `csv:"tov"`

	SecondsOnBall float64 `csv:"on_ball_sec"`
}

// BoxScore manages per-player lines for a match.
type BoxScore struct {
	lines map[components.CharacterID]*PlayerLine
	order []components.CharacterID
}

// NewBoxScore creates an empty box score.
func NewBoxScore() *BoxScore {
	return &BoxScore{
		lines: make(map[components.CharacterID]*PlayerLine),
	}
}

// Register creates the line for a player.
func (bs *BoxScore) Register(id components.CharacterID, name string, team components.Team, role components.PositionRole) {
	if _, ok := bs.lines[id]; !ok {
		bs.order = append(bs.order, id)
	}
	bs.lines[id] = &PlayerLine{ID: id, Name: name, Team: team.String(), Role: role.String()}
}

// Get returns a player's line, or nil if not found.
func (bs *BoxScore) Get(id components.CharacterID) *PlayerLine {
	return bs.lines[id]
}

// RecordShot counts a field goal attempt. three marks a three-point try.
func (bs *BoxScore) RecordShot(id components.CharacterID, three bool) {
	if l := bs.lines[id]; l != nil {
		l.ShotsAttempted++
		if three {
			l.ThreesAttempted++
		}
	}
}

// RecordScore credits a made basket.
func (bs *BoxScore) RecordScore(id components.CharacterID, points int) {
	if l := bs.lines[id]; l != nil {
		l.ShotsMade++
		l.Points += points
		if points == 3 {
			l.ThreesMade++
		}
	}
}

// RecordPass increments the pass count.
func (bs *BoxScore) RecordPass(id components.CharacterID) {
	if l := bs.lines[id]; l != nil {
		l.Passes++
	}
}

// RecordSteal increments the steal count.
func (bs *BoxScore) RecordSteal(id components.CharacterID) {
	if l := bs.lines[id]; l != nil {
		l.Steals++
	}
}

// RecordBlock increments the block count.
func (bs *BoxScore) RecordBlock(id components.CharacterID) {
	if l := bs.lines[id]; l != nil {
		l.Blocks++
	}
}

// RecordTurnover charges a turnover.
func (bs *BoxScore) RecordTurnover(id components.CharacterID) {
	if l := bs.lines[id]; l != nil {
		l.Turnovers++
	}
}

// AddBallTime adds seconds spent holding the ball.
func (bs *BoxScore) AddBallTime(id components.CharacterID, dt float64) {
	if l := bs.lines[id]; l != nil {
		l.SecondsOnBall += dt
	}
}

// Lines returns all lines in registration order.
func (bs *BoxScore) Lines() []PlayerLine {
	out := make([]PlayerLine, 0, len(bs.order))
	for _, id := range bs.order {
		out = append(out, *bs.lines[id])
	}
	return out
}

// TeamPoints sums points per team.
func (bs *BoxScore) TeamPoints(team components.Team) int {
	name := team.String()
	total := 0
	for _, l := range bs.lines {
		if l.Team == name {
			total += l.Points
		}
	}
	return total
}
