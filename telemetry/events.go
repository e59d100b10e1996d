// Package telemetry provides decision statistics, box scores, bookmarks and
// snapshots for a match.
package telemetry

import "github.com/pthm-cable/hoops/components"

// EventType identifies play-by-play events.
type EventType uint8

const (
	EventScore EventType = iota
	EventMiss
	EventTurnover
	EventSteal
	EventBlock
	EventViolation
	EventOutOfBounds
	EventPeriodEnd
)

func (t EventType) String() string {
	switch t {
	case EventScore:
		return "score"
	case EventMiss:
		return "miss"
	case EventTurnover:
		return "turnover"
	case EventSteal:
		return "steal"
	case EventBlock:
		return "block"
	case EventViolation:
		return "violation"
	case EventOutOfBounds:
		return "out_of_bounds"
	case EventPeriodEnd:
		return "period_end"
	}
	return "unknown"
}

// Event is one play-by-play record.
type Event struct {
	Type     EventType              `csv:"-"`
	Name     string                 `csv:"event"`
	Tick     int32                  `csv:"tick"`
	Clock    float64                `csv:"clock"`
	PlayerID components.CharacterID `csv:"player"`
	Team     string                 `csv:"team"`

	// Optional fields depending on event type
	TargetID components.CharacterID `csv:"target"`
	Points   int                    `csv:"points"`
	Detail   string                 `csv:"detail"`
}

func newEvent(t EventType, tick int32, clock float64, player components.CharacterID, team components.Team) Event {
	return Event{
		Type:     t,
		Name:     t.String(),
		Tick:     tick,
		Clock:    clock,
		PlayerID: player,
		Team:     team.String(),
		TargetID: components.NoCharacter,
	}
}

// NewScoreEvent creates a made basket event.
func NewScoreEvent(tick int32, clock float64, shooter components.CharacterID, team components.Team, points int) Event {
	e := newEvent(EventScore, tick, clock, shooter, team)
	e.Points = points
	return e
}

// NewMissEvent creates a missed shot event.
func NewMissEvent(tick int32, clock float64, shooter components.CharacterID, team components.Team) Event {
	return newEvent(EventMiss, tick, clock, shooter, team)
}

// NewStealEvent creates a steal or interception event. victim is the player
// who lost the ball or the intended receiver.
func NewStealEvent(tick int32, clock float64, stealer components.CharacterID, team components.Team, victim components.CharacterID, detail string) Event {
	e := newEvent(EventSteal, tick, clock, stealer, team)
	e.TargetID = victim
	e.Detail = detail
	return e
}

// NewBlockEvent creates a blocked shot event.
func NewBlockEvent(tick int32, clock float64, blocker components.CharacterID, team components.Team, shooter components.CharacterID) Event {
	e := newEvent(EventBlock, tick, clock, blocker, team)
	e.TargetID = shooter
	return e
}

// NewTurnoverEvent creates a turnover charged to a team.
func NewTurnoverEvent(tick int32, clock float64, player components.CharacterID, team components.Team, detail string) Event {
	e := newEvent(EventTurnover, tick, clock, player, team)
	e.Detail = detail
	return e
}

// NewViolationEvent creates a rules violation event such as a shot clock
// expiry.
func NewViolationEvent(tick int32, clock float64, team components.Team, detail string) Event {
	e := newEvent(EventViolation, tick, clock, components.NoCharacter, team)
	e.Detail = detail
	return e
}

// NewOutOfBoundsEvent creates an out of bounds event. team last touched the
// ball.
func NewOutOfBoundsEvent(tick int32, clock float64, team components.Team) Event {
	return newEvent(EventOutOfBounds, tick, clock, components.NoCharacter, team)
}

// NewPeriodEndEvent marks the end of the game clock.
func NewPeriodEndEvent(tick int32, detail string) Event {
	e := newEvent(EventPeriodEnd, tick, 0, components.NoCharacter, components.TeamAlly)
	e.Team = ""
	e.Detail = detail
	return e
}
