package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Action is an in-progress tagged action as reported by the action controller.
type Action struct {
	Type    ActionType
	Phase   ActionPhase
	Elapsed float64     // seconds in the current phase
	Target  CharacterID // pass receiver, steal/block victim
}

// InProgress reports whether the action still occupies the character.
func (a *Action) InProgress() bool {
	return a != nil && a.Phase != PhaseNone
}

// Character is the per-tick view of one player that state AIs read and write.
type Character struct {
	ID       CharacterID
	Name     string
	Team     Team
	Role     PositionRole
	State    BehaviorState
	Position r3.Vec
	Velocity r3.Vec
	Facing   float64
	Stats    Stats
	Body     Body
	Action   *Action
	HasBall  bool
	Biting   float64 // seconds left reacting to a feint
}

// Forward returns the unit vector the character faces on the floor plane.
func (c *Character) Forward() r3.Vec {
	return r3.Vec{X: math.Sin(c.Facing), Z: math.Cos(c.Facing)}
}

// Busy reports whether an action is in progress.
func (c *Character) Busy() bool {
	return c.Action.InProgress()
}

// FlightKind describes why the ball is airborne.
type FlightKind uint8

const (
	FlightNone FlightKind = iota
	FlightPass
	FlightShot
	FlightToss // jump-ball toss
	FlightLoose
)

// Ball is the shared ball state.
type Ball struct {
	Position     r3.Vec
	Velocity     r3.Vec
	HolderID     CharacterID
	InFlight     bool
	Flight       FlightKind
	PassTargetID CharacterID
	ShooterID    CharacterID
	LastTouch    Team
	Target       r3.Vec // pass catch point or rim while airborne
}

// NewBall returns a free ball resting at the given point.
func NewBall(at r3.Vec) Ball {
	return Ball{
		Position:     at,
		HolderID:     NoCharacter,
		PassTargetID: NoCharacter,
		ShooterID:    NoCharacter,
	}
}

// Held reports whether a character holds the ball.
func (b Ball) Held() bool {
	return b.HolderID != NoCharacter
}

// Loose reports whether nobody holds the ball and no pass or shot is airborne.
func (b Ball) Loose() bool {
	if b.Held() {
		return false
	}
	return !b.InFlight || b.Flight == FlightLoose
}
