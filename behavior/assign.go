package behavior

import (
	"github.com/pthm-cable/hoops/components"
)

// Situation is the match context role assignment depends on.
type Situation uint8

const (
	SituationLive Situation = iota
	SituationJumpBall
	SituationThrowIn
)

func (s Situation) String() string {
	switch s {
	case SituationJumpBall:
		return "jump_ball"
	case SituationThrowIn:
		return "throw_in"
	}
	return "live"
}

// AssignStates returns the behavior state for every character, index for
// index with w.Characters.
func AssignStates(w *World, sit Situation) []components.BehaviorState {
	out := make([]components.BehaviorState, len(w.Characters))
	switch sit {
	case SituationJumpBall:
		for i := range w.Characters {
			c := &w.Characters[i]
			out[i] = components.StateJumpBallOther
			if c.ID == w.Script.Jumpers[c.Team] {
				out[i] = components.StateJumpBallJumper
			}
		}
		return out
	case SituationThrowIn:
		for i := range w.Characters {
			switch w.Characters[i].ID {
			case w.Script.ThrowerID:
				out[i] = components.StateThrowInThrower
			case w.Script.ReceiverID:
				out[i] = components.StateThrowInReceiver
			default:
				out[i] = components.StateThrowInOther
			}
		}
		return out
	}

	if holder, ok := w.Holder(); ok {
		guard, hasGuard := matchup(w.Characters, holder)
		for i := range w.Characters {
			c := &w.Characters[i]
			switch {
			case c.ID == holder.ID:
				out[i] = components.StateOnBallOffense
			case c.Team == holder.Team:
				out[i] = components.StateOffBallOffense
			case hasGuard && c.ID == guard.ID:
				out[i] = components.StateOnBallDefense
			default:
				out[i] = components.StateOffBallDefense
			}
		}
		return out
	}

	b := &w.Ball
	if passInFlight(b) || shotInFlight(b) {
		for i := range w.Characters {
			if w.Characters[i].Team == b.LastTouch {
				out[i] = components.StateOffBallOffense
			} else {
				out[i] = components.StateOffBallDefense
			}
		}
		return out
	}

	for i := range out {
		out[i] = components.StateLooseBall
	}
	return out
}
