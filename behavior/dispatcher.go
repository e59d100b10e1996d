package behavior

import (
	"github.com/pthm-cable/hoops/components"
)

// stateTable holds one instance of every state AI for a single player.
type stateTable [components.NumBehaviorStates]StateAI

func newStateTable(deps *Deps) stateTable {
	return stateTable{
		components.StateOnBallOffense:   NewOnBallOffense(deps),
		components.StateOnBallDefense:   NewOnBallDefense(deps),
		components.StateOffBallOffense:  NewOffBallOffense(deps),
		components.StateOffBallDefense:  NewOffBallDefense(deps),
		components.StateLooseBall:       NewLooseBall(deps),
		components.StateJumpBallJumper:  NewJumpBallJumper(deps),
		components.StateJumpBallOther:   NewJumpBallOther(deps),
		components.StateThrowInThrower:  NewThrowInThrower(deps),
		components.StateThrowInReceiver: NewThrowInReceiver(deps),
		components.StateThrowInOther:    NewThrowInOther(deps),
	}
}

// playerSlot is a player's state table and the state it is currently in.
type playerSlot struct {
	table   stateTable
	active  components.BehaviorState
	entered bool
}

// Dispatcher owns the state AI instances of every player and runs the active
// one each tick.
type Dispatcher struct {
	deps    *Deps
	players map[components.CharacterID]*playerSlot
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(deps *Deps) *Dispatcher {
	return &Dispatcher{
		deps:    deps,
		players: make(map[components.CharacterID]*playerSlot),
	}
}

func (d *Dispatcher) slot(id components.CharacterID) *playerSlot {
	s, ok := d.players[id]
	if !ok {
		s = &playerSlot{table: newStateTable(d.deps)}
		d.players[id] = s
	}
	return s
}

// Active returns the state AI a player is currently running.
func (d *Dispatcher) Active(id components.CharacterID) (StateAI, bool) {
	s, ok := d.players[id]
	if !ok || !s.entered {
		return nil, false
	}
	return s.table[s.active], true
}

// Instance returns a player's AI for a given state, creating the player's
// table if needed.
func (d *Dispatcher) Instance(id components.CharacterID, state components.BehaviorState) StateAI {
	if !state.Valid() {
		return nil
	}
	return d.slot(id).table[state]
}

// Reset exits every active state and forgets all players.
func (d *Dispatcher) Reset(w *World) {
	for i := range w.Characters {
		c := w.Characters[i]
		s, ok := d.players[c.ID]
		if !ok || !s.entered {
			continue
		}
		s.table[s.active].OnExit(&Frame{Self: &c, World: w})
	}
	clear(d.players)
}

// Tick runs one update for every character in w. next holds the state each
// character should be in, index for index with w.Characters; invalid entries
// keep the current state. Every AI reads the same snapshot in w and writes
// only its own copy; the updated copies are returned in the same order.
func (d *Dispatcher) Tick(w *World, next []components.BehaviorState, dt float64) []components.Character {
	out := make([]components.Character, len(w.Characters))
	for i := range w.Characters {
		out[i] = w.Characters[i]
		self := &out[i]
		frame := &Frame{Self: self, World: w}
		s := d.slot(self.ID)

		want := s.active
		if i < len(next) && next[i].Valid() {
			want = next[i]
		} else if !s.entered {
			want = self.State
		}

		if !s.entered || want != s.active {
			from := s.active
			if s.entered {
				s.table[from].OnExit(frame)
			} else {
				from = self.State
			}
			s.active = want
			s.entered = true
			self.State = want
			if from != want {
				d.deps.Tracer.StateChanged(self.ID, from, want)
			}
			s.table[want].OnEnter(frame)
		}
		self.State = s.active
		s.table[s.active].Update(frame, dt)
	}
	return out
}
