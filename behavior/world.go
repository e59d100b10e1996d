// Package behavior implements the per-player state AIs and the dispatcher
// that runs them once per tick.
package behavior

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/systems"
)

// ScriptSignals carries the referee triggers the scripted states wait on.
type ScriptSignals struct {
	Jumpers      [2]components.CharacterID // indexed by team
	TossReleased bool

	ThrowInTeam  components.Team
	ThrowInSpot  r3.Vec
	ThrowerID    components.CharacterID
	ReceiverID   components.CharacterID
	ThrowInReady bool // the inbound may be released
}

// NoScript returns signals with every reference empty.
func NoScript() ScriptSignals {
	return ScriptSignals{
		Jumpers:    [2]components.CharacterID{components.NoCharacter, components.NoCharacter},
		ThrowerID:  components.NoCharacter,
		ReceiverID: components.NoCharacter,
	}
}

// World is the read-only view every state AI receives for one tick.
// Characters is the previous tick's snapshot; AIs never see each other's
// writes from the current tick.
type World struct {
	Characters []components.Character
	Ball       components.Ball
	Field      *components.Field
	OnBallID   components.CharacterID
	ShotClock  float64
	Time       float64 // accumulated simulation time
	Zones      [2]*systems.ZoneRegistry
	Script     ScriptSignals
}

// Character returns a snapshot character by ID.
func (w *World) Character(id components.CharacterID) (*components.Character, bool) {
	return systems.FindCharacter(w.Characters, id)
}

// Holder returns the ball holder's snapshot.
func (w *World) Holder() (*components.Character, bool) {
	return w.Character(w.OnBallID)
}

// Frame is what a state AI works on: its own mutable character copy and the
// shared world view.
type Frame struct {
	Self  *components.Character
	World *World
}

// ActionRequest asks the action controller to start a tagged action.
type ActionRequest struct {
	Type      components.ActionType
	TargetID  components.CharacterID
	TargetPos r3.Vec
}

// ActionResult is the controller's answer to a request.
type ActionResult struct {
	Success bool
	Message string
}

// ShotRange classifies a potential shot from the character's spot.
type ShotRange struct {
	Type     components.ActionType
	Distance float64
	InRange  bool
	Points   int
}

// ActionController owns action phases and cooldowns. The behavior engine
// only asks and reacts to the answer.
type ActionController interface {
	StartAction(c *components.Character, req ActionRequest) ActionResult
	CanShoot(c *components.Character) bool
	CanPass(c *components.Character) bool
	CanFeint(c *components.Character) bool
	CanSteal(c *components.Character) bool
	CanBlock(c *components.Character) bool
	ShootRangeInfo(c *components.Character) ShotRange
}

// Tracer observes decisions. It must not influence them.
type Tracer interface {
	StateChanged(id components.CharacterID, from, to components.BehaviorState)
	ActionRequested(id components.CharacterID, req ActionRequest, res ActionResult)
	PassEvaluated(id, receiver components.CharacterID, risk float64)
}

// NopTracer discards everything.
type NopTracer struct{}

func (NopTracer) StateChanged(components.CharacterID, components.BehaviorState, components.BehaviorState) {}
func (NopTracer) ActionRequested(components.CharacterID, ActionRequest, ActionResult) {}
func (NopTracer) PassEvaluated(components.CharacterID, components.CharacterID, float64) {}

// Deps bundles the shared systems every state AI uses.
type Deps struct {
	Config     *config.Config
	Field      *components.Field
	Mover      *systems.Mover
	Passer     *systems.Passer
	Risk       *systems.RiskAnalyzer
	Zones      *systems.ZoneSolver
	Handlers   *systems.HandlerSolver
	Formations *systems.Formations
	Actions    ActionController
	Rand       systems.Rand
	Tracer     Tracer
}

// NewDeps builds the shared systems from configuration. The action
// controller and random source are injected.
func NewDeps(cfg *config.Config, field *components.Field, actions ActionController, rng systems.Rand) *Deps {
	passer := systems.NewPasser(cfg)
	risk := systems.NewRiskAnalyzer(cfg, passer)
	return &Deps{
		Config:     cfg,
		Field:      field,
		Mover:      systems.NewMover(cfg),
		Passer:     passer,
		Risk:       risk,
		Zones:      systems.NewZoneSolver(cfg, systems.NewZones(cfg), risk),
		Handlers:   systems.NewHandlerSolver(cfg, risk),
		Formations: systems.NewFormations(cfg),
		Actions:    actions,
		Rand:       rng,
		Tracer:     NopTracer{},
	}
}
