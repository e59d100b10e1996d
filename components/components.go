// Package components defines ECS components and the per-tick value types shared by
// the behavior engine.
package components

// CharacterID identifies a player for the lifetime of a match.
type CharacterID int

// NoCharacter marks an empty character reference (free ball, no pass target).
const NoCharacter CharacterID = -1

// Team identifies a side.
type Team uint8

const (
	TeamAlly Team = iota
	TeamEnemy
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamAlly {
		return TeamEnemy
	}
	return TeamAlly
}

// PositionRole is a player's lineup position.
type PositionRole uint8

const (
	RolePG PositionRole = iota // Point guard
	RoleSG                     // Shooting guard
	RoleSF                     // Small forward
	RolePF                     // Power forward
	RoleC                      // Center
)

// NumRoles is the number of lineup positions.
const NumRoles = 5

// Interior reports whether the role plays near the basket.
func (r PositionRole) Interior() bool {
	return r == RolePF || r == RoleC
}

// BehaviorState is the closed set of behavior roles a player can be in.
type BehaviorState uint8

const (
	StateOnBallOffense BehaviorState = iota
	StateOnBallDefense
	StateOffBallOffense
	StateOffBallDefense
	StateLooseBall
	StateJumpBallJumper
	StateJumpBallOther
	StateThrowInThrower
	StateThrowInReceiver
	StateThrowInOther
)

// NumBehaviorStates is the size of the BehaviorState set.
const NumBehaviorStates = 10

// ActionPhase is the timing phase of an action.
type ActionPhase uint8

const (
	PhaseNone ActionPhase = iota
	PhaseStartup
	PhaseActive
	PhaseRecovery
)

// ActionType names an action understood by the action controller.
type ActionType string

const (
	ActionShoot3pt            ActionType = "shoot_3pt"
	ActionShootMidrange       ActionType = "shoot_midrange"
	ActionShootLayup          ActionType = "shoot_layup"
	ActionShootDunk           ActionType = "shoot_dunk"
	ActionPassChest           ActionType = "pass_chest"
	ActionPassBounce          ActionType = "pass_bounce"
	ActionPassLob             ActionType = "pass_lob"
	ActionPassLong            ActionType = "pass_long"
	ActionPassOneHand         ActionType = "pass_one_hand"
	ActionDribbleBreakthrough ActionType = "dribble_breakthrough"
	ActionFeintShot           ActionType = "feint_shot"
	ActionStealAttempt        ActionType = "steal_attempt"
	ActionBlockShot           ActionType = "block_shot"
	ActionJumpTip             ActionType = "jump_tip"
)

// IsShot reports whether the action releases a shot.
func (a ActionType) IsShot() bool {
	switch a {
	case ActionShoot3pt, ActionShootMidrange, ActionShootLayup, ActionShootDunk:
		return true
	}
	return false
}

// IsPass reports whether the action releases a pass.
func (a ActionType) IsPass() bool {
	switch a {
	case ActionPassChest, ActionPassBounce, ActionPassLob, ActionPassLong, ActionPassOneHand:
		return true
	}
	return false
}

// Blockable reports whether a shooter in this action can be blocked.
// Layups and dunks finish at the rim and are excluded.
func (a ActionType) Blockable() bool {
	return a == ActionShoot3pt || a == ActionShootMidrange
}

// NeedsBall reports whether the action requires holding the ball.
func (a ActionType) NeedsBall() bool {
	return a.IsShot() || a.IsPass() || a == ActionDribbleBreakthrough || a == ActionFeintShot
}
