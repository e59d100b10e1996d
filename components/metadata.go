package components

import "fmt"

// String returns the display name for a Team.
func (t Team) String() string {
	if t == TeamAlly {
		return "ally"
	}
	return "enemy"
}

// ParseTeam converts "ally"/"enemy" into a Team.
func ParseTeam(s string) (Team, error) {
	switch s {
	case "ally":
		return TeamAlly, nil
	case "enemy":
		return TeamEnemy, nil
	}
	return 0, fmt.Errorf("unknown team %q", s)
}

// RoleNames returns the display names for all lineup positions.
// The order matches the PositionRole constants.
func RoleNames() []string {
	return []string{"PG", "SG", "SF", "PF", "C"}
}

// String returns the display name for a PositionRole.
func (r PositionRole) String() string {
	names := RoleNames()
	if int(r) < len(names) {
		return names[r]
	}
	return "Unknown"
}

// ParseRole converts a lineup abbreviation into a PositionRole.
func ParseRole(s string) (PositionRole, error) {
	for i, name := range RoleNames() {
		if name == s {
			return PositionRole(i), nil
		}
	}
	return 0, fmt.Errorf("unknown position role %q", s)
}

// BehaviorStateNames returns the display names for all behavior states.
// The order matches the BehaviorState constants.
func BehaviorStateNames() []string {
	return []string{
		"on_ball_offense",
		"on_ball_defense",
		"off_ball_offense",
		"off_ball_defense",
		"loose_ball",
		"jump_ball_jumper",
		"jump_ball_other",
		"throw_in_thrower",
		"throw_in_receiver",
		"throw_in_other",
	}
}

// String returns the display name for a BehaviorState.
func (s BehaviorState) String() string {
	names := BehaviorStateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Valid reports whether s is one of the enumerated states.
func (s BehaviorState) Valid() bool {
	return int(s) < NumBehaviorStates
}

// String returns the display name for an ActionPhase.
func (p ActionPhase) String() string {
	switch p {
	case PhaseStartup:
		return "startup"
	case PhaseActive:
		return "active"
	case PhaseRecovery:
		return "recovery"
	}
	return "none"
}
