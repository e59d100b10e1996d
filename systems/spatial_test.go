package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

// TestDefenderInPath verifies corridor detection ahead of the carrier.
func TestDefenderInPath(t *testing.T) {
	carrier := newChar(0, components.TeamAlly, components.RolePG, 0, 0)
	target := r3.Vec{X: 10}

	tests := []struct {
		name  string
		x, z  float64
		team  components.Team
		found bool
	}{
		{"directly ahead", 2, 0, components.TeamEnemy, true},
		{"inside corridor", 3, 1.0, components.TeamEnemy, true},
		{"outside corridor", 3, 2.0, components.TeamEnemy, false},
		{"beyond lookahead", 6, 0, components.TeamEnemy, false},
		{"behind carrier", -1, 0, components.TeamEnemy, false},
		{"teammate ahead", 2, 0, components.TeamAlly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := newChar(1, tt.team, components.RoleSG, tt.x, tt.z)
			chars := []components.Character{carrier, other}
			n, ok := DefenderInPath(chars, &chars[0], target, 1.2, 4)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && n.Index != 1 {
				t.Errorf("index = %d, want 1", n.Index)
			}
		})
	}
}

// TestDefenderInPathDegenerate verifies a zero-length path finds nothing.
func TestDefenderInPathDegenerate(t *testing.T) {
	carrier := newChar(0, components.TeamAlly, components.RolePG, 1, 1)
	chars := []components.Character{carrier, newChar(1, components.TeamEnemy, components.RoleSG, 1, 1)}
	if _, ok := DefenderInPath(chars, &chars[0], carrier.Position, 1.2, 4); ok {
		t.Error("expected no defender for a degenerate path")
	}
}

// TestQueryRadiusIntoSorted checks filtering and nearest-first order.
func TestQueryRadiusIntoSorted(t *testing.T) {
	chars := []components.Character{
		newChar(0, components.TeamAlly, components.RolePG, 0, 0),
		newChar(1, components.TeamEnemy, components.RolePG, 3, 0),
		newChar(2, components.TeamEnemy, components.RoleSG, 1, 0),
		newChar(3, components.TeamAlly, components.RoleSG, 0.5, 0),
		newChar(4, components.TeamEnemy, components.RoleSF, 9, 0),
	}

	got := QueryRadiusInto(nil, chars, r3.Vec{}, 5, components.TeamAlly, OtherTeam, 0)
	if len(got) != 2 {
		t.Fatalf("got %d neighbors, want 2", len(got))
	}
	if got[0].Index != 2 || got[1].Index != 1 {
		t.Errorf("order = %d,%d, want 2,1", got[0].Index, got[1].Index)
	}

	n, ok := Nearest(chars, r3.Vec{}, components.TeamAlly, SameTeam, 0)
	if !ok || n.Index != 3 {
		t.Errorf("Nearest teammate = %v (ok=%v), want index 3", n.Index, ok)
	}
}
