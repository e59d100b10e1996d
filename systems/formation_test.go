package systems

import (
	"testing"

	"github.com/pthm-cable/hoops/components"
)

// TestFormationsMirrorByTeam verifies both teams get in-bounds, mirrored spots.
func TestFormationsMirrorByTeam(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	f := NewFormations(cfg)

	for _, set := range []string{FormationOffense, FormationDefense, FormationThrowIn} {
		for role := components.PositionRole(0); role < components.NumRoles; role++ {
			ally, ok := f.AttackPoint(field, components.TeamAlly, set, role)
			if !ok {
				t.Fatalf("%s/%s: missing slot", set, role)
			}
			enemy, _ := f.AttackPoint(field, components.TeamEnemy, set, role)
			if !field.InBounds(ally) || !field.InBounds(enemy) {
				t.Errorf("%s/%s: out of bounds %v %v", set, role, ally, enemy)
			}
			if ally.X+enemy.X > 1e-9 || ally.X+enemy.X < -1e-9 {
				t.Errorf("%s/%s: X not mirrored: %.3f vs %.3f", set, role, ally.X, enemy.X)
			}
		}
	}

	if _, ok := f.Slot("zone_press", components.RolePG); ok {
		t.Error("unknown set should have no slot")
	}
}

// TestFormationDefenseNearOwnRim checks defense spots sit in the team's own half.
func TestFormationDefenseNearOwnRim(t *testing.T) {
	cfg := testConfig()
	field := testField(cfg)
	f := NewFormations(cfg)

	p, ok := f.DefensePoint(field, components.TeamAlly, FormationDefense, components.RoleC)
	if !ok {
		t.Fatal("missing defense slot")
	}
	if p.X >= 0 {
		t.Errorf("ally defends the -X basket, got X=%.2f", p.X)
	}
}
