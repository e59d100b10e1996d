package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

func newZoneSolver() (*ZoneSolver, *components.Field) {
	cfg := testConfig()
	risk := NewRiskAnalyzer(cfg, NewPasser(cfg))
	return NewZoneSolver(cfg, NewZones(cfg), risk), testField(cfg)
}

// TestZonePairsExclusive verifies a paired zone cannot be claimed while its
// mirror is held.
func TestZonePairsExclusive(t *testing.T) {
	s, _ := newZoneSolver()
	zones := s.Zones()
	reg := NewZoneRegistry(zones)
	left, ok := zones.Index("wing_left")
	require.True(t, ok)
	right, ok := zones.Index("wing_right")
	require.True(t, ok)

	assert.True(t, reg.Claim(left, 1))
	assert.False(t, reg.Claim(right, 2), "mirror zone must be blocked")
	assert.False(t, reg.Claim(left, 2), "held zone must be blocked")

	// The holder may switch sides itself.
	assert.True(t, reg.Claim(right, 1))
	assert.Equal(t, components.NoCharacter, reg.Holder(left))

	reg.Release(1)
	assert.True(t, reg.Claim(left, 2))
}

// TestZoneMutualExclusionRandomized claims zones at random and checks no pair
// is ever held twice.
func TestZoneMutualExclusionRandomized(t *testing.T) {
	s, _ := newZoneSolver()
	zones := s.Zones()
	reg := NewZoneRegistry(zones)
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 2000; i++ {
		id := components.CharacterID(rng.IntN(5))
		if rng.Float64() < 0.2 {
			reg.Release(id)
		} else {
			reg.Claim(rng.IntN(zones.Len()), id)
		}
		for z := 0; z < zones.Len(); z++ {
			pair := zones.Zone(z).Pair
			if pair == NoZone {
				continue
			}
			if reg.Holder(z) != components.NoCharacter && reg.Holder(pair) != components.NoCharacter {
				t.Fatalf("step %d: %s and %s both held", i, zones.Zone(z).Name, zones.Zone(pair).Name)
			}
		}
		seen := map[components.CharacterID]bool{}
		for z := 0; z < zones.Len(); z++ {
			h := reg.Holder(z)
			if h == components.NoCharacter {
				continue
			}
			if seen[h] {
				t.Fatalf("step %d: character %d holds two zones", i, h)
			}
			seen[h] = true
		}
	}
}

// TestSelectZoneByPriority checks the default spacing of four off-ball attackers.
func TestSelectZoneByPriority(t *testing.T) {
	s, field := newZoneSolver()
	zones := s.Zones()
	reg := NewZoneRegistry(zones)

	chars := []components.Character{
		newChar(0, components.TeamAlly, components.RolePG, 5, 0),
		newChar(1, components.TeamAlly, components.RoleSG, 0, 3),
		newChar(2, components.TeamAlly, components.RoleSF, 0, -3),
		newChar(3, components.TeamAlly, components.RolePF, 2, 1),
		newChar(4, components.TeamAlly, components.RoleC, 2, -1),
	}
	want := map[int]string{1: "wing_right", 2: "corner_left", 3: "elbow_right", 4: "post_left"}

	for i := 1; i < len(chars); i++ {
		choice, ok := s.SelectZone(reg, field, &chars[i], chars)
		require.True(t, ok)
		assert.False(t, choice.Shared)
		assert.Equal(t, want[i], zones.Zone(choice.Zone).Name, chars[i].Role.String())
	}
}

// TestSelectZoneFallsBackWhenFull verifies the degraded hold when every
// preferred zone is taken.
func TestSelectZoneFallsBackWhenFull(t *testing.T) {
	s, field := newZoneSolver()
	zones := s.Zones()
	reg := NewZoneRegistry(zones)

	pg := newChar(0, components.TeamAlly, components.RolePG, 0, 0)
	top, _ := zones.Index("top")
	wing, _ := zones.Index("wing_left")
	require.True(t, reg.Claim(top, 10))
	require.True(t, reg.Claim(wing, 11))

	choice, ok := s.SelectZone(reg, field, &pg, []components.Character{pg})
	require.True(t, ok)
	assert.True(t, choice.Shared)
	assert.Equal(t, top, choice.Zone)
	assert.Equal(t, components.CharacterID(10), reg.Holder(top), "fallback must not steal the registration")
	_, held := reg.HeldBy(pg.ID)
	assert.False(t, held)
}

// TestCandidatesRing checks the nine sample points.
func TestCandidatesRing(t *testing.T) {
	s, _ := newZoneSolver()
	center := r3.Vec{X: 3, Z: 2}
	cands := s.Candidates(center)
	require.Len(t, cands, 9)
	assert.Equal(t, center, cands[0])
	for _, p := range cands[1:] {
		assert.InDelta(t, testConfig().Tactics.CandidateRadius, FlatDistance(p, center), 1e-9)
	}
}

// TestRepositionEscapesDefender verifies a covered spot is abandoned for an
// open candidate.
func TestRepositionEscapesDefender(t *testing.T) {
	s, field := newZoneSolver()
	holder := newChar(0, components.TeamAlly, components.RolePG, 0, 0)
	self := newChar(1, components.TeamAlly, components.RoleSG, 6, 0)
	defender := newChar(7, components.TeamEnemy, components.RoleSG, 6, -1.2)
	chars := []components.Character{holder, self, defender}

	center := self.Position
	next, moved := s.Reposition(field, &self, center, center, &holder, chars, rand.New(rand.NewPCG(1, 1)))
	require.True(t, moved)
	assert.NotEqual(t, center, next)
	assert.LessOrEqual(t, FlatDistance(next, center), testConfig().Tactics.CandidateRadius+1e-9)
	assert.Less(t, s.laneRisk(&holder, next, chars), s.laneRisk(&holder, center, chars))
}

// TestRepositionRespectsTeammates verifies candidates crowding a teammate are rejected.
func TestRepositionRespectsTeammates(t *testing.T) {
	s, field := newZoneSolver()
	cfg := testConfig()
	holder := newChar(0, components.TeamAlly, components.RolePG, 0, 0)
	self := newChar(1, components.TeamAlly, components.RoleSG, 6, 0)
	mate := newChar(2, components.TeamAlly, components.RoleSF, 6, 2)
	defender := newChar(7, components.TeamEnemy, components.RoleSG, 3, 0)
	chars := []components.Character{holder, self, mate, defender}

	for seed := uint64(0); seed < 20; seed++ {
		next, moved := s.Reposition(field, &self, self.Position, self.Position, &holder, chars, rand.New(rand.NewPCG(seed, 9)))
		if moved && FlatDistance(next, mate.Position) < cfg.Tactics.MinTeammateDistance {
			t.Fatalf("seed %d: moved to %v within %.2f m of teammate", seed, next, FlatDistance(next, mate.Position))
		}
	}
}

// TestDecisionIntervalByAlignment checks disciplined players re-evaluate sooner.
func TestDecisionIntervalByAlignment(t *testing.T) {
	s, _ := newZoneSolver()
	a := newChar(0, components.TeamAlly, components.RoleSF, 0, 0)
	b := a
	a.Stats.Alignment = 90
	b.Stats.Alignment = 10
	if s.Zones().DecisionInterval(&a) >= s.Zones().DecisionInterval(&b) {
		t.Error("high alignment should shorten the decision interval")
	}
}
