package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

func newRiskAnalyzer() *RiskAnalyzer {
	cfg := testConfig()
	return NewRiskAnalyzer(cfg, NewPasser(cfg))
}

// TestCalculateTrajectoryShape checks sample counts, timing and height profiles.
func TestCalculateTrajectoryShape(t *testing.T) {
	cfg := testConfig()
	p := NewPasser(cfg)
	from := r3.Vec{X: 0}
	to := r3.Vec{X: 6}

	chest := p.CalculateTrajectory(from, to, PassChest, 12)
	require.NotNil(t, chest)
	require.Len(t, chest.Points, 13)
	assert.InDelta(t, cfg.Passes.ReleaseHeight, chest.Points[0].Position.Y, 1e-9)
	assert.InDelta(t, cfg.Passes.CatchHeight, chest.Points[12].Position.Y, 1e-9)
	assert.InDelta(t, 6/cfg.Passes.Types["chest"].Speed, chest.Duration(), 1e-9)
	for i := 1; i < len(chest.Points); i++ {
		assert.Greater(t, chest.Points[i].Time, chest.Points[i-1].Time)
	}

	bounce := p.CalculateTrajectory(from, to, PassBounce, 12)
	require.NotNil(t, bounce)
	assert.InDelta(t, cfg.Ball.Radius, bounce.Points[6].Position.Y, 1e-9, "bounce pass hits the floor at the midpoint")

	lob := p.CalculateTrajectory(from, to, PassLob, 12)
	require.NotNil(t, lob)
	assert.Greater(t, lob.Points[6].Position.Y, chest.Points[6].Position.Y)
	assert.Greater(t, lob.Duration(), chest.Duration())
}

// TestCalculateTrajectoryOutOfRange verifies range gating per pass type.
func TestCalculateTrajectoryOutOfRange(t *testing.T) {
	cfg := testConfig()
	p := NewPasser(cfg)

	tests := []struct {
		name string
		pt   PassType
		dist float64
		ok   bool
	}{
		{"chest in range", PassChest, 5, true},
		{"chest too far", PassChest, 12, false},
		{"chest too close", PassChest, 0.5, false},
		{"long pass", PassLong, 18, true},
		{"bounce too far", PassBounce, 8, false},
		{"unknown type", PassType("behind_back"), 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj := p.CalculateTrajectory(r3.Vec{}, r3.Vec{X: tt.dist}, tt.pt, 0)
			if (traj != nil) != tt.ok {
				t.Errorf("CalculateTrajectory(%s, %.1f m) nil=%v, want ok=%v", tt.pt, tt.dist, traj == nil, tt.ok)
			}
		})
	}
}

// TestRiskOutOfRangeIsCertain verifies impossible passes score exactly 1.
func TestRiskOutOfRangeIsCertain(t *testing.T) {
	r := newRiskAnalyzer()
	passer := newChar(0, components.TeamAlly, components.RolePG, 0, 0)
	chars := []components.Character{passer}

	risk, traj := r.PassRisk(passer.Position, r3.Vec{X: 20}, PassChest, chars, components.TeamAlly)
	assert.Nil(t, traj)
	assert.Equal(t, 1.0, risk.Probability)
	assert.Equal(t, components.NoCharacter, risk.InterceptorID)
}

// TestOpenChestPassIsSafe checks a 5 m chest pass with nobody near the lane.
func TestOpenChestPassIsSafe(t *testing.T) {
	r := newRiskAnalyzer()
	chars := []components.Character{
		newChar(0, components.TeamAlly, components.RolePG, 0, 0),
		newChar(1, components.TeamAlly, components.RoleSG, 5, 0),
	}

	risk, traj := r.PassRisk(chars[0].Position, chars[1].Position, PassChest, chars, components.TeamAlly)
	require.NotNil(t, traj)
	assert.Equal(t, 0.0, risk.Probability)
	assert.True(t, r.Safe(risk.Probability))

	// Distant defenders do not change that.
	chars = append(chars,
		newChar(5, components.TeamEnemy, components.RolePG, 2.5, 7),
		newChar(6, components.TeamEnemy, components.RoleSG, -6, 0),
	)
	risk, _ = r.PassRisk(chars[0].Position, chars[1].Position, PassChest, chars, components.TeamAlly)
	assert.Less(t, risk.Probability, 0.3)
}

// TestDefenderInLaneIsDangerous checks a defender standing mid-lane on a long chest pass.
func TestDefenderInLaneIsDangerous(t *testing.T) {
	r := newRiskAnalyzer()
	chars := []components.Character{
		newChar(0, components.TeamAlly, components.RolePG, 0, 0),
		newChar(1, components.TeamAlly, components.RoleSG, 9, 0),
		newChar(7, components.TeamEnemy, components.RoleSF, 4.5, 0),
	}

	risk, traj := r.PassRisk(chars[0].Position, chars[1].Position, PassChest, chars, components.TeamAlly)
	require.NotNil(t, traj)
	assert.Equal(t, components.CharacterID(7), risk.InterceptorID)
	assert.Equal(t, RiskDanger, r.Level(risk.Probability))

	// Teammates in the lane never intercept.
	chars[2].Team = components.TeamAlly
	risk, _ = r.PassRisk(chars[0].Position, chars[1].Position, PassChest, chars, components.TeamAlly)
	assert.Equal(t, 0.0, risk.Probability)
}

// TestRiskBounds fuzzes defender placement and checks probabilities stay in [0, 1].
func TestRiskBounds(t *testing.T) {
	r := newRiskAnalyzer()
	rng := rand.New(rand.NewPCG(1, 2))
	types := r.Passer().Order()

	for i := 0; i < 500; i++ {
		chars := make([]components.Character, 0, 6)
		for j := 0; j < 6; j++ {
			team := components.TeamAlly
			if j%2 == 1 {
				team = components.TeamEnemy
			}
			c := newChar(j, team, components.PositionRole(j%5), rng.Float64()*28-14, rng.Float64()*15-7.5)
			c.Stats.Reflexes = rng.Float64() * 100
			c.Stats.Steal = rng.Float64() * 100
			chars = append(chars, c)
		}
		pt := types[rng.IntN(len(types))]
		risk, _ := r.PassRisk(chars[0].Position, chars[2].Position, pt, chars, components.TeamAlly)
		if risk.Probability < 0 || risk.Probability > 1 || math.IsNaN(risk.Probability) {
			t.Fatalf("iteration %d: probability %v out of bounds", i, risk.Probability)
		}
	}
}

// TestWithinPassCone verifies the cone around facing.
func TestWithinPassCone(t *testing.T) {
	r := newRiskAnalyzer()
	passer := newChar(0, components.TeamAlly, components.RolePG, 0, 0) // facing +Z

	tests := []struct {
		name  string
		angle float64 // degrees off facing
		want  bool
	}{
		{"straight ahead", 0, true},
		{"side", 90, true},
		{"edge", 99, true},
		{"just outside", 101, false},
		{"behind", 180, false},
		{"other side outside", -120, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := r3.Scale(5, ForwardVector(tt.angle*math.Pi/180))
			if got := r.WithinPassCone(&passer, target); got != tt.want {
				t.Errorf("WithinPassCone(%v deg) = %v, want %v", tt.angle, got, tt.want)
			}
		})
	}

	if r.WithinPassCone(&passer, passer.Position) {
		t.Error("coincident target should be outside the cone")
	}
}

// TestBestPassRiskPicksLowest verifies the lowest-risk in-range type wins.
func TestBestPassRiskPicksLowest(t *testing.T) {
	r := newRiskAnalyzer()
	chars := []components.Character{
		newChar(0, components.TeamAlly, components.RolePG, 0, 0),
		newChar(1, components.TeamAlly, components.RoleC, 11, 0),
	}
	pt, risk, ok := r.BestPassRisk(chars[0].Position, chars[1].Position, chars, components.TeamAlly)
	require.True(t, ok)
	assert.Contains(t, []PassType{PassLob, PassLong}, pt)
	assert.Equal(t, 0.0, risk.Probability)

	_, _, ok = r.BestPassRisk(chars[0].Position, r3.Vec{X: 27}, chars, components.TeamAlly)
	assert.False(t, ok)
}
