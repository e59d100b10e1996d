package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/telemetry"
)

// TestComputeRates checks window totals are turned into per-minute rates.
func TestComputeRates(t *testing.T) {
	windows := []telemetry.WindowStats{
		{MatchTimeSec: 60, ShotsAttempted: 4, ShotsMade: 2, ThreesMade: 1, Steals: 1, Turnovers: 1},
		{MatchTimeSec: 120, ShotsAttempted: 6, ShotsMade: 2, Interceptions: 1, Blocks: 2, Turnovers: 2},
	}

	r := ComputeRates(windows)
	assert.InDelta(t, 0.4, r.FieldGoalPct, 1e-9)
	assert.InDelta(t, 0.25, r.ThreeShare, 1e-9)
	assert.InDelta(t, 5.0, r.Shots, 1e-9)
	assert.InDelta(t, 1.0, r.Steals, 1e-9, "interceptions are already part of steals")
	assert.InDelta(t, 1.0, r.Blocks, 1e-9)
	assert.InDelta(t, 1.5, r.Turnovers, 1e-9)

	assert.Equal(t, Rates{}, ComputeRates(nil))
}

// TestComputeFitness checks on-target rates score zero and misses score higher.
func TestComputeFitness(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 100, []uint64{1}, "")

	var onTarget Rates
	onTarget.FieldGoalPct = 0.46
	onTarget.ThreeShare = 0.3
	onTarget.Shots = 3.5
	onTarget.Steals = 0.3
	onTarget.Blocks = 0.2
	onTarget.Turnovers = 0.55
	assert.InDelta(t, 0, fe.computeFitness(onTarget), 1e-12)

	off := onTarget
	off.FieldGoalPct = 0.8
	worse := off
	worse.FieldGoalPct = 0.95
	assert.Greater(t, fe.computeFitness(off), 0.0)
	assert.Greater(t, fe.computeFitness(worse), fe.computeFitness(off))
	assert.False(t, math.IsInf(fe.computeFitness(Rates{}), 0), "zero rates stay finite")
}

// TestParamVectorRoundTrip checks normalization and config application agree.
func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	require.Len(t, def, pv.Dim())

	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		assert.InDelta(t, def[i], back[i], 1e-12, pv.Specs[i].Name)
	}

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, def, pv.ExtractFromConfig(cfg), "defaults match the embedded config")

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = spec.Max + 1
	}
	pv.ApplyToConfig(cfg, values)
	for i, v := range pv.ExtractFromConfig(cfg) {
		assert.Equal(t, pv.Specs[i].Max, v, "clamped %s", pv.Specs[i].Name)
	}
}

// TestTargetErrors checks the per-target breakdown sums to the fitness and
// signs each miss by direction.
func TestTargetErrors(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 100, []uint64{1}, "")

	tests := []struct {
		name  string
		rates Rates
		sign  map[string]float64 // expected sign of the log error; absent means zero
	}{
		{
			name:  "on target",
			rates: Rates{FieldGoalPct: 0.46, ThreeShare: 0.3, Shots: 3.5, Steals: 0.3, Blocks: 0.2, Turnovers: 0.55},
		},
		{
			name:  "hot shooting few steals",
			rates: Rates{FieldGoalPct: 0.7, ThreeShare: 0.3, Shots: 3.5, Steals: 0.1, Blocks: 0.2, Turnovers: 0.55},
			sign:  map[string]float64{"fg_pct": 1, "steals_per_min": -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := fe.TargetErrors(tt.rates)
			require.Len(t, errs, len(DefaultTargets()))

			var total float64
			for _, e := range errs {
				total += e.Cost
				switch s := tt.sign[e.Name]; {
				case s > 0:
					assert.Greater(t, e.LogError, 0.0, e.Name)
				case s < 0:
					assert.Less(t, e.LogError, 0.0, e.Name)
				default:
					assert.InDelta(t, 0, e.LogError, 1e-12, e.Name)
				}
			}
			assert.InDelta(t, fe.computeFitness(tt.rates), total, 1e-12)
		})
	}
}

// TestMatchSeeds checks derived seeds are distinct and start at the base.
func TestMatchSeeds(t *testing.T) {
	seeds := matchSeeds(42, 4)
	require.Len(t, seeds, 4)
	assert.Equal(t, uint64(42), seeds[0])

	seen := make(map[uint64]bool)
	for _, s := range seeds {
		assert.False(t, seen[s], "duplicate seed %d", s)
		seen[s] = true
	}
}
