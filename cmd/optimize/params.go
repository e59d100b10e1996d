// Package main provides CMA-ES tuning of action success parameters.
package main

import (
	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Shot make rates
			{Name: "make_layup", Path: "actions.shots.base_make.shoot_layup", Min: 0.35, Max: 0.8, Default: 0.6},
			{Name: "make_midrange", Path: "actions.shots.base_make.shoot_midrange", Min: 0.25, Max: 0.6, Default: 0.42},
			{Name: "make_3pt", Path: "actions.shots.base_make.shoot_3pt", Min: 0.2, Max: 0.5, Default: 0.35},
			{Name: "contest_penalty", Path: "actions.shots.contest_penalty", Min: 0.0, Max: 0.6, Default: 0.25},
			// Defense
			{Name: "steal_base", Path: "actions.steal_base", Min: 0.05, Max: 0.5, Default: 0.25},
			{Name: "steal_reach", Path: "actions.steal_reach", Min: 0.8, Max: 2.0, Default: 1.3},
			{Name: "block_base", Path: "actions.block_base", Min: 0.1, Max: 0.6, Default: 0.35},
			{Name: "feint_bite_duration", Path: "actions.feint_bite_duration", Min: 0.2, Max: 1.2, Default: 0.6},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// The config must own its maps; shots.base_make is written in place.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	shots := &cfg.Actions.Shots
	if shots.BaseMake == nil {
		shots.BaseMake = make(map[string]float64)
	}
	shots.BaseMake[string(components.ActionShootLayup)] = clamped[i]
	i++
	shots.BaseMake[string(components.ActionShootMidrange)] = clamped[i]
	i++
	shots.BaseMake[string(components.ActionShoot3pt)] = clamped[i]
	i++
	shots.ContestPenalty = clamped[i]
	i++

	cfg.Actions.StealBase = clamped[i]
	i++
	cfg.Actions.StealReach = clamped[i]
	i++
	cfg.Actions.BlockBase = clamped[i]
	i++
	cfg.Actions.FeintBiteDuration = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	shots := cfg.Actions.Shots
	return []float64{
		shots.BaseMake[string(components.ActionShootLayup)],
		shots.BaseMake[string(components.ActionShootMidrange)],
		shots.BaseMake[string(components.ActionShoot3pt)],
		shots.ContestPenalty,
		cfg.Actions.StealBase,
		cfg.Actions.StealReach,
		cfg.Actions.BlockBase,
		cfg.Actions.FeintBiteDuration,
	}
}
