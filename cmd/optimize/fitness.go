package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/game"
	"github.com/pthm-cable/hoops/telemetry"
)

// FitnessEvaluator runs headless matches and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []uint64
	configPath  string
	statsWindow float64
	targets     []Target

	// Best run tracking
	mu           sync.Mutex
	bestFitness  float64
	bestBoxScore []telemetry.PlayerLine
	lastRates    Rates // rates from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every run reloads the base
// config from configPath so parallel matches never share maps.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []uint64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		statsWindow: 30.0,
		targets:     DefaultTargets(),
		bestFitness: math.Inf(1),
	}
}

// BestBoxScore returns the box score from the best evaluation.
func (fe *FitnessEvaluator) BestBoxScore() []telemetry.PlayerLine {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestBoxScore
}

// LastRates returns the averaged rates from the most recent evaluation.
func (fe *FitnessEvaluator) LastRates() Rates {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRates
}

// Rates are match-level outcome rates, per minute of match time unless noted.
type Rates struct {
	FieldGoalPct float64 `json:"fg_pct"`
	ThreeShare   float64 `json:"three_share"` // threes made / shots made
	Shots        float64 `json:"shots_per_min"`
	Steals       float64 `json:"steals_per_min"`
	Blocks       float64 `json:"blocks_per_min"`
	Turnovers    float64 `json:"turnovers_per_min"`
}

// Target is the value one rate should settle at.
type Target struct {
	Name   string
	Value  float64
	Weight float64
	get    func(Rates) float64
}

// DefaultTargets returns targets scaled from professional box scores.
func DefaultTargets() []Target {
	return []Target{
		{Name: "fg_pct", Value: 0.46, Weight: 2, get: func(r Rates) float64 { return r.FieldGoalPct }},
		{Name: "three_share", Value: 0.3, Weight: 0.5, get: func(r Rates) float64 { return r.ThreeShare }},
		{Name: "shots_per_min", Value: 3.5, Weight: 1, get: func(r Rates) float64 { return r.Shots }},
		{Name: "steals_per_min", Value: 0.3, Weight: 1, get: func(r Rates) float64 { return r.Steals }},
		{Name: "blocks_per_min", Value: 0.2, Weight: 0.5, get: func(r Rates) float64 { return r.Blocks }},
		{Name: "turnovers_per_min", Value: 0.55, Weight: 1, get: func(r Rates) float64 { return r.Turnovers }},
	}
}

// runResult holds the results from a single match.
type runResult struct {
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
	boxScore    []telemetry.PlayerLine
	err         error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness  float64
	rates    Rates
	boxScore []telemetry.PlayerLine
}

// rateEpsilon keeps the log error finite when a rate is zero.
const rateEpsilon = 0.01

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the weighted squared log error of the match rates against the targets.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			if result.err != nil {
				results[idx] = seedResult{fitness: math.Inf(1)}
				return
			}
			rates := ComputeRates(result.windowStats)
			results[idx] = seedResult{
				fitness:  fe.computeFitness(rates),
				rates:    rates,
				boxScore: result.boxScore,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness float64
	var avg Rates
	bestSeedFitness := math.Inf(1)
	var bestSeedBoxScore []telemetry.PlayerLine

	for _, r := range results {
		totalFitness += r.fitness
		avg.FieldGoalPct += r.rates.FieldGoalPct
		avg.ThreeShare += r.rates.ThreeShare
		avg.Shots += r.rates.Shots
		avg.Steals += r.rates.Steals
		avg.Blocks += r.rates.Blocks
		avg.Turnovers += r.rates.Turnovers
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedBoxScore = r.boxScore
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n
	avg.FieldGoalPct /= n
	avg.ThreeShare /= n
	avg.Shots /= n
	avg.Steals /= n
	avg.Blocks /= n
	avg.Turnovers /= n

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestBoxScore = bestSeedBoxScore
	}
	fe.lastRates = avg
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless match.
// Runs until the final buzzer or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) *runResult {
	result := &runResult{}

	cfg, err := fe.copyConfig()
	if err != nil {
		result.err = err
		return result
	}
	fe.params.ApplyToConfig(cfg, x)

	// Create and run game, collecting window stats via callback
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})

	for !g.Over() && g.Tick() < fe.maxTicks {
		g.Step()
	}

	result.boxScore = g.BoxScore().Lines()
	g.Unload()
	return result
}

// copyConfig loads a private copy of the base config.
func (fe *FitnessEvaluator) copyConfig() (*config.Config, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}
	return cfg, nil
}

// TargetError is how far one rate landed from its target.
type TargetError struct {
	Name     string  `json:"name"`
	Got      float64 `json:"got"`
	Want     float64 `json:"want"`
	LogError float64 `json:"log_error"` // ln of got over want, zero on target
	Cost     float64 `json:"cost"`      // weighted squared log error
}

// TargetErrors breaks r down per target, in target order.
func (fe *FitnessEvaluator) TargetErrors(r Rates) []TargetError {
	errs := make([]TargetError, len(fe.targets))
	for i, t := range fe.targets {
		got := t.get(r)
		logErr := math.Log((got + rateEpsilon) / (t.Value + rateEpsilon))
		errs[i] = TargetError{
			Name:     t.Name,
			Got:      got,
			Want:     t.Value,
			LogError: logErr,
			Cost:     t.Weight * logErr * logErr,
		}
	}
	return errs
}

// computeFitness calculates the scalar fitness (lower = better).
func (fe *FitnessEvaluator) computeFitness(r Rates) float64 {
	var sum float64
	for _, e := range fe.TargetErrors(r) {
		sum += e.Cost
	}
	return sum
}

// ComputeRates totals the window stats of one match into rates.
func ComputeRates(windows []telemetry.WindowStats) Rates {
	var r Rates
	if len(windows) == 0 {
		return r
	}

	var attempted, made, threes, steals, blocks, turnovers int
	for _, w := range windows {
		attempted += w.ShotsAttempted
		made += w.ShotsMade
		threes += w.ThreesMade
		steals += w.Steals // interceptions are already counted as steals
		blocks += w.Blocks
		turnovers += w.Turnovers
	}

	minutes := windows[len(windows)-1].MatchTimeSec / 60
	if minutes <= 0 {
		return r
	}

	if attempted > 0 {
		r.FieldGoalPct = float64(made) / float64(attempted)
	}
	if made > 0 {
		r.ThreeShare = float64(threes) / float64(made)
	}
	r.Shots = float64(attempted) / minutes
	r.Steals = float64(steals) / minutes
	r.Blocks = float64(blocks) / minutes
	r.Turnovers = float64(turnovers) / minutes
	return r
}
