// Command optimize searches action success parameters with CMA-ES so that
// headless matches land on realistic box-score rates.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/hoops/config"
)

type options struct {
	configPath string
	maxTicks   int
	seeds      int
	baseSeed   uint64
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 0, "Tick cap per match (0 = twice the game length)")
	flag.IntVar(&opts.seeds, "seeds", 3, "Matches per evaluation")
	flag.Uint64Var(&opts.baseSeed, "seed", 42, "First match seed; the rest are derived from it")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = 4 + 3 ln dim)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	// Matches log every basket; keep only warnings while tuning
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	slog.SetLogLoggerLevel(slog.LevelWarn)

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(opts options, out io.Writer) error {
	if opts.outputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if opts.seeds < 1 {
		return fmt.Errorf("--seeds must be at least 1")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ticks := int32(opts.maxTicks)
	if ticks <= 0 {
		ticks = int32(2 * base.Match.GameLength / base.Match.DT)
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, ticks, matchSeeds(opts.baseSeed, opts.seeds), opts.configPath)

	logFile, err := os.Create(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	tu := newTuner(params, evaluator, csv.NewWriter(logFile), out, opts.maxEvals)
	if err := tu.writeHeader(); err != nil {
		return err
	}

	dim := params.Dim()
	pop := opts.population
	if pop <= 0 {
		pop = 4 + int(3*math.Log(float64(dim)))
	}
	fmt.Fprintf(out, "CMA-ES over %d parameters, population %d, %d evals, %d matches each (tick cap %d)\n",
		dim, pop, opts.maxEvals, opts.seeds, ticks)

	start := params.Normalize(params.Clamp(params.ExtractFromConfig(base)))
	problem := optimize.Problem{Func: tu.objective}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}

	result, err := optimize.Minimize(problem, start, settings, method)
	if err != nil {
		fmt.Fprintf(out, "search stopped: %v\n", err)
	}
	if tu.best == nil && result != nil {
		tu.best = params.Clamp(params.Denormalize(result.X))
	}
	if tu.best == nil {
		return fmt.Errorf("no evaluation finished")
	}

	tu.summary()
	return tu.save(opts.outputDir, opts.configPath)
}

// matchSeeds spreads n seeds from base so neighbouring runs do not share
// opening sequences.
func matchSeeds(base uint64, n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = base + uint64(i)*0x9e3779b97f4a7c15
	}
	return seeds
}

// tuner wraps the evaluator as a CMA-ES objective and keeps the log, the
// progress output and the best vector seen.
type tuner struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       *csv.Writer
	out       io.Writer
	maxEvals  int

	evals       int
	started     time.Time
	best        []float64
	bestFitness float64
	bestRates   Rates
}

func newTuner(params *ParamVector, fe *FitnessEvaluator, w *csv.Writer, out io.Writer, maxEvals int) *tuner {
	return &tuner{
		params:      params,
		evaluator:   fe,
		log:         w,
		out:         out,
		maxEvals:    maxEvals,
		started:     time.Now(),
		bestFitness: math.Inf(1),
	}
}

func (tu *tuner) writeHeader() error {
	header := []string{"eval", "fitness"}
	for _, spec := range tu.params.Specs {
		header = append(header, spec.Name)
	}
	for _, t := range tu.evaluator.targets {
		header = append(header, t.Name)
	}
	if err := tu.log.Write(header); err != nil {
		return fmt.Errorf("writing log header: %w", err)
	}
	tu.log.Flush()
	return tu.log.Error()
}

// objective scores a normalized vector. The logged values are the clamped
// ones the matches actually ran with.
func (tu *tuner) objective(x []float64) float64 {
	values := tu.params.Clamp(tu.params.Denormalize(x))
	fitness := tu.evaluator.Evaluate(values)
	rates := tu.evaluator.LastRates()
	tu.evals++

	if fitness < tu.bestFitness {
		tu.bestFitness = fitness
		tu.best = values
		tu.bestRates = rates
	}

	row := []string{strconv.Itoa(tu.evals), strconv.FormatFloat(fitness, 'f', 6, 64)}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	for _, e := range tu.evaluator.TargetErrors(rates) {
		row = append(row, strconv.FormatFloat(e.Got, 'f', 4, 64))
	}
	if err := tu.log.Write(row); err != nil {
		slog.Warn("log_write_failed", "eval", tu.evals, "error", err)
	}
	tu.log.Flush()

	tu.progress(fitness, rates)
	return fitness
}

// progress prints one line per evaluation: the fitness, then every target as
// got/want with its weighted share of the fitness.
func (tu *tuner) progress(fitness float64, rates Rates) {
	elapsed := time.Since(tu.started)
	eta := time.Duration(tu.maxEvals-tu.evals) * (elapsed / time.Duration(tu.evals))

	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] fit %.4f best %.4f |", tu.evals, tu.maxEvals, fitness, tu.bestFitness)
	for _, e := range tu.evaluator.TargetErrors(rates) {
		fmt.Fprintf(&b, " %s %.2f/%.2f (%.3f)", e.Name, e.Got, e.Want, e.Cost)
	}
	fmt.Fprintf(&b, " | %s left\n", clock(eta))
	io.WriteString(tu.out, b.String())
}

func (tu *tuner) summary() {
	fmt.Fprintf(tu.out, "\n%d evaluations in %s, best fitness %.4f\n", tu.evals, clock(time.Since(tu.started)), tu.bestFitness)
	for i, spec := range tu.params.Specs {
		fmt.Fprintf(tu.out, "  %-20s %.4f  (%s)\n", spec.Name, tu.best[i], spec.Path)
	}
	fmt.Fprintln(tu.out, "target errors of the best run:")
	for _, e := range tu.evaluator.TargetErrors(tu.bestRates) {
		fmt.Fprintf(tu.out, "  %-20s got %.3f want %.3f  log error %+.3f\n", e.Name, e.Got, e.Want, e.LogError)
	}
}

// save writes best_config.yaml, best_rates.json and, when a match finished,
// best_box_score.json.
func (tu *tuner) save(dir, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	tu.params.ApplyToConfig(cfg, tu.best)
	if err := cfg.WriteYAML(filepath.Join(dir, "best_config.yaml")); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}

	report := struct {
		Fitness float64       `json:"fitness"`
		Rates   Rates         `json:"rates"`
		Targets []TargetError `json:"targets"`
	}{tu.bestFitness, tu.bestRates, tu.evaluator.TargetErrors(tu.bestRates)}
	if err := writeJSON(filepath.Join(dir, "best_rates.json"), report); err != nil {
		return err
	}

	if lines := tu.evaluator.BestBoxScore(); lines != nil {
		if err := writeJSON(filepath.Join(dir, "best_box_score.json"), lines); err != nil {
			return err
		}
	}
	fmt.Fprintf(tu.out, "results written to %s\n", dir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// clock formats a duration as 1h02m03s, or 2m03s under an hour.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
