package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// RiskLevel buckets an interception probability.
type RiskLevel uint8

const (
	RiskSafe RiskLevel = iota
	RiskModerate
	RiskDanger
)

func (l RiskLevel) String() string {
	switch l {
	case RiskSafe:
		return "safe"
	case RiskModerate:
		return "moderate"
	}
	return "danger"
}

// InterceptionRisk is the worst interception threat along a trajectory.
type InterceptionRisk struct {
	Probability   float64
	InterceptorID components.CharacterID
	SampleIndex   int
}

// RiskAnalyzer scores pass lanes against defenders.
type RiskAnalyzer struct {
	cfg     config.RiskConfig
	cone    float64
	topBase float64
	minStat float64
	passer  *Passer
}

// NewRiskAnalyzer creates a pass-lane risk model.
func NewRiskAnalyzer(cfg *config.Config, passer *Passer) *RiskAnalyzer {
	return &RiskAnalyzer{
		cfg:     cfg.Risk,
		cone:    cfg.Derived.PassConeRad,
		topBase: cfg.Movement.BaseMaxSpeed,
		minStat: cfg.Movement.MinSpeedStatFactor,
		passer:  passer,
	}
}

// Passer returns the trajectory generator the analyzer was built with.
func (r *RiskAnalyzer) Passer() *Passer {
	return r.passer
}

// ReactionTime returns a defender's reaction delay from reflexes and quickness.
func (r *RiskAnalyzer) ReactionTime(c *components.Character) float64 {
	skill := (components.Rating(c.Stats.Reflexes) + components.Rating(c.Stats.Quickness)) / 2
	return Lerp(r.cfg.ReactionMax, r.cfg.ReactionMin, skill)
}

// reach returns how high a defender can get a hand.
func (r *RiskAnalyzer) reach(c *components.Character) float64 {
	h := c.Body.Height
	if h <= 0 {
		h = c.Stats.Height
	}
	return h*r.cfg.ReachFactor + r.cfg.JumpReach
}

func (r *RiskAnalyzer) defenderSpeed(c *components.Character) float64 {
	top := r.topBase * Lerp(r.minStat, 1, components.Rating(c.Stats.Speed))
	return math.Max(top*r.cfg.DefenderSpeedFrac, Epsilon)
}

// AnalyzeTrajectoryRisk returns the highest probability any opponent of the
// passing team intercepts the trajectory, and who. A nil trajectory means the
// pass cannot be made and scores 1.
func (r *RiskAnalyzer) AnalyzeTrajectoryRisk(traj *Trajectory, characters []components.Character, passing components.Team) InterceptionRisk {
	if traj == nil || len(traj.Points) == 0 {
		return InterceptionRisk{Probability: 1, InterceptorID: components.NoCharacter, SampleIndex: -1}
	}
	best := InterceptionRisk{InterceptorID: components.NoCharacter, SampleIndex: -1}
	for i := range characters {
		d := &characters[i]
		if d.Team == passing {
			continue
		}
		p, idx := r.defenderRisk(traj, d)
		if p > best.Probability {
			best = InterceptionRisk{Probability: p, InterceptorID: d.ID, SampleIndex: idx}
		}
	}
	return best
}

// defenderRisk scores one defender against every sample. The first and last
// samples are the passer's and receiver's hands and are skipped.
func (r *RiskAnalyzer) defenderRisk(traj *Trajectory, d *components.Character) (float64, int) {
	reaction := r.ReactionTime(d)
	speed := r.defenderSpeed(d)
	reach := r.reach(d)
	stealScale := 1 - r.cfg.StealStatWeight + r.cfg.StealStatWeight*components.Rating(d.Stats.Steal)

	best, bestIdx := 0.0, -1
	last := len(traj.Points) - 1
	for i, pt := range traj.Points {
		if last > 0 && (i == 0 || i == last) {
			continue
		}
		if pt.Position.Y > reach {
			continue
		}
		dist := FlatDistance(d.Position, pt.Position) - r.cfg.InterceptRadius
		if dist < 0 {
			dist = 0
		}
		defenderTime := reaction + dist/speed
		slack := pt.Time - defenderTime
		p := Clamp01(slack/r.cfg.Window+0.5) * stealScale
		if p > best {
			best, bestIdx = p, i
		}
	}
	return Clamp01(best), bestIdx
}

// PassRisk builds the trajectory for a pass and scores it. Out-of-range
// passes score exactly 1.
func (r *RiskAnalyzer) PassRisk(from, to r3.Vec, pt PassType, characters []components.Character, passing components.Team) (InterceptionRisk, *Trajectory) {
	traj := r.passer.CalculateTrajectory(from, to, pt, 0)
	return r.AnalyzeTrajectoryRisk(traj, characters, passing), traj
}

// BestPassRisk returns the lowest-risk pass type between two points, in
// configured order on ties. ok is false when no pass type is in range.
func (r *RiskAnalyzer) BestPassRisk(from, to r3.Vec, characters []components.Character, passing components.Team) (PassType, InterceptionRisk, bool) {
	var (
		bestType PassType
		bestRisk = InterceptionRisk{Probability: 1, InterceptorID: components.NoCharacter, SampleIndex: -1}
		found    bool
	)
	for _, pt := range r.passer.Order() {
		risk, traj := r.PassRisk(from, to, pt, characters, passing)
		if traj == nil {
			continue
		}
		if !found || risk.Probability < bestRisk.Probability {
			bestType, bestRisk, found = pt, risk, true
		}
	}
	return bestType, bestRisk, found
}

// WithinPassCone reports whether target lies within the pass cone around the
// passer's facing. Coincident points are outside the cone.
func (r *RiskAnalyzer) WithinPassCone(passer *components.Character, target r3.Vec) bool {
	dir := r3.Sub(target, passer.Position)
	angle, ok := AngleBetween(passer.Facing, dir)
	if !ok {
		return false
	}
	return angle <= r.cone+Epsilon
}

// Level buckets a probability against the configured thresholds.
func (r *RiskAnalyzer) Level(p float64) RiskLevel {
	switch {
	case p < r.cfg.SafeThreshold:
		return RiskSafe
	case p >= r.cfg.DangerThreshold:
		return RiskDanger
	}
	return RiskModerate
}

// Safe reports whether a probability is below the safe threshold.
func (r *RiskAnalyzer) Safe(p float64) bool {
	return p < r.cfg.SafeThreshold
}
