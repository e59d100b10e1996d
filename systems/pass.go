package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/config"
)

// PassType names a pass style from configuration.
type PassType string

const (
	PassChest   PassType = "chest"
	PassBounce  PassType = "bounce"
	PassLob     PassType = "lob"
	PassLong    PassType = "long"
	PassOneHand PassType = "one_hand"
)

// TrajectoryPoint is one sample along a pass path.
type TrajectoryPoint struct {
	Position r3.Vec
	Time     float64 // seconds after release
}

// Trajectory is a sampled ball path for one candidate pass.
type Trajectory struct {
	Type   PassType
	Points []TrajectoryPoint
}

// Duration returns the flight time of the pass.
func (t *Trajectory) Duration() float64 {
	if t == nil || len(t.Points) == 0 {
		return 0
	}
	return t.Points[len(t.Points)-1].Time
}

// PositionAt interpolates the ball position at a time after release.
// Times past the end clamp to the catch point.
func (t *Trajectory) PositionAt(tm float64) r3.Vec {
	if t == nil || len(t.Points) == 0 {
		return r3.Vec{}
	}
	if tm <= 0 {
		return t.Points[0].Position
	}
	for i := 1; i < len(t.Points); i++ {
		a, b := t.Points[i-1], t.Points[i]
		if tm <= b.Time {
			span := b.Time - a.Time
			if span < Epsilon {
				return b.Position
			}
			f := (tm - a.Time) / span
			return r3.Add(a.Position, r3.Scale(f, r3.Sub(b.Position, a.Position)))
		}
	}
	return t.Points[len(t.Points)-1].Position
}

// Passer builds pass trajectories from configured pass styles.
type Passer struct {
	cfg        config.PassesConfig
	ballRadius float64
}

// NewPasser creates a trajectory generator.
func NewPasser(cfg *config.Config) *Passer {
	return &Passer{cfg: cfg.Passes, ballRadius: cfg.Ball.Radius}
}

// Order returns the pass types in evaluation order.
func (p *Passer) Order() []PassType {
	out := make([]PassType, 0, len(p.cfg.Order))
	for _, name := range p.cfg.Order {
		out = append(out, PassType(name))
	}
	return out
}

// Spec returns the configuration for a pass type.
func (p *Passer) Spec(pt PassType) (config.PassTypeConfig, bool) {
	s, ok := p.cfg.Types[string(pt)]
	return s, ok
}

// InRange reports whether a floor distance suits the pass type.
func (p *Passer) InRange(pt PassType, dist float64) bool {
	s, ok := p.Spec(pt)
	return ok && dist >= s.MinRange && dist <= s.MaxRange
}

// CalculateTrajectory samples the path of a pass released at from's hand
// height and caught at to's. It returns nil when the floor distance is outside
// the pass type's range. sampleCount <= 0 uses the configured count.
func (p *Passer) CalculateTrajectory(from, to r3.Vec, pt PassType, sampleCount int) *Trajectory {
	spec, ok := p.Spec(pt)
	if !ok {
		return nil
	}
	dist := FlatDistance(from, to)
	if dist < spec.MinRange || dist > spec.MaxRange {
		return nil
	}
	if sampleCount <= 0 {
		sampleCount = p.cfg.SampleCount
	}

	start := r3.Vec{X: from.X, Y: p.cfg.ReleaseHeight, Z: from.Z}
	end := r3.Vec{X: to.X, Y: p.cfg.CatchHeight, Z: to.Z}
	flight := dist / spec.Speed

	traj := &Trajectory{Type: pt, Points: make([]TrajectoryPoint, sampleCount+1)}
	for i := 0; i <= sampleCount; i++ {
		s := float64(i) / float64(sampleCount)
		pos := r3.Add(start, r3.Scale(s, r3.Sub(end, start)))
		pos.Y = p.height(pt, spec, s, start.Y, end.Y)
		traj.Points[i] = TrajectoryPoint{Position: pos, Time: s * flight}
	}
	return traj
}

// height returns the ball height at path fraction s.
func (p *Passer) height(pt PassType, spec config.PassTypeConfig, s, h0, h1 float64) float64 {
	if pt == PassBounce {
		// Straight down to the floor at the midpoint, then back up.
		floor := p.ballRadius
		if s <= 0.5 {
			u := s / 0.5
			return Lerp(h0, floor, u*u)
		}
		u := (1 - s) / 0.5
		return Lerp(h1, floor, u*u)
	}
	base := Lerp(h0, h1, s)
	return math.Max(p.ballRadius, base+spec.ArcHeight*4*s*(1-s))
}
