package systems

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// HandlerRole marks guards that stay close to the ball as outlets.
type HandlerRole uint8

const (
	HandlerNone HandlerRole = iota
	HandlerMain
	HandlerSecond
)

func (h HandlerRole) String() string {
	switch h {
	case HandlerMain:
		return "main_handler"
	case HandlerSecond:
		return "second_handler"
	}
	return "none"
}

// handlerOrder lists the roles eligible as handlers, most preferred first.
var handlerOrder = [...]components.PositionRole{components.RolePG, components.RoleSG}

// HandlerRoleFor returns self's handler role while holder has the ball.
// The first guard who is not the holder is the main handler, the next one
// the second handler.
func HandlerRoleFor(self, holder *components.Character) HandlerRole {
	if holder == nil || self.Team != holder.Team || self.ID == holder.ID {
		return HandlerNone
	}
	rank := 0
	for _, role := range handlerOrder {
		if role == holder.Role {
			continue
		}
		rank++
		if role == self.Role {
			if rank == 1 {
				return HandlerMain
			}
			return HandlerSecond
		}
	}
	return HandlerNone
}

// HandlerSolver picks support spots on a ring around the ball holder.
type HandlerSolver struct {
	cfg  config.HandlerConfig
	step float64
	risk *RiskAnalyzer
}

// NewHandlerSolver creates the handler positioning solver.
func NewHandlerSolver(cfg *config.Config, risk *RiskAnalyzer) *HandlerSolver {
	step := cfg.Tactics.Handlers.AngleStep * math.Pi / 180
	if step <= 0 {
		step = math.Pi / 12
	}
	return &HandlerSolver{cfg: cfg.Tactics.Handlers, step: step, risk: risk}
}

// Radius returns the ideal distance from the holder for a handler role.
func (s *HandlerSolver) Radius(role HandlerRole) float64 {
	if role == HandlerSecond {
		return s.cfg.SecondRadius
	}
	return s.cfg.MainRadius
}

// HandlerQuery describes one handler placement problem.
type HandlerQuery struct {
	Self       *components.Character
	Holder     *components.Character
	Role       HandlerRole
	Other      r3.Vec // the other handler's spot
	HasOther   bool
	Characters []components.Character
}

// Solve samples the ring around the holder and returns the spot with the
// lowest weighted score of lane risk, position ahead of the ball, travel
// distance and crowding of the other handler. ok is false when no sample
// lies on the court.
func (s *HandlerSolver) Solve(f *components.Field, q HandlerQuery) (r3.Vec, bool) {
	if q.Holder == nil || q.Self == nil || q.Role == HandlerNone {
		return r3.Vec{}, false
	}
	radius := s.Radius(q.Role)
	goal := f.AttackingGoal(q.Holder.Team).Floor()
	toGoal, hasGoal := Direction(q.Holder.Position, goal)

	n := int(math.Ceil(2 * math.Pi / s.step))
	points := make([]r3.Vec, n)
	scores := make([]float64, n)
	w := s.cfg.Weights
	for i := 0; i < n; i++ {
		p := r3.Add(Flat(q.Holder.Position), r3.Scale(radius, ForwardVector(float64(i)*s.step)))
		points[i] = p
		if !f.InBounds(p) {
			scores[i] = math.Inf(1)
			continue
		}

		risk := 1.0
		if _, r, ok := s.risk.BestPassRisk(q.Holder.Position, p, q.Characters, q.Holder.Team); ok {
			risk = r.Probability
		}

		behind := 0.5
		if hasGoal {
			if d, ok := Direction(q.Holder.Position, p); ok {
				behind = (r3.Dot(d, toGoal) + 1) / 2
			}
		}

		travel := FlatDistance(q.Self.Position, p) / (2 * radius)

		overlap := 0.0
		if q.HasOther && s.cfg.OverlapDistance > 0 {
			if d := FlatDistance(p, q.Other); d < s.cfg.OverlapDistance {
				overlap = 1 - d/s.cfg.OverlapDistance
			}
		}

		scores[i] = w.Risk*risk + w.Behind*behind + w.Travel*travel + w.Overlap*overlap
	}
	best := floats.MinIdx(scores)
	if math.IsInf(scores[best], 1) {
		return r3.Vec{}, false
	}
	return points[best], true
}
