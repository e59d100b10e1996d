package systems

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// Rand is the random source decisions draw from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Uint64() uint64
}

// NoZone marks an unassigned zone index.
const NoZone = -1

// Zone is a tactical spacing spot in attack-relative coordinates.
type Zone struct {
	Name    string
	Depth   float64
	Lateral float64
	Pair    int // index of the mutually exclusive zone, or NoZone
}

// Zones is the static zone table with per-role priorities.
type Zones struct {
	cfg        config.TacticsConfig
	zones      []Zone
	priorities [components.NumRoles][]int
	scale      [components.NumRoles]float64
}

// NewZones builds the zone table from configuration.
func NewZones(cfg *config.Config) *Zones {
	t := cfg.Tactics
	z := &Zones{cfg: t, zones: make([]Zone, len(t.Zones))}
	for i, zc := range t.Zones {
		pair := NoZone
		if idx, ok := cfg.Derived.ZoneIndex[zc.Pair]; ok && zc.Pair != "" {
			pair = idx
		}
		z.zones[i] = Zone{Name: zc.Name, Depth: zc.Depth, Lateral: zc.Lateral, Pair: pair}
	}
	for role := components.PositionRole(0); role < components.NumRoles; role++ {
		for _, name := range t.Priorities[role.String()] {
			if idx, ok := cfg.Derived.ZoneIndex[name]; ok {
				z.priorities[role] = append(z.priorities[role], idx)
			}
		}
		z.scale[role] = 1
		if s, ok := t.RoleIntervalScale[role.String()]; ok && s > 0 {
			z.scale[role] = s
		}
	}
	return z
}

// Len returns the number of zones.
func (z *Zones) Len() int { return len(z.zones) }

// Zone returns a zone by index.
func (z *Zones) Zone(idx int) Zone { return z.zones[idx] }

// Index looks up a zone by name.
func (z *Zones) Index(name string) (int, bool) {
	for i := range z.zones {
		if z.zones[i].Name == name {
			return i, true
		}
	}
	return NoZone, false
}

// Priorities returns the role's zone preference list.
func (z *Zones) Priorities(role components.PositionRole) []int {
	return z.priorities[role]
}

// Anchor returns the zone center in world space for the attacking team.
func (z *Zones) Anchor(f *components.Field, t components.Team, idx int) r3.Vec {
	zn := z.zones[idx]
	return f.AttackPoint(t, zn.Depth, zn.Lateral)
}

// DecisionInterval returns how often a player re-evaluates its spot.
// Disciplined players re-check more often.
func (z *Zones) DecisionInterval(c *components.Character) float64 {
	base := Lerp(z.cfg.DecisionIntervalMax, z.cfg.DecisionIntervalMin, components.Rating(c.Stats.Alignment))
	return base * z.scale[c.Role]
}

// ZoneRegistry is one team's shared record of held zones. A zone can only be
// held while its paired zone is free.
type ZoneRegistry struct {
	zones   *Zones
	holders []components.CharacterID
}

// NewZoneRegistry creates an empty registry.
func NewZoneRegistry(z *Zones) *ZoneRegistry {
	r := &ZoneRegistry{zones: z, holders: make([]components.CharacterID, z.Len())}
	r.Reset()
	return r
}

// Reset releases every zone.
func (r *ZoneRegistry) Reset() {
	for i := range r.holders {
		r.holders[i] = components.NoCharacter
	}
}

// Holder returns who holds a zone.
func (r *ZoneRegistry) Holder(idx int) components.CharacterID {
	return r.holders[idx]
}

// HeldBy returns the zone a character holds.
func (r *ZoneRegistry) HeldBy(id components.CharacterID) (int, bool) {
	for i, h := range r.holders {
		if h == id {
			return i, true
		}
	}
	return NoZone, false
}

// Available reports whether id could claim the zone.
func (r *ZoneRegistry) Available(idx int, id components.CharacterID) bool {
	if h := r.holders[idx]; h != components.NoCharacter && h != id {
		return false
	}
	if pair := r.zones.zones[idx].Pair; pair != NoZone {
		if h := r.holders[pair]; h != components.NoCharacter && h != id {
			return false
		}
	}
	return true
}

// Claim gives the zone to id, releasing whatever id held before.
// It fails when the zone or its pair is held by someone else.
func (r *ZoneRegistry) Claim(idx int, id components.CharacterID) bool {
	if idx < 0 || idx >= len(r.holders) || !r.Available(idx, id) {
		return false
	}
	r.Release(id)
	r.holders[idx] = id
	return true
}

// Release frees any zone held by id.
func (r *ZoneRegistry) Release(id components.CharacterID) {
	for i, h := range r.holders {
		if h == id {
			r.holders[i] = components.NoCharacter
		}
	}
}

// ZoneChoice is the result of zone selection.
type ZoneChoice struct {
	Zone   int
	Shared bool // every preferred zone was taken; holding the first one unregistered
}

// ZoneSolver places off-ball attackers in zones and nudges them toward open
// pass lanes.
type ZoneSolver struct {
	cfg   config.TacticsConfig
	zones *Zones
	risk  *RiskAnalyzer
}

// NewZoneSolver creates the zone positioning solver.
func NewZoneSolver(cfg *config.Config, zones *Zones, risk *RiskAnalyzer) *ZoneSolver {
	return &ZoneSolver{cfg: cfg.Tactics, zones: zones, risk: risk}
}

// Zones returns the zone table.
func (s *ZoneSolver) Zones() *Zones { return s.zones }

// occupied reports whether a teammate other than self stands on the zone.
func (s *ZoneSolver) occupied(f *components.Field, self *components.Character, idx int, characters []components.Character) bool {
	anchor := s.zones.Anchor(f, self.Team, idx)
	for i := range characters {
		c := &characters[i]
		if c.ID == self.ID || c.Team != self.Team {
			continue
		}
		if FlatDistance(c.Position, anchor) <= s.cfg.OccupancyRadius {
			return true
		}
	}
	return false
}

// SelectZone claims the highest-priority free zone for self. When every
// preferred zone is taken it falls back to the first preference without
// registering it. ok is false when the role has no zone preferences.
func (s *ZoneSolver) SelectZone(reg *ZoneRegistry, f *components.Field, self *components.Character, characters []components.Character) (ZoneChoice, bool) {
	prio := s.zones.Priorities(self.Role)
	if len(prio) == 0 {
		return ZoneChoice{Zone: NoZone}, false
	}
	for _, idx := range prio {
		if !reg.Available(idx, self.ID) || s.occupied(f, self, idx, characters) {
			continue
		}
		if reg.Claim(idx, self.ID) {
			return ZoneChoice{Zone: idx}, true
		}
	}
	reg.Release(self.ID)
	return ZoneChoice{Zone: prio[0], Shared: true}, true
}

// Candidates returns the zone center followed by eight points around it.
func (s *ZoneSolver) Candidates(center r3.Vec) []r3.Vec {
	out := make([]r3.Vec, 0, 9)
	out = append(out, center)
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		out = append(out, r3.Add(center, r3.Scale(s.cfg.CandidateRadius, ForwardVector(a))))
	}
	return out
}

// valid rejects candidates off the court or crowding a teammate.
func (s *ZoneSolver) valid(f *components.Field, self *components.Character, p r3.Vec, characters []components.Character) bool {
	if !f.InBounds(p) {
		return false
	}
	for i := range characters {
		c := &characters[i]
		if c.ID == self.ID || c.Team != self.Team {
			continue
		}
		if FlatDistance(c.Position, p) < s.cfg.MinTeammateDistance {
			return false
		}
	}
	return true
}

// laneRisk scores the best pass from the holder to p.
func (s *ZoneSolver) laneRisk(holder *components.Character, p r3.Vec, characters []components.Character) float64 {
	_, risk, ok := s.risk.BestPassRisk(holder.Position, p, characters, holder.Team)
	if !ok {
		return 1
	}
	return risk.Probability
}

// Reposition re-samples the spot around a zone center. It moves to the
// lowest-risk valid candidate when that beats the current spot by the
// minimum improvement, otherwise occasionally drifts laterally. It returns the
// new target and whether it changed.
func (s *ZoneSolver) Reposition(f *components.Field, self *components.Character, current, center r3.Vec, holder *components.Character, characters []components.Character, rng Rand) (r3.Vec, bool) {
	if holder == nil {
		return current, false
	}
	cands := s.Candidates(center)
	scores := make([]float64, len(cands))
	for i, p := range cands {
		if !s.valid(f, self, p, characters) {
			scores[i] = math.Inf(1)
			continue
		}
		scores[i] = s.laneRisk(holder, p, characters)
	}
	best := floats.MinIdx(scores)
	if !math.IsInf(scores[best], 1) {
		currentRisk := s.laneRisk(holder, current, characters)
		if currentRisk-scores[best] >= s.cfg.MinImprovement && FlatDistance(cands[best], current) > Epsilon {
			return cands[best], true
		}
	}

	if rng == nil || rng.Float64() >= s.cfg.DriftChance {
		return current, false
	}
	// Lateral drift: the candidates across the floor from the center.
	lateral := make([]r3.Vec, 0, 2)
	for _, p := range cands[1:] {
		if math.Abs(p.X-center.X) < Epsilon && s.valid(f, self, p, characters) {
			lateral = append(lateral, p)
		}
	}
	if len(lateral) == 0 {
		return current, false
	}
	p := lateral[rng.IntN(len(lateral))]
	return p, FlatDistance(p, current) > Epsilon
}
