// Package systems provides the movement, pass-lane and positioning systems
// shared by every player.
package systems

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

// Neighbor holds a nearby character with precomputed spatial data.
type Neighbor struct {
	Index int     // index into the queried character slice
	Delta r3.Vec  // floor-plane offset from the query origin
	Dist  float64 // floor-plane distance
}

// TeamFilter selects which characters a query considers.
type TeamFilter uint8

const (
	AnyTeam TeamFilter = iota
	SameTeam
	OtherTeam
)

func (f TeamFilter) match(team, other components.Team) bool {
	switch f {
	case SameTeam:
		return team == other
	case OtherTeam:
		return team != other
	}
	return true
}

// QueryRadiusInto appends characters within radius of origin to dst, nearest
// first. Characters are filtered relative to team; exclude is skipped.
func QueryRadiusInto(dst []Neighbor, characters []components.Character, origin r3.Vec, radius float64, team components.Team, filter TeamFilter, exclude components.CharacterID) []Neighbor {
	start := len(dst)
	for i := range characters {
		c := &characters[i]
		if c.ID == exclude || !filter.match(team, c.Team) {
			continue
		}
		delta := Flat(r3.Sub(c.Position, origin))
		dist := r3.Norm(delta)
		if dist <= radius {
			dst = append(dst, Neighbor{Index: i, Delta: delta, Dist: dist})
		}
	}
	found := dst[start:]
	sort.SliceStable(found, func(a, b int) bool { return found[a].Dist < found[b].Dist })
	return dst
}

// Nearest returns the closest matching character to origin.
// ok is false when nothing matches.
func Nearest(characters []components.Character, origin r3.Vec, team components.Team, filter TeamFilter, exclude components.CharacterID) (Neighbor, bool) {
	best := Neighbor{Index: -1, Dist: math.Inf(1)}
	for i := range characters {
		c := &characters[i]
		if c.ID == exclude || !filter.match(team, c.Team) {
			continue
		}
		delta := Flat(r3.Sub(c.Position, origin))
		if d := r3.Norm(delta); d < best.Dist {
			best = Neighbor{Index: i, Delta: delta, Dist: d}
		}
	}
	return best, best.Index >= 0
}

// DefenderInPath returns the opponent closest to the carrier that stands in
// a corridor along the path from the carrier toward target, within
// lookahead meters. ok is false when the lane is clear or the path is
// degenerate.
func DefenderInPath(characters []components.Character, carrier *components.Character, target r3.Vec, corridor, lookahead float64) (Neighbor, bool) {
	dir, ok := Direction(carrier.Position, target)
	if !ok {
		return Neighbor{Index: -1}, false
	}
	length := math.Min(lookahead, FlatDistance(carrier.Position, target))
	end := r3.Add(Flat(carrier.Position), r3.Scale(length, dir))

	best := Neighbor{Index: -1, Dist: math.Inf(1)}
	for i := range characters {
		c := &characters[i]
		if c.Team == carrier.Team {
			continue
		}
		closest, t := ClosestPointOnSegment(Flat(c.Position), Flat(carrier.Position), end)
		if t <= 0 {
			continue
		}
		if FlatDistance(closest, c.Position) > corridor {
			continue
		}
		delta := Flat(r3.Sub(c.Position, carrier.Position))
		if d := r3.Norm(delta); d < best.Dist {
			best = Neighbor{Index: i, Delta: delta, Dist: d}
		}
	}
	return best, best.Index >= 0
}

// FindCharacter returns the character with the given ID.
func FindCharacter(characters []components.Character, id components.CharacterID) (*components.Character, bool) {
	if id == components.NoCharacter {
		return nil, false
	}
	for i := range characters {
		if characters[i].ID == id {
			return &characters[i], true
		}
	}
	return nil, false
}
