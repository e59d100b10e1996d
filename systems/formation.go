package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// Formation set names.
const (
	FormationOffense = "offense"
	FormationDefense = "defense"
	FormationThrowIn = "throw_in"
)

// FormationSlot is a grid cell assigned to a role.
type FormationSlot struct {
	Col, Row int
}

// Formations maps roles to grid cells for each named set. The grid covers
// the half court from the rim out to the configured depth.
type Formations struct {
	cols, rows int
	depth      float64
	sets       map[string][components.NumRoles]*FormationSlot
}

// NewFormations builds formation sets from configuration. Slots naming an
// unknown role or a cell outside the grid are ignored.
func NewFormations(cfg *config.Config) *Formations {
	fc := cfg.Tactics.Formation
	f := &Formations{
		cols:  max(fc.Cols, 1),
		rows:  max(fc.Rows, 1),
		depth: fc.Depth,
		sets:  make(map[string][components.NumRoles]*FormationSlot, len(fc.Sets)),
	}
	for name, slots := range fc.Sets {
		var set [components.NumRoles]*FormationSlot
		for _, s := range slots {
			role, err := components.ParseRole(s.Role)
			if err != nil || s.Col < 0 || s.Col >= f.cols || s.Row < 0 || s.Row >= f.rows {
				continue
			}
			set[role] = &FormationSlot{Col: s.Col, Row: s.Row}
		}
		f.sets[name] = set
	}
	return f
}

// Slot returns the cell for a role in a set.
func (f *Formations) Slot(set string, role components.PositionRole) (FormationSlot, bool) {
	s, ok := f.sets[set]
	if !ok || s[role] == nil {
		return FormationSlot{}, false
	}
	return *s[role], true
}

// cellOffset converts a cell into rim-relative depth and lateral offsets.
// Column 0 is on the left as seen from the rim looking up court.
func (f *Formations) cellOffset(field *components.Field, s FormationSlot) (depth, lateral float64) {
	depth = (float64(s.Row) + 0.5) / float64(f.rows) * f.depth
	half := field.Width/2 - 1
	lateral = half * (1 - 2*(float64(s.Col)+0.5)/float64(f.cols))
	return depth, lateral
}

// AttackPoint returns the world spot for a role measured from the team's
// attacking rim.
func (f *Formations) AttackPoint(field *components.Field, t components.Team, set string, role components.PositionRole) (r3.Vec, bool) {
	s, ok := f.Slot(set, role)
	if !ok {
		return r3.Vec{}, false
	}
	d, l := f.cellOffset(field, s)
	return field.Clamp(field.AttackPoint(t, d, l), 0.3), true
}

// DefensePoint returns the world spot for a role measured from the team's
// own rim.
func (f *Formations) DefensePoint(field *components.Field, t components.Team, set string, role components.PositionRole) (r3.Vec, bool) {
	s, ok := f.Slot(set, role)
	if !ok {
		return r3.Vec{}, false
	}
	d, l := f.cellOffset(field, s)
	return field.Clamp(field.DefensePoint(t, d, l), 0.3), true
}
