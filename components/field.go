package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/config"
)

// Goal is one basket.
type Goal struct {
	Rim       r3.Vec // rim center
	Backboard r3.Vec // backboard center
	Direction float64 // +1 when this goal sits at +X
}

// Floor returns the rim center projected onto the floor.
func (g Goal) Floor() r3.Vec {
	return r3.Vec{X: g.Rim.X, Z: g.Rim.Z}
}

// Field is read-only court geometry. Ally attacks the +X basket.
type Field struct {
	Length           float64
	Width            float64
	ThreePointRadius float64
	PaintLength      float64
	PaintWidth       float64
	CenterRadius     float64
	Goals            [2]Goal // indexed by attacking team
}

// NewField builds court geometry from configuration.
func NewField(c config.CourtConfig) Field {
	half := c.Length / 2
	rimX := half - c.RimOffset
	boardX := half - c.BackboardOffset
	return Field{
		Length:           c.Length,
		Width:            c.Width,
		ThreePointRadius: c.ThreePointRadius,
		PaintLength:      c.PaintLength,
		PaintWidth:       c.PaintWidth,
		CenterRadius:     c.CenterCircleRadius,
		Goals: [2]Goal{
			TeamAlly: {
				Rim:       r3.Vec{X: rimX, Y: c.RimHeight},
				Backboard: r3.Vec{X: boardX, Y: c.RimHeight + 0.3},
				Direction: 1,
			},
			TeamEnemy: {
				Rim:       r3.Vec{X: -rimX, Y: c.RimHeight},
				Backboard: r3.Vec{X: -boardX, Y: c.RimHeight + 0.3},
				Direction: -1,
			},
		},
	}
}

// AttackingGoal returns the basket the team scores on.
func (f *Field) AttackingGoal(t Team) Goal {
	return f.Goals[t]
}

// DefendingGoal returns the basket the team protects.
func (f *Field) DefendingGoal(t Team) Goal {
	return f.Goals[t.Opponent()]
}

// InBounds reports whether a floor point lies inside the court lines.
func (f *Field) InBounds(p r3.Vec) bool {
	return math.Abs(p.X) <= f.Length/2 && math.Abs(p.Z) <= f.Width/2
}

// Clamp pulls a floor point inside the court with a margin.
func (f *Field) Clamp(p r3.Vec, margin float64) r3.Vec {
	hx := f.Length/2 - margin
	hz := f.Width/2 - margin
	p.X = math.Max(-hx, math.Min(hx, p.X))
	p.Z = math.Max(-hz, math.Min(hz, p.Z))
	p.Y = 0
	return p
}

// InPaint reports whether a floor point is inside the team's attacking key.
func (f *Field) InPaint(t Team, p r3.Vec) bool {
	g := f.AttackingGoal(t)
	baseline := g.Direction * f.Length / 2
	depth := (baseline - p.X) * g.Direction
	return depth >= 0 && depth <= f.PaintLength && math.Abs(p.Z) <= f.PaintWidth/2
}

// BeyondArc reports whether a floor point is behind the team's three-point line.
func (f *Field) BeyondArc(t Team, p r3.Vec) bool {
	g := f.AttackingGoal(t)
	dx := p.X - g.Rim.X
	dz := p.Z - g.Rim.Z
	return math.Hypot(dx, dz) >= f.ThreePointRadius
}

// AttackPoint converts attack-relative coordinates into a world floor point.
// Depth runs from the team's attacking rim toward midcourt; lateral is
// mirrored with the attack direction.
func (f *Field) AttackPoint(t Team, depth, lateral float64) r3.Vec {
	g := f.AttackingGoal(t)
	return r3.Vec{X: g.Rim.X - g.Direction*depth, Z: g.Direction * lateral}
}

// DefensePoint converts coordinates relative to the team's own rim.
func (f *Field) DefensePoint(t Team, depth, lateral float64) r3.Vec {
	return f.AttackPoint(t.Opponent(), depth, lateral)
}
