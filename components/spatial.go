package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents an entity's world position. Y is up.
type Position struct {
	r3.Vec
}

// Velocity represents an entity's velocity in m/s.
type Velocity struct {
	r3.Vec
}

// Rotation represents an entity's facing.
type Rotation struct {
	Facing float64 // radians, 0 faces +Z
}
