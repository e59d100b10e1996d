package components

// Stats are roster ratings. Ratings are 0..100; Weight is kg and Height is m.
type Stats struct {
	Speed     float64 `csv:"speed"`
	Defense   float64 `csv:"defense"`
	Steal     float64 `csv:"steal"`
	Reflexes  float64 `csv:"reflexes"`
	Quickness float64 `csv:"quickness"`
	Passing   float64 `csv:"passing"`
	Shooting  float64 `csv:"shooting"`
	Offense   float64 `csv:"offense"`
	Alignment float64 `csv:"alignment"` // Positional discipline; drives re-evaluation cadence
	Weight    float64 `csv:"weight"`
	Height    float64 `csv:"height"`
}

// Rating returns a 0..100 rating as a 0..1 fraction.
func Rating(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 100 {
		return 1
	}
	return v / 100
}

// Player bundles identity and behavior role.
type Player struct {
	ID      CharacterID
	Name    string
	Team    Team
	Role    PositionRole
	State   BehaviorState
	HasBall bool
}

// Body holds physical properties derived from stats.
type Body struct {
	Mass       float64 // kg
	FootRadius float64 // contact circle radius in m
	Height     float64
}

// BodyFromStats derives physical properties for a player.
// Heavier players get a wider contact circle.
func BodyFromStats(s Stats, defaultMass float64) Body {
	mass := s.Weight
	if mass <= 0 {
		mass = defaultMass
	}
	height := s.Height
	if height <= 0 {
		height = 1.95
	}
	radius := 0.4 + (mass-70)/400
	if radius < 0.35 {
		radius = 0.35
	}
	if radius > 0.6 {
		radius = 0.6
	}
	return Body{Mass: mass, FootRadius: radius, Height: height}
}
