package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
)

// averageStats is a mid-rated player.
var averageStats = components.Stats{
	Speed: 50, Defense: 50, Steal: 50, Reflexes: 50, Quickness: 50,
	Passing: 50, Shooting: 50, Offense: 50, Alignment: 50, Weight: 90, Height: 1.95,
}

func testConfig() *config.Config {
	config.MustInit("")
	return config.Cfg()
}

func testField(cfg *config.Config) *components.Field {
	f := components.NewField(cfg.Court)
	return &f
}

func newChar(id int, team components.Team, role components.PositionRole, x, z float64) components.Character {
	return components.Character{
		ID:       components.CharacterID(id),
		Team:     team,
		Role:     role,
		Position: r3.Vec{X: x, Z: z},
		Stats:    averageStats,
		Body:     components.BodyFromStats(averageStats, 90),
	}
}
