package behavior

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/systems"
)

const testDT = 1.0 / 60

var averageStats = components.Stats{
	Speed: 50, Defense: 50, Steal: 50, Reflexes: 50, Quickness: 50,
	Passing: 50, Shooting: 50, Offense: 50, Alignment: 50, Weight: 90, Height: 1.95,
}

// fakeActions records every request. Nothing is accepted unless listed in
// accept or acceptAll is set.
type fakeActions struct {
	acceptAll bool
	accept    map[components.ActionType]bool
	deny      bool // every CanX returns false
	shot      ShotRange
	requests  []ActionRequest
}

func (f *fakeActions) StartAction(c *components.Character, req ActionRequest) ActionResult {
	f.requests = append(f.requests, req)
	if f.acceptAll || f.accept[req.Type] {
		return ActionResult{Success: true}
	}
	return ActionResult{Message: "rejected"}
}

func (f *fakeActions) CanShoot(*components.Character) bool { return !f.deny }
func (f *fakeActions) CanPass(*components.Character) bool { return !f.deny }
func (f *fakeActions) CanFeint(*components.Character) bool { return !f.deny }
func (f *fakeActions) CanSteal(*components.Character) bool { return !f.deny }
func (f *fakeActions) CanBlock(*components.Character) bool { return !f.deny }
func (f *fakeActions) ShootRangeInfo(*components.Character) ShotRange { return f.shot }

func (f *fakeActions) types() []components.ActionType {
	out := make([]components.ActionType, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Type
	}
	return out
}

func testConfig() *config.Config {
	config.MustInit("")
	return config.Cfg()
}

// configCopy returns a shallow copy of the defaults that tests may tweak
// without touching the shared instance. Maps must be replaced, not edited.
func configCopy() *config.Config {
	c := *testConfig()
	return &c
}

func newTestDeps(cfg *config.Config, actions ActionController, seed uint64) *Deps {
	field := components.NewField(cfg.Court)
	return NewDeps(cfg, &field, actions, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
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

// newWorld wraps characters in a live world. When holder is a valid ID the
// ball is in that character's hands.
func newWorld(deps *Deps, holder components.CharacterID, chars ...components.Character) *World {
	w := &World{
		Characters: chars,
		Ball:       components.NewBall(r3.Vec{Y: 1}),
		Field:      deps.Field,
		OnBallID:   components.NoCharacter,
		ShotClock:  deps.Config.Match.ShotClock,
		Script:     NoScript(),
	}
	zones := deps.Zones.Zones()
	w.Zones = [2]*systems.ZoneRegistry{systems.NewZoneRegistry(zones), systems.NewZoneRegistry(zones)}
	if c, ok := w.Character(holder); ok {
		c.HasBall = true
		w.Ball.HolderID = holder
		w.Ball.Position = c.Position
		w.Ball.LastTouch = c.Team
		w.OnBallID = holder
	}
	return w
}

// fullLineup returns ten players: ally 0-4 on the left half, enemy 5-9
// between them and the +X rim.
func fullLineup() []components.Character {
	return []components.Character{
		newChar(0, components.TeamAlly, components.RolePG, -2, 0),
		newChar(1, components.TeamAlly, components.RoleSG, -3, -4),
		newChar(2, components.TeamAlly, components.RoleSF, -3, 4),
		newChar(3, components.TeamAlly, components.RolePF, -5, -2),
		newChar(4, components.TeamAlly, components.RoleC, -5, 2),
		newChar(5, components.TeamEnemy, components.RolePG, 1, 0),
		newChar(6, components.TeamEnemy, components.RoleSG, 2, -4),
		newChar(7, components.TeamEnemy, components.RoleSF, 2, 4),
		newChar(8, components.TeamEnemy, components.RolePF, 5, -2),
		newChar(9, components.TeamEnemy, components.RoleC, 5, 2),
	}
}

// frameFor copies character id out of the world snapshot.
func frameFor(w *World, id components.CharacterID) *Frame {
	c, _ := w.Character(id)
	self := *c
	return &Frame{Self: &self, World: w}
}

// recordingTracer keeps every state change.
type recordingTracer struct {
	NopTracer
	changes []components.BehaviorState
}

func (r *recordingTracer) StateChanged(_ components.CharacterID, _, to components.BehaviorState) {
	r.changes = append(r.changes, to)
}

func ptr[T any](v T) *T { return &v }
