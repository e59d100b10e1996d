package behavior

import (
	"sort"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/systems"
)

// LooseBall runs the scramble for a free ball. The fastest one or two
// players per team chase it; the rest box out near a rim or get back.
type LooseBall struct {
	base

	chasing bool
}

// NewLooseBall creates the loose ball state.
func NewLooseBall(deps *Deps) *LooseBall {
	return &LooseBall{base: base{deps: deps}}
}

func (a *LooseBall) State() components.BehaviorState { return components.StateLooseBall }

// Chasing reports whether the player went for the ball on the last update.
func (a *LooseBall) Chasing() bool { return a.chasing }

func (a *LooseBall) reset() {
	*a = LooseBall{base: a.base}
}

func (a *LooseBall) OnEnter(*Frame) { a.reset() }
func (a *LooseBall) OnExit(*Frame)  { a.reset() }

func (a *LooseBall) Update(f *Frame, dt float64) {
	self := f.Self
	ball := systems.Flat(f.World.Ball.Position)

	a.chasing = a.shouldChase(f)
	if a.chasing {
		a.deps.Mover.FaceTowards(self, ball, dt)
		a.moveTo(f, ball, systems.SpeedSprint, dt)
		return
	}

	lb := a.deps.Config.AI.LooseBall
	if g, ok := nearRim(a.deps.Field, ball, lb.ReboundRadius); ok {
		rim := g.Floor()
		n, ok := systems.Nearest(f.World.Characters, self.Position, self.Team, systems.OtherTeam, self.ID)
		if ok && n.Dist <= a.deps.Config.AI.Defense.BoxOutRadius*2 {
			a.moveTo(f, boxOutSpot(&f.World.Characters[n.Index], rim), systems.SpeedRun, dt)
		} else {
			a.moveTo(f, rim, systems.SpeedRun, dt)
		}
		a.faceBall(f, dt)
		return
	}

	depth := lb.RetreatFraction[self.Role.String()] * a.deps.Field.Length / 2
	target := a.deps.Field.DefensePoint(self.Team, depth, 0)
	if p, ok := a.deps.Formations.DefensePoint(a.deps.Field, self.Team, systems.FormationDefense, self.Role); ok {
		target.Z = p.Z
	}
	a.moveTo(f, target, classFor(systems.FlatDistance(self.Position, target)), dt)
	a.faceBall(f, dt)
}

// shouldChase ranks teammates by estimated time to the ball. The first
// always chases; later ranks chase while within the second chaser window of
// the leader, up to the configured maximum.
func (a *LooseBall) shouldChase(f *Frame) bool {
	lb := a.deps.Config.AI.LooseBall
	self := f.Self
	ball := f.World.Ball.Position

	type eta struct {
		id components.CharacterID
		t  float64
	}
	etas := make([]eta, 0, components.NumRoles)
	for i := range f.World.Characters {
		c := &f.World.Characters[i]
		if c.Team != self.Team {
			continue
		}
		etas = append(etas, eta{id: c.ID, t: timeToReach(a.deps.Mover, c, ball)})
	}
	sort.Slice(etas, func(i, j int) bool {
		if etas[i].t != etas[j].t {
			return etas[i].t < etas[j].t
		}
		return etas[i].id < etas[j].id
	})

	for rank, e := range etas {
		if rank >= lb.MaxChasers {
			return false
		}
		if rank > 0 && e.t-etas[0].t > lb.SecondChaserWindow {
			return false
		}
		if e.id == self.ID {
			return true
		}
	}
	return false
}
