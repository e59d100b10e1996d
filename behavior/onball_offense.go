package behavior

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/pthm-cable/hoops/components"
	"github.com/pthm-cable/hoops/config"
	"github.com/pthm-cable/hoops/systems"
)

// OffenseSubState is the ball handler's current mode.
type OffenseSubState uint8

const (
	SubSurvey OffenseSubState = iota
	SubNone
	SubOneOnOne
	SubBeaten
	SubDrive
)

func (s OffenseSubState) String() string {
	switch s {
	case SubSurvey:
		return "survey"
	case SubOneOnOne:
		return "one_on_one"
	case SubBeaten:
		return "beaten"
	case SubDrive:
		return "drive"
	}
	return "none"
}

// 1-on-1 options in aggression table order.
const (
	optPass = iota
	optFeint
	optDrive
	optShoot
	numOptions
)

// OnBallOffense drives the ball handler: a short survey after the catch,
// then shot, pass and drive decisions.
type OnBallOffense struct {
	base

	sub          OffenseSubState
	surveyStep   int
	surveyTimer  float64
	surveyTotal  float64
	surveyFacing float64

	decisionTimer float64
	oneOnOneTimer float64

	idleTimer    float64
	idleAnchor   r3.Vec
	idleAnchored bool

	driveTarget r3.Vec

	asked []components.ActionType // action types requested this tick
}

// NewOnBallOffense creates the ball handler state.
func NewOnBallOffense(deps *Deps) *OnBallOffense {
	return &OnBallOffense{base: base{deps: deps}}
}

func (a *OnBallOffense) State() components.BehaviorState { return components.StateOnBallOffense }

// SubState returns the current mode.
func (a *OnBallOffense) SubState() OffenseSubState { return a.sub }

// IdleTime returns how long the handler has stood still.
func (a *OnBallOffense) IdleTime() float64 { return a.idleTimer }

func (a *OnBallOffense) reset() {
	*a = OnBallOffense{base: a.base}
}

func (a *OnBallOffense) OnEnter(f *Frame) {
	a.reset()
	a.surveyFacing = f.Self.Facing
	if angle, ok := systems.FacingTowards(f.Self.Position, a.attackRim(f.Self)); ok {
		a.surveyFacing = angle
	}
}

func (a *OnBallOffense) OnExit(*Frame) {
	a.reset()
}

// ContactDistance is the center distance at which the handler is in a 1-on-1
// with defender d.
func (a *OnBallOffense) ContactDistance(d *components.Character) float64 {
	return d.Body.FootRadius + a.deps.Config.AI.Offense.OffenseCircleRadius
}

func (a *OnBallOffense) Update(f *Frame, dt float64) {
	if dt < 0 {
		dt = 0
	}
	a.asked = a.asked[:0]
	if a.sub == SubSurvey && a.updateSurvey(f, dt) {
		return
	}

	cfg := a.deps.Config
	off := cfg.AI.Offense
	self := f.Self
	chars := f.World.Characters
	rim := a.attackRim(self)

	a.trackIdle(self, dt)
	if self.Busy() {
		a.continueAction(f, dt)
		return
	}
	if a.idleTimer >= off.IdleThreshold {
		a.forceAction(f)
		a.idleTimer = 0
		a.idleAnchor = self.Position
		a.deps.Mover.ApplyFriction(self, dt)
		return
	}

	a.decisionTimer -= dt
	decide := a.decisionTimer <= 0
	if decide {
		a.decisionTimer = off.DecisionInterval
	}

	if f.World.ShotClock <= cfg.Match.ShotClockUrgency {
		a.sub = SubDrive
		if a.tryShoot(f, true) || a.tryPass(f, cfg.Risk.DangerThreshold) {
			return
		}
		a.driveTo(f, rim, systems.SpeedSprint, dt)
		return
	}

	if systems.FlatDistance(self.Position, rim) <= off.PaintFinishDistance && a.tryShoot(f, false) {
		return
	}

	if n, ok := systems.DefenderInPath(chars, self, rim, off.PathCorridor, off.PathLookahead); ok {
		d := &chars[n.Index]
		if n.Dist <= a.ContactDistance(d) {
			if a.sub != SubOneOnOne {
				a.sub = SubOneOnOne
				a.oneOnOneTimer = 0
			}
			a.oneOnOne(f, d, dt)
			return
		}
		a.sub = SubDrive
		if decide && a.deps.Rand.Float64() < a.aggression(self).OpenPass && a.tryPass(f, cfg.Risk.SafeThreshold) {
			return
		}
		a.driveTo(f, rim, systems.SpeedRun, dt)
		return
	}

	if n, ok := systems.Nearest(chars, self.Position, self.Team, systems.OtherTeam, self.ID); ok && n.Dist <= off.BeatenDistance {
		if toRim, ok := systems.Direction(self.Position, rim); ok && r3.Dot(n.Delta, toRim) < 0 {
			a.sub = SubBeaten
			info := a.deps.Actions.ShootRangeInfo(self)
			if info.InRange && (info.Type == components.ActionShootLayup || info.Type == components.ActionShootDunk) && a.tryShoot(f, false) {
				return
			}
			a.driveTo(f, rim, systems.SpeedSprint, dt)
			return
		}
	}

	a.sub = SubNone
	if decide && a.openDecision(f) {
		return
	}
	a.driveTo(f, rim, systems.SpeedRun, dt)
}

// updateSurvey plays the look-left, look-right, face-goal sequence. It
// reports true while the survey is still running. The total is bounded by
// the configured maximum no matter how the phase timings are set.
func (a *OnBallOffense) updateSurvey(f *Frame, dt float64) bool {
	s := a.deps.Config.AI.Survey
	look := a.deps.Config.Derived.LookAngleRad

	a.surveyTimer += dt
	a.surveyTotal += dt
	a.deps.Mover.ApplyFriction(f.Self, dt)

	durations := [3]float64{s.LookLeft, s.LookRight, s.FaceGoal}
	for a.surveyStep < len(durations) && a.surveyTimer >= durations[a.surveyStep] {
		a.surveyTimer -= durations[a.surveyStep]
		a.surveyStep++
	}
	if a.surveyStep >= len(durations) || a.surveyTotal >= s.MaxTotal {
		a.finishSurvey(f.Self)
		return false
	}

	angles := [3]float64{a.surveyFacing - look, a.surveyFacing + look, a.surveyFacing}
	a.deps.Mover.TurnTowards(f.Self, angles[a.surveyStep], dt)
	return true
}

func (a *OnBallOffense) finishSurvey(self *components.Character) {
	a.sub = SubNone
	a.surveyStep = 3
	a.idleAnchor = self.Position
	a.idleAnchored = true
	a.idleTimer = 0
}

func (a *OnBallOffense) trackIdle(self *components.Character, dt float64) {
	if !a.idleAnchored {
		a.idleAnchor = self.Position
		a.idleAnchored = true
	}
	if systems.FlatDistance(self.Position, a.idleAnchor) > a.deps.Config.AI.Offense.IdleMoveEpsilon {
		a.idleAnchor = self.Position
		a.idleTimer = 0
		return
	}
	a.idleTimer += dt
}

// forceAction breaks a stall: shot, then pass, then a dribble move.
func (a *OnBallOffense) forceAction(f *Frame) {
	if a.tryShoot(f, true) || a.tryPass(f, 1) {
		return
	}
	a.tryDribble(f, nil)
}

func (a *OnBallOffense) continueAction(f *Frame, dt float64) {
	self := f.Self
	if self.Action.Type == components.ActionDribbleBreakthrough && self.Action.Phase != components.PhaseRecovery {
		dir, ok := systems.Direction(self.Position, a.driveTarget)
		if ok {
			a.deps.Mover.FaceTowards(self, a.driveTarget, dt)
			a.deps.Mover.Drive(self, dir, systems.SpeedSprint, dt)
			return
		}
	}
	a.deps.Mover.Coast(self, systems.SpeedSprint, dt)
}

func (a *OnBallOffense) aggression(c *components.Character) config.AggressionConfig {
	return a.deps.Config.AI.Offense.Aggression[c.Role.String()]
}

// oneOnOne holds the ball against a defender in contact and periodically
// picks a move from the role's aggression table. Rejected moves fall through
// to the next pick; each is asked for at most once.
func (a *OnBallOffense) oneOnOne(f *Frame, d *components.Character, dt float64) {
	self := f.Self
	a.deps.Mover.ApplyFriction(self, dt)
	a.deps.Mover.FaceTowards(self, a.attackRim(self), dt)

	a.oneOnOneTimer -= dt
	if a.oneOnOneTimer > 0 {
		return
	}
	a.oneOnOneTimer = a.deps.Config.AI.Offense.OneOnOneInterval

	agg := a.aggression(self)
	w := make([]float64, numOptions)
	w[optPass], w[optFeint], w[optDrive], w[optShoot] = agg.Pass, agg.Feint, agg.Drive, agg.Shoot
	if !a.deps.Actions.CanPass(self) {
		w[optPass] = 0
	}
	if !a.deps.Actions.CanFeint(self) {
		w[optFeint] = 0
	}
	if !a.deps.Actions.CanShoot(self) {
		w[optShoot] = 0
	}
	for i := range w {
		w[i] = math.Max(w[i], 0)
	}

	sampler := sampleuv.NewWeighted(w, a.deps.Rand)
	for {
		opt, ok := sampler.Take()
		if !ok {
			return
		}
		var done bool
		switch opt {
		case optPass:
			done = a.tryPass(f, a.deps.Config.Risk.DangerThreshold)
		case optFeint:
			done = a.ask(f, ActionRequest{Type: components.ActionFeintShot, TargetID: d.ID, TargetPos: a.attackRim(self)})
		case optDrive:
			done = a.tryDribble(f, d)
		case optShoot:
			done = a.tryShoot(f, false)
		}
		if done {
			return
		}
	}
}

// openDecision runs when nobody blocks the path.
func (a *OnBallOffense) openDecision(f *Frame) bool {
	self := f.Self
	agg := a.aggression(self)
	info := a.deps.Actions.ShootRangeInfo(self)
	n, hasDefender := systems.Nearest(f.World.Characters, self.Position, self.Team, systems.OtherTeam, self.ID)
	open := !hasDefender || n.Dist >= a.deps.Config.AI.Offense.OpenDefenderDist

	if info.InRange && open && a.deps.Rand.Float64() < agg.OpenShot && a.tryShoot(f, false) {
		return true
	}
	if a.deps.Rand.Float64() < agg.OpenPass && a.tryPass(f, a.deps.Config.Risk.SafeThreshold) {
		return true
	}
	return false
}

// ask forwards req unless the same action type was already requested this
// tick. A rejected shot is not asked for again by a later branch.
func (a *OnBallOffense) ask(f *Frame, req ActionRequest) bool {
	if slices.Contains(a.asked, req.Type) {
		return false
	}
	a.asked = append(a.asked, req.Type)
	return a.request(f, req)
}

func (a *OnBallOffense) driveTo(f *Frame, target r3.Vec, class systems.SpeedClass, dt float64) {
	a.deps.Mover.FaceTowards(f.Self, target, dt)
	a.moveTo(f, target, class, dt)
}

// tryShoot asks for the shot the current spot allows. forced shots go up
// even when out of range.
func (a *OnBallOffense) tryShoot(f *Frame, forced bool) bool {
	self := f.Self
	if !a.deps.Actions.CanShoot(self) {
		return false
	}
	info := a.deps.Actions.ShootRangeInfo(self)
	if !info.InRange && !forced {
		return false
	}
	typ := info.Type
	if typ == "" {
		typ = components.ActionShoot3pt
	}
	return a.ask(f, ActionRequest{Type: typ, TargetPos: a.deps.Field.AttackingGoal(self.Team).Rim})
}

// passChoice is the best pass found in the passer's cone.
type passChoice struct {
	receiver *components.Character
	passType systems.PassType
	risk     float64
}

// choosePass scans teammates inside the pass cone and keeps the lowest-risk
// lane. Teammates outside the cone are never considered.
func (a *OnBallOffense) choosePass(f *Frame) (passChoice, bool) {
	self := f.Self
	chars := f.World.Characters
	best := passChoice{risk: math.Inf(1)}
	for i := range chars {
		mate := &chars[i]
		if mate.ID == self.ID || mate.Team != self.Team {
			continue
		}
		if !a.deps.Risk.WithinPassCone(self, mate.Position) {
			continue
		}
		pt, risk, ok := a.deps.Risk.BestPassRisk(self.Position, mate.Position, chars, self.Team)
		if !ok {
			continue
		}
		if risk.Probability < best.risk {
			best = passChoice{receiver: mate, passType: pt, risk: risk.Probability}
		}
	}
	if best.receiver == nil {
		return passChoice{}, false
	}
	a.deps.Tracer.PassEvaluated(self.ID, best.receiver.ID, best.risk)
	return best, true
}

// tryPass throws the best pass whose risk is below maxRisk.
func (a *OnBallOffense) tryPass(f *Frame, maxRisk float64) bool {
	if !a.deps.Actions.CanPass(f.Self) {
		return false
	}
	choice, ok := a.choosePass(f)
	if !ok || (maxRisk < 1 && choice.risk >= maxRisk) {
		return false
	}
	spec, ok := a.deps.Passer.Spec(choice.passType)
	if !ok {
		return false
	}
	return a.ask(f, ActionRequest{
		Type:      components.ActionType(spec.Action),
		TargetID:  choice.receiver.ID,
		TargetPos: choice.receiver.Position,
	})
}

// tryDribble starts a breakthrough toward the rim, angled away from the
// defender when there is one.
func (a *OnBallOffense) tryDribble(f *Frame, d *components.Character) bool {
	self := f.Self
	rim := a.attackRim(self)
	dir, ok := systems.Direction(self.Position, rim)
	if !ok {
		dir = systems.ForwardVector(self.Facing)
	}
	if d != nil {
		right := r3.Vec{X: dir.Z, Z: -dir.X}
		side := 1.0
		if r3.Dot(r3.Sub(d.Position, self.Position), right) > 0 {
			side = -1
		}
		dir = r3.Add(dir, r3.Scale(side, right))
		if u, ok := systems.SafeUnit(dir); ok {
			dir = u
		}
	}
	a.driveTarget = a.deps.Field.Clamp(r3.Add(self.Position, r3.Scale(4, dir)), 0.3)
	return a.ask(f, ActionRequest{Type: components.ActionDribbleBreakthrough, TargetPos: a.driveTarget})
}
