// Package config provides configuration loading and access for the match simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Match     MatchConfig     `yaml:"match"`
	Court     CourtConfig     `yaml:"court"`
	Movement  MovementConfig  `yaml:"movement"`
	Passes    PassesConfig    `yaml:"passes"`
	Risk      RiskConfig      `yaml:"risk"`
	Tactics   TacticsConfig   `yaml:"tactics"`
	AI        AIConfig        `yaml:"ai"`
	Actions   ActionsConfig   `yaml:"actions"`
	Ball      BallConfig      `yaml:"ball"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// MatchConfig holds clock and flow parameters.
type MatchConfig struct {
	DT                float64 `yaml:"dt"`                  // Seconds per tick
	GameLength        float64 `yaml:"game_length"`         // Game clock in seconds
	ShotClock         float64 `yaml:"shot_clock"`          // Seconds per possession
	ShotClockUrgency  float64 `yaml:"shot_clock_urgency"`  // Remaining time that forces shoot-first
	JumpBallTossDelay float64 `yaml:"jump_ball_toss_delay"` // Seconds before the referee tosses
	ThrowInDelay      float64 `yaml:"throw_in_delay"`      // Seconds before the inbound may be released
	ThrowInTimeout    float64 `yaml:"throw_in_timeout"`    // Inbound violation time
}

// CourtConfig holds court dimensions in meters.
type CourtConfig struct {
	Length             float64 `yaml:"length"`
	Width              float64 `yaml:"width"`
	RimOffset          float64 `yaml:"rim_offset"` // Rim center distance from baseline
	RimHeight          float64 `yaml:"rim_height"`
	BackboardOffset    float64 `yaml:"backboard_offset"`
	PaintLength        float64 `yaml:"paint_length"`
	PaintWidth         float64 `yaml:"paint_width"`
	ThreePointRadius   float64 `yaml:"three_point_radius"`
	CenterCircleRadius float64 `yaml:"center_circle_radius"`
}

// SpeedClassConfig describes one locomotion gear.
type SpeedClassConfig struct {
	CapFactor float64 `yaml:"cap_factor"` // Fraction of the player's top speed
	Force     float64 `yaml:"force"`      // Driving force in newtons
}

// MovementConfig holds the locomotion integrator parameters.
type MovementConfig struct {
	Gravity              float64                     `yaml:"gravity"`
	Friction             float64                     `yaml:"friction"`     // Floor friction coefficient
	StopEpsilon          float64                     `yaml:"stop_epsilon"` // Speeds below this snap to zero
	BaseMaxSpeed         float64                     `yaml:"base_max_speed"`
	MinSpeedStatFactor   float64                     `yaml:"min_speed_stat_factor"` // Top speed fraction at speed stat 0
	ForwardAngle         float64                     `yaml:"forward_angle"`         // Degrees
	BackwardAngle        float64                     `yaml:"backward_angle"`        // Degrees
	ForwardMultiplier    float64                     `yaml:"forward_multiplier"`
	LateralMultiplier    float64                     `yaml:"lateral_multiplier"`
	BackwardMultiplier   float64                     `yaml:"backward_multiplier"`
	ChangeDirectionBonus float64                     `yaml:"change_direction_bonus"`
	DribbleFactor        float64                     `yaml:"dribble_factor"`      // Cap multiplier while holding the ball
	ActionFactor         float64                     `yaml:"action_factor"`       // Cap multiplier during startup/active
	BreakthroughFactor   float64                     `yaml:"breakthrough_factor"` // Cap multiplier during a dribble breakthrough
	BitingFactor         float64                     `yaml:"biting_factor"`       // Cap multiplier while biting on a feint
	TurnRate             float64                     `yaml:"turn_rate"`           // Radians per second
	ArrivalRadius        float64                     `yaml:"arrival_radius"`
	SlowRadius           float64                     `yaml:"slow_radius"`
	DefaultMass          float64                     `yaml:"default_mass"`
	Classes              map[string]SpeedClassConfig `yaml:"classes"`
}

// PassTypeConfig holds per-pass-style parameters.
type PassTypeConfig struct {
	MinRange  float64 `yaml:"min_range"`
	MaxRange  float64 `yaml:"max_range"`
	Speed     float64 `yaml:"speed"`      // Horizontal ball speed m/s
	ArcHeight float64 `yaml:"arc_height"` // Peak height above the straight release-catch line
	Action    string  `yaml:"action"`     // Action controller name
}

// PassesConfig holds passing parameters.
type PassesConfig struct {
	ReleaseHeight float64                   `yaml:"release_height"`
	CatchHeight   float64                   `yaml:"catch_height"`
	SampleCount   int                       `yaml:"sample_count"`
	ConeAngle     float64                   `yaml:"cone_angle"` // Degrees either side of facing
	Order         []string                  `yaml:"order"`      // Evaluation order of pass types
	Types         map[string]PassTypeConfig `yaml:"types"`
}

// RiskConfig holds interception model parameters.
type RiskConfig struct {
	ReactionMin       float64 `yaml:"reaction_min"` // Reaction delay at perfect reflexes
	ReactionMax       float64 `yaml:"reaction_max"` // Reaction delay at zero reflexes
	InterceptRadius   float64 `yaml:"intercept_radius"`
	ReachFactor       float64 `yaml:"reach_factor"` // Standing reach = height * factor
	JumpReach         float64 `yaml:"jump_reach"`
	Window            float64 `yaml:"window"` // Seconds of slack mapped onto 0..1
	DefenderSpeedFrac float64 `yaml:"defender_speed_frac"`
	StealStatWeight   float64 `yaml:"steal_stat_weight"`
	SafeThreshold     float64 `yaml:"safe_threshold"`
	DangerThreshold   float64 `yaml:"danger_threshold"`
}

// ZoneConfig describes a tactical zone in attack-relative coordinates.
// Depth is measured from the attacking rim toward midcourt. Both axes are
// mirrored for the team attacking the -X basket.
type ZoneConfig struct {
	Name    string  `yaml:"name"`
	Depth   float64 `yaml:"depth"`
	Lateral float64 `yaml:"lateral"`
	Pair    string  `yaml:"pair"`
}

// HandlerWeights weighs the handler positioning score terms.
type HandlerWeights struct {
	Risk    float64 `yaml:"risk"`
	Behind  float64 `yaml:"behind"`
	Travel  float64 `yaml:"travel"`
	Overlap float64 `yaml:"overlap"`
}

// HandlerConfig holds ball-handler support positioning parameters.
type HandlerConfig struct {
	MainRadius      float64        `yaml:"main_radius"`
	SecondRadius    float64        `yaml:"second_radius"`
	AngleStep       float64        `yaml:"angle_step"` // Degrees between samples
	OverlapDistance float64        `yaml:"overlap_distance"`
	Weights         HandlerWeights `yaml:"weights"`
}

// FormationSlotConfig assigns a role to a formation grid cell.
type FormationSlotConfig struct {
	Role string `yaml:"role"`
	Col  int    `yaml:"col"`
	Row  int    `yaml:"row"`
}

// FormationConfig holds formation grid layout.
type FormationConfig struct {
	Cols  int                              `yaml:"cols"`
	Rows  int                              `yaml:"rows"`
	Depth float64                          `yaml:"depth"` // Depth covered by the grid from the rim
	Sets  map[string][]FormationSlotConfig `yaml:"sets"`
}

// TacticsConfig holds zone and formation solver parameters.
type TacticsConfig struct {
	Zones               []ZoneConfig        `yaml:"zones"`
	Priorities          map[string][]string `yaml:"priorities"`
	CandidateRadius     float64             `yaml:"candidate_radius"`
	MinImprovement      float64             `yaml:"min_improvement"`
	DriftChance         float64             `yaml:"drift_chance"`
	MinTeammateDistance float64             `yaml:"min_teammate_distance"`
	OccupancyRadius     float64             `yaml:"occupancy_radius"`
	DecisionIntervalMin float64             `yaml:"decision_interval_min"`
	DecisionIntervalMax float64             `yaml:"decision_interval_max"`
	RoleIntervalScale   map[string]float64  `yaml:"role_interval_scale"`
	Handlers            HandlerConfig       `yaml:"handlers"`
	Formation           FormationConfig     `yaml:"formation"`
}

// SurveyConfig holds the post-catch look-around timings.
type SurveyConfig struct {
	LookLeft  float64 `yaml:"look_left"`
	LookRight float64 `yaml:"look_right"`
	FaceGoal  float64 `yaml:"face_goal"`
	LookAngle float64 `yaml:"look_angle"` // Degrees
	MaxTotal  float64 `yaml:"max_total"`
}

// AggressionConfig holds per-role 1-on-1 selection weights.
type AggressionConfig struct {
	Pass     float64 `yaml:"pass"`
	Feint    float64 `yaml:"feint"`
	Drive    float64 `yaml:"drive"`
	Shoot    float64 `yaml:"shoot"`
	OpenShot float64 `yaml:"open_shot"` // Probability of taking an open in-range shot
	OpenPass float64 `yaml:"open_pass"` // Probability of moving the ball when a safe pass exists
}

// OffenseConfig holds on-ball offense parameters.
type OffenseConfig struct {
	DecisionInterval    float64                     `yaml:"decision_interval"`
	OneOnOneInterval    float64                     `yaml:"one_on_one_interval"`
	OffenseCircleRadius float64                     `yaml:"offense_circle_radius"`
	PathCorridor        float64                     `yaml:"path_corridor"`
	PathLookahead       float64                     `yaml:"path_lookahead"`
	PaintFinishDistance float64                     `yaml:"paint_finish_distance"`
	OpenDefenderDist    float64                     `yaml:"open_defender_distance"`
	BeatenDistance      float64                     `yaml:"beaten_distance"`
	IdleThreshold       float64                     `yaml:"idle_threshold"`
	IdleMoveEpsilon     float64                     `yaml:"idle_move_epsilon"`
	Aggression          map[string]AggressionConfig `yaml:"aggression"`
}

// DefenseConfig holds on-ball and off-ball defense parameters.
type DefenseConfig struct {
	StealInterval         float64 `yaml:"steal_interval"`
	StealProbability      float64 `yaml:"steal_probability"`
	BlockRange            float64 `yaml:"block_range"`
	BlockTrialProbability float64 `yaml:"block_trial_probability"`
	ContactHysteresis     float64 `yaml:"contact_hysteresis"`
	ConcedeRate           float64 `yaml:"concede_rate"`
	DenyGap               float64 `yaml:"deny_gap"`
	SagGap                float64 `yaml:"sag_gap"`
	SagDistance           float64 `yaml:"sag_distance"`
	InterceptReach        float64 `yaml:"intercept_reach"`
	BoxOutRadius          float64 `yaml:"box_out_radius"`
}

// LooseBallConfig holds scramble parameters.
type LooseBallConfig struct {
	MaxChasers         int                `yaml:"max_chasers"`
	SecondChaserWindow float64            `yaml:"second_chaser_window"`
	ReboundRadius      float64            `yaml:"rebound_radius"`
	RetreatFraction    map[string]float64 `yaml:"retreat_fraction"`
}

// ScriptConfig holds jump-ball and throw-in script parameters.
type ScriptConfig struct {
	CircleSlotRadius float64 `yaml:"circle_slot_radius"`
	TipHeight        float64 `yaml:"tip_height"` // Ball height at which jumpers attempt the tip
	ReceiverDistance float64 `yaml:"receiver_distance"`
}

// AIConfig holds behavior engine parameters.
type AIConfig struct {
	Survey    SurveyConfig    `yaml:"survey"`
	Offense   OffenseConfig   `yaml:"offense"`
	Defense   DefenseConfig   `yaml:"defense"`
	LooseBall LooseBallConfig `yaml:"loose_ball"`
	Scripts   ScriptConfig    `yaml:"scripts"`
}

// ActionTiming holds phase durations for one action.
type ActionTiming struct {
	Startup  float64 `yaml:"startup"`
	Active   float64 `yaml:"active"`
	Recovery float64 `yaml:"recovery"`
	Cooldown float64 `yaml:"cooldown"`
}

// ShotConfig holds shot classification and make probabilities.
type ShotConfig struct {
	LayupRange     float64            `yaml:"layup_range"`
	DunkRange      float64            `yaml:"dunk_range"`
	DunkHeight     float64            `yaml:"dunk_height"`
	MaxRange       float64            `yaml:"max_range"`
	BaseMake       map[string]float64 `yaml:"base_make"`
	ContestRadius  float64            `yaml:"contest_radius"`
	ContestPenalty float64            `yaml:"contest_penalty"`
	FlightTime     float64            `yaml:"flight_time"`
}

// ActionsConfig holds action controller parameters.
type ActionsConfig struct {
	Timings           map[string]ActionTiming `yaml:"timings"`
	Shots             ShotConfig              `yaml:"shots"`
	StealReach        float64                 `yaml:"steal_reach"`
	StealBase         float64                 `yaml:"steal_base"`
	BlockBase         float64                 `yaml:"block_base"`
	FeintRadius       float64                 `yaml:"feint_radius"`
	FeintBiteDuration float64                 `yaml:"feint_bite_duration"`
}

// BallConfig holds ball physics parameters.
type BallConfig struct {
	Radius          float64 `yaml:"radius"`
	Restitution     float64 `yaml:"restitution"`
	RollingFriction float64 `yaml:"rolling_friction"`
	PickupReach     float64 `yaml:"pickup_reach"`
	PickupHeight    float64 `yaml:"pickup_height"`
	HoldOffset      float64 `yaml:"hold_offset"`
	HoldHeight      float64 `yaml:"hold_height"`
	RimBounceSpeed  float64 `yaml:"rim_bounce_speed"`
	TossSpeed       float64 `yaml:"toss_speed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ForwardAngleRad  float64        // Movement.ForwardAngle in radians
	BackwardAngleRad float64        // Movement.BackwardAngle in radians
	PassConeRad      float64        // Passes.ConeAngle in radians
	LookAngleRad     float64        // AI.Survey.LookAngle in radians
	SurveyDuration   float64        // Sum of the scripted survey phases
	ZoneIndex        map[string]int // zone name -> index in Tactics.Zones
	HalfLength       float64
	HalfWidth        float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.Match.DT <= 0 {
		return fmt.Errorf("match.dt must be positive, got %v", c.Match.DT)
	}
	if c.Passes.SampleCount < 1 {
		return fmt.Errorf("passes.sample_count must be at least 1, got %d", c.Passes.SampleCount)
	}
	for name, pt := range c.Passes.Types {
		if pt.Speed <= 0 {
			return fmt.Errorf("passes.types.%s.speed must be positive", name)
		}
		if pt.MaxRange < pt.MinRange {
			return fmt.Errorf("passes.types.%s: max_range below min_range", name)
		}
	}
	for _, name := range c.Passes.Order {
		if _, ok := c.Passes.Types[name]; !ok {
			return fmt.Errorf("passes.order references unknown pass type %q", name)
		}
	}
	names := make(map[string]bool, len(c.Tactics.Zones))
	for _, z := range c.Tactics.Zones {
		if names[z.Name] {
			return fmt.Errorf("tactics.zones: duplicate zone %q", z.Name)
		}
		names[z.Name] = true
	}
	for _, z := range c.Tactics.Zones {
		if z.Pair != "" && !names[z.Pair] {
			return fmt.Errorf("tactics.zones: zone %q pairs with unknown zone %q", z.Name, z.Pair)
		}
	}
	for role, list := range c.Tactics.Priorities {
		for _, zone := range list {
			if !names[zone] {
				return fmt.Errorf("tactics.priorities.%s references unknown zone %q", role, zone)
			}
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	const degToRad = math.Pi / 180
	c.Derived.ForwardAngleRad = c.Movement.ForwardAngle * degToRad
	c.Derived.BackwardAngleRad = c.Movement.BackwardAngle * degToRad
	c.Derived.PassConeRad = c.Passes.ConeAngle * degToRad
	c.Derived.LookAngleRad = c.AI.Survey.LookAngle * degToRad
	c.Derived.SurveyDuration = c.AI.Survey.LookLeft + c.AI.Survey.LookRight + c.AI.Survey.FaceGoal
	c.Derived.HalfLength = c.Court.Length / 2
	c.Derived.HalfWidth = c.Court.Width / 2

	if c.Movement.DefaultMass == 0 {
		c.Movement.DefaultMass = 90
	}

	c.Derived.ZoneIndex = make(map[string]int, len(c.Tactics.Zones))
	for i, z := range c.Tactics.Zones {
		c.Derived.ZoneIndex[z.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
