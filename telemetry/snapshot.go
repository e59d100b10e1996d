package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/hoops/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the match state at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed uint64 `json:"rng_seed"`

	Tick      int32   `json:"tick"`
	Phase     string  `json:"phase"`
	GameClock float64 `json:"game_clock"`
	ShotClock float64 `json:"shot_clock"`
	Score     Score   `json:"score"`

	Players []PlayerState `json:"players"`
	Ball    BallState     `json:"ball"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// PlayerState holds one player's state.
type PlayerState struct {
	ID    components.CharacterID `json:"id"`
	Name  string                 `json:"name"`
	Team  string                 `json:"team"`
	Role  string                 `json:"role"`
	State string                 `json:"state"`

	// Position and movement
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	VelX   float64 `json:"vel_x"`
	VelZ   float64 `json:"vel_z"`
	Facing float64 `json:"facing"`

	HasBall bool    `json:"has_ball"`
	Action  string  `json:"action,omitempty"`
	Phase   string  `json:"action_phase,omitempty"`
	Biting  float64 `json:"biting,omitempty"`
}

// BallState holds the ball's state.
type BallState struct {
	X        float64                `json:"x"`
	Y        float64                `json:"y"`
	Z        float64                `json:"z"`
	Holder   components.CharacterID `json:"holder"`
	InFlight bool                   `json:"in_flight"`
}

// NewPlayerState captures a character.
func NewPlayerState(c *components.Character) PlayerState {
	ps := PlayerState{
		ID:      c.ID,
		Name:    c.Name,
		Team:    c.Team.String(),
		Role:    c.Role.String(),
		State:   c.State.String(),
		X:       c.Position.X,
		Z:       c.Position.Z,
		VelX:    c.Velocity.X,
		VelZ:    c.Velocity.Z,
		Facing:  c.Facing,
		HasBall: c.HasBall,
		Biting:  c.Biting,
	}
	if c.Action != nil {
		ps.Action = string(c.Action.Type)
		ps.Phase = c.Action.Phase.String()
	}
	return ps
}

// NewBallState captures the ball.
func NewBallState(b *components.Ball) BallState {
	return BallState{
		X:        b.Position.X,
		Y:        b.Position.Y,
		Z:        b.Position.Z,
		Holder:   b.HolderID,
		InFlight: b.InFlight,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
