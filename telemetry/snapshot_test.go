package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hoops/components"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	holder := components.Character{
		ID:       3,
		Name:     "Bautista",
		Team:     components.TeamAlly,
		Role:     components.RolePF,
		State:    components.StateOnBallOffense,
		Position: r3.Vec{X: 4, Z: -2},
		Velocity: r3.Vec{X: 1.5},
		Facing:   0.7,
		HasBall:  true,
		Action:   &components.Action{Type: components.ActionShootMidrange, Phase: components.PhaseStartup},
	}
	ball := components.NewBall(r3.Vec{X: 4, Y: 1.2, Z: -2})
	ball.HolderID = 3

	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   42,
		Tick:      1000,
		Phase:     "live",
		GameClock: 412.5,
		ShotClock: 11,
		Score:     Score{Ally: 20, Enemy: 18},
		Players:   []PlayerState{NewPlayerState(&holder)},
		Ball:      NewBallState(&ball),
		Bookmark: &Bookmark{
			Type:        BookmarkLeadChange,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "snapshot_1000_lead_change.json"), path)

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)

	p := loaded.Players[0]
	assert.Equal(t, "PF", p.Role)
	assert.Equal(t, string(components.ActionShootMidrange), p.Action)
	assert.Equal(t, components.CharacterID(3), loaded.Ball.Holder)
}

func TestSnapshotFilenameWithoutBookmark(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 500}, tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "snapshot_500.json", filepath.Base(path))
}

func TestLoadSnapshotErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadSnapshot(filepath.Join(tmpDir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadSnapshot(bad)
	assert.Error(t, err)

	old := filepath.Join(tmpDir, "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`{"version": 0}`), 0644))
	_, err = LoadSnapshot(old)
	assert.ErrorContains(t, err, "snapshot version 0")
}
