package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/hoops/components"
)

const header = "name,team,role,speed,defense,steal,reflexes,quickness,passing,shooting,offense,weight,height,alignment\n"

// TestDefaultRoster checks the built-in lineup is complete and ordered.
func TestDefaultRoster(t *testing.T) {
	r := Default()
	require.Len(t, r.Entries, 2*PlayersPerTeam)
	for i, e := range r.Entries {
		assert.Equal(t, components.CharacterID(i), e.ID)
		wantTeam := components.TeamAlly
		if i >= PlayersPerTeam {
			wantTeam = components.TeamEnemy
		}
		assert.Equal(t, wantTeam, e.Team)
		assert.Equal(t, components.PositionRole(i%PlayersPerTeam), e.Role)
	}
	assert.Len(t, r.Team(components.TeamEnemy), PlayersPerTeam)
}

// TestLoadFromFile reads a file with rows out of order.
func TestLoadFromFile(t *testing.T) {
	rows := strings.Split(strings.TrimSpace(string(defaultCSV)), "\n")[1:]
	// reverse so IDs must come from team and role, not file order
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+strings.Join(rows, "\n")+"\n"), 0644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Entries, r.Entries)
}

// TestLoadMissingFile checks the error mentions the cause.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestValidation verifies bad rows are all reported at once.
func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{
			name: "ratings out of range",
			csv: "A,ally,PG,101,50,50,50,50,50,50,50,90,1.9,50\n" +
				"B,ally,SG,50,-1,50,50,50,50,50,50,90,1.9,50\n",
			want: []string{"line 2", "speed 101.0", "line 3", "defense -1.0"},
		},
		{
			name: "body out of range",
			csv:  "A,ally,PG,50,50,50,50,50,50,50,50,200,2.5,50\n",
			want: []string{"weight 200.0", "height 2.50"},
		},
		{
			name: "unknown team and role",
			csv: "A,home,PG,50,50,50,50,50,50,50,50,90,1.9,50\n" +
				"B,ally,G,50,50,50,50,50,50,50,50,90,1.9,50\n",
			want: []string{`unknown team "home"`, `unknown position role "G"`},
		},
		{
			name: "duplicate role",
			csv: "A,ally,PG,50,50,50,50,50,50,50,50,90,1.9,50\n" +
				"B,ally,PG,50,50,50,50,50,50,50,50,90,1.9,50\n",
			want: []string{"line 3", "ally PG already taken by A"},
		},
		{
			name: "short team",
			csv:  "A,ally,PG,50,50,50,50,50,50,50,50,90,1.9,50\n",
			want: []string{"team ally has 1 players", "team enemy has 0 players"},
		},
		{
			name: "row error and short team",
			csv: "A,ally,PG,50,50,50,50,50,50,50,50,90,1.9,50\n" +
				"B,ally,SG,50,-1,50,50,50,50,50,50,90,1.9,50\n",
			want: []string{"line 3", "defense -1.0", "team ally has 1 players", "team enemy has 0 players"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(header + tt.csv))
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}
