// Package roster loads and validates the ten players of a match.
package roster

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/hoops/components"
)

//go:embed default.csv
var defaultCSV []byte

// PlayersPerTeam is the lineup size.
const PlayersPerTeam = 5

// Row is one CSV record.
type Row struct {
	Name      string  `csv:"name"`
	Team      string  `csv:"team"`
	Role      string  `csv:"role"`
	Speed     float64 `csv:"speed"`
	Defense   float64 `csv:"defense"`
	Steal     float64 `csv:"steal"`
	Reflexes  float64 `csv:"reflexes"`
	Quickness float64 `csv:"quickness"`
	Passing   float64 `csv:"passing"`
	Shooting  float64 `csv:"shooting"`
	Offense   float64 `csv:"offense"`
	Weight    float64 `csv:"weight"`
	Height    float64 `csv:"height"`
	Alignment float64 `csv:"alignment"`
}

// Entry is a validated player.
type Entry struct {
	ID    components.CharacterID
	Name  string
	Team  components.Team
	Role  components.PositionRole
	Stats components.Stats
}

// Roster is a full match lineup ordered by ID: ally PG..C as 0..4, enemy PG..C
// as 5..9.
type Roster struct {
	Entries []Entry
}

// Team returns the entries of one side in role order.
func (r *Roster) Team(t components.Team) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Team == t {
			out = append(out, e)
		}
	}
	return out
}

// Default returns the built-in roster.
func Default() *Roster {
	r, err := Parse(bytes.NewReader(defaultCSV))
	if err != nil {
		panic(fmt.Sprintf("roster: invalid built-in roster: %v", err))
	}
	return r
}

// Load reads a roster file. An empty path returns the built-in roster.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a roster CSV. Every bad row is reported.
func Parse(in io.Reader) (*Roster, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("parsing roster csv: %w", err)
	}
	return FromRows(rows)
}

// FromRows validates decoded rows and assigns IDs.
func FromRows(rows []*Row) (*Roster, error) {
	var errs []error
	entries := make([]Entry, 0, len(rows))
	seen := make(map[components.Team]map[components.PositionRole]string)

	for i, row := range rows {
		line := i + 2 // header is line 1
		e, err := row.entry()
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if seen[e.Team] == nil {
			seen[e.Team] = make(map[components.PositionRole]string)
		}
		if prev, dup := seen[e.Team][e.Role]; dup {
			errs = append(errs, fmt.Errorf("line %d: %s %s already taken by %s", line, e.Team, e.Role, prev))
			continue
		}
		seen[e.Team][e.Role] = e.Name
		entries = append(entries, e)
	}
	for _, t := range []components.Team{components.TeamAlly, components.TeamEnemy} {
		if n := len(seen[t]); n != PlayersPerTeam {
			errs = append(errs, fmt.Errorf("team %s has %d players, want %d", t, n, PlayersPerTeam))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Team != entries[j].Team {
			return entries[i].Team < entries[j].Team
		}
		return entries[i].Role < entries[j].Role
	})
	for i := range entries {
		entries[i].ID = components.CharacterID(i)
	}
	return &Roster{Entries: entries}, nil
}

func (row *Row) entry() (Entry, error) {
	team, err := components.ParseTeam(row.Team)
	if err != nil {
		return Entry{}, err
	}
	role, err := components.ParseRole(row.Role)
	if err != nil {
		return Entry{}, err
	}
	if row.Name == "" {
		return Entry{}, errors.New("missing name")
	}

	ratings := []struct {
		name string
		v    float64
	}{
		{"speed", row.Speed}, {"defense", row.Defense}, {"steal", row.Steal},
		{"reflexes", row.Reflexes}, {"quickness", row.Quickness}, {"passing", row.Passing},
		{"shooting", row.Shooting}, {"offense", row.Offense}, {"alignment", row.Alignment},
	}
	var errs []error
	for _, r := range ratings {
		if r.v < 0 || r.v > 100 {
			errs = append(errs, fmt.Errorf("%s: %s %.1f outside 0..100", row.Name, r.name, r.v))
		}
	}
	if row.Weight < 50 || row.Weight > 160 {
		errs = append(errs, fmt.Errorf("%s: weight %.1f kg outside 50..160", row.Name, row.Weight))
	}
	if row.Height < 1.6 || row.Height > 2.3 {
		errs = append(errs, fmt.Errorf("%s: height %.2f m outside 1.6..2.3", row.Name, row.Height))
	}
	if err := errors.Join(errs...); err != nil {
		return Entry{}, err
	}

	return Entry{
		Name: row.Name,
		Team: team,
		Role: role,
		Stats: components.Stats{
			Speed:     row.Speed,
			Defense:   row.Defense,
			Steal:     row.Steal,
			Reflexes:  row.Reflexes,
			Quickness: row.Quickness,
			Passing:   row.Passing,
			Shooting:  row.Shooting,
			Offense:   row.Offense,
			Alignment: row.Alignment,
			Weight:    row.Weight,
			Height:    row.Height,
		},
	}, nil
}
