/*
levels.go - Static level ladder and level resolution

PURPOSE:
  Maps a gross point total to a level. Leveling uses gross points, never
  net: spending points on redemptions must not demote a user.

INVARIANTS:
  - The ladder starts at level 0 with 0 required points, so every point
    total (including negative inputs) resolves to some level
  - Levels and thresholds strictly increase; a ladder violating this is a
    configuration error rejected at construction, not tolerated per call
*/
package engine

import "fmt"

// LevelEntry is one rung of the ladder.
type LevelEntry struct {
	Level          int
	Name           string
	RequiredPoints int
}

// LevelTable is an immutable, validated level ladder.
type LevelTable struct {
	entries []LevelEntry
}

// NewLevelTable validates and builds a ladder. The table must be non-empty,
// start at level 0 / 0 points, and strictly increase in both level and
// required points. Fail fast at startup on violation.
func NewLevelTable(entries []LevelEntry) (*LevelTable, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyLevelTable
	}
	if entries[0].Level != 0 || entries[0].RequiredPoints != 0 {
		return nil, fmt.Errorf("%w: first entry must be level 0 at 0 points, got level %d at %d",
			ErrLevelTableNotMonotonic, entries[0].Level, entries[0].RequiredPoints)
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Level <= prev.Level || cur.RequiredPoints <= prev.RequiredPoints {
			return nil, fmt.Errorf("%w: entry %d (level %d, %d points) does not increase over (level %d, %d points)",
				ErrLevelTableNotMonotonic, i, cur.Level, cur.RequiredPoints, prev.Level, prev.RequiredPoints)
		}
	}
	out := make([]LevelEntry, len(entries))
	copy(out, entries)
	return &LevelTable{entries: out}, nil
}

// MustLevelTable is NewLevelTable for static tables known to be valid.
func MustLevelTable(entries []LevelEntry) *LevelTable {
	t, err := NewLevelTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns a copy of the ladder in ascending order.
func (t *LevelTable) Entries() []LevelEntry {
	out := make([]LevelEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Max returns the highest defined level.
func (t *LevelTable) Max() LevelEntry {
	return t.entries[len(t.entries)-1]
}

// LevelFor returns the highest entry whose required points do not exceed
// the given gross total. Negative totals resolve to level 0.
func (t *LevelTable) LevelFor(points int) LevelEntry {
	current := t.entries[0]
	for _, e := range t.entries {
		if points >= e.RequiredPoints {
			current = e
		} else {
			break
		}
	}
	return current
}

// NextLevelAfter returns the entry with level+1, or false if the given
// level is the top of the ladder (or beyond it).
func (t *LevelTable) NextLevelAfter(level int) (LevelEntry, bool) {
	for _, e := range t.entries {
		if e.Level == level+1 {
			return e, true
		}
	}
	return LevelEntry{}, false
}

// DefaultLevels is the production ladder. Thresholds are in points, at 100
// points per recognition received.
func DefaultLevels() []LevelEntry {
	return []LevelEntry{
		{Level: 0, Name: "Novato", RequiredPoints: 0},
		{Level: 1, Name: "Aprendiz", RequiredPoints: 200},
		{Level: 2, Name: "Participante", RequiredPoints: 400},
		{Level: 3, Name: "Contribuidor", RequiredPoints: 600},
		{Level: 4, Name: "Mentor", RequiredPoints: 800},
		{Level: 5, Name: "Líder", RequiredPoints: 1000},
		{Level: 6, Name: "Leyenda", RequiredPoints: 1200},
	}
}
