/*
progress.go - Progress toward the next level

PURPOSE:
  Computes how far along a user is between their current level threshold
  and the next one. Percentage arithmetic uses decimal division so the
  reported value is exact at the displayed precision.

EDGE CASES:
  - At the top of the ladder: 100%, 0 needed, name "Máximo"
  - Equal consecutive thresholds cannot occur in a validated table, but
    the division is still guarded and reports 100%
  - PointsNeeded is clamped to >= 0: a concurrent recompute can leave the
    total past the next threshold for one read
*/
package engine

import "github.com/shopspring/decimal"

// MaxLevelName is the sentinel next-level name once the ladder is topped.
const MaxLevelName = "Máximo"

// Progress describes standing between two level thresholds.
type Progress struct {
	Percentage    float64 // in [0, 100]
	PointsNeeded  int     // points still missing to the next level, >= 0
	NextLevelName string
}

// ProgressToNext resolves the current level for the given gross total and
// measures progress toward the following one.
func (t *LevelTable) ProgressToNext(points int) Progress {
	current := t.LevelFor(points)
	next, ok := t.NextLevelAfter(current.Level)
	if !ok {
		return Progress{Percentage: 100, PointsNeeded: 0, NextLevelName: MaxLevelName}
	}

	span := next.RequiredPoints - current.RequiredPoints
	if span <= 0 {
		return Progress{Percentage: 100, PointsNeeded: 0, NextLevelName: next.Name}
	}

	pct := decimal.NewFromInt(int64(points - current.RequiredPoints)).
		Div(decimal.NewFromInt(int64(span))).
		Mul(decimal.NewFromInt(100))
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}

	needed := next.RequiredPoints - points
	if needed < 0 {
		needed = 0
	}

	f, _ := pct.Round(2).Float64()
	return Progress{Percentage: f, PointsNeeded: needed, NextLevelName: next.Name}
}
