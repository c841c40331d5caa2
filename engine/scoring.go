/*
scoring.go - Gross and net point derivation

PURPOSE:
  Gross points measure total recognition earned and drive leveling; they
  only ever grow. Net points are the spendable balance: gross minus the
  cost of every redemption that was not explicitly rejected. A rejected
  redemption is logically a refund - its cost is simply excluded from the
  spent sum on the next recompute.

TOTALITY:
  NetPoints never fails. A redemption referencing a reward absent from the
  catalog contributes a cost of 0; this is a silent degrade flagged as a
  data-integrity concern, not an error. The redemption guard never relies
  on this lookup - it validates against the current reward definition.
*/
package engine

// Rules holds the scoring constants of the platform.
type Rules struct {
	// PointsPerRecognition is granted for every recognition received.
	PointsPerRecognition int
	// BadgeThreshold is the number of same-principle recognitions that
	// earns a badge.
	BadgeThreshold int
}

// DefaultRules are the production constants.
func DefaultRules() Rules {
	return Rules{PointsPerRecognition: 100, BadgeThreshold: 3}
}

// GrossPoints derives total earned points from the count of recognitions
// received plus the historical carry-over. receivedCount comes from the
// length of a filtered event list and is therefore non-negative; negative
// historical points are permitted (a carried debt) and the result is not
// floored - callers floor for display if desired.
func (r Rules) GrossPoints(receivedCount, historicalPoints int) int {
	return receivedCount*r.PointsPerRecognition + historicalPoints
}

// SpentPoints sums the cost of every non-rejected redemption. Costs are
// resolved against the given catalog; an unknown reward reference
// contributes 0.
func SpentPoints(redemptions []RedemptionRecord, rewards []RewardDefinition) int {
	costs := make(map[RewardID]int, len(rewards))
	for _, rw := range rewards {
		costs[rw.ID] = rw.PointCost
	}

	spent := 0
	for _, rd := range redemptions {
		if rd.Status.IsRejected() {
			continue
		}
		spent += costs[rd.RewardID]
	}
	return spent
}

// NetPoints is the spendable balance: gross minus spent. It may come out
// negative if externally-entered historical data is inconsistent; the
// engine does not self-heal that, it only prevents causing it (guard.go).
func NetPoints(gross int, redemptions []RedemptionRecord, rewards []RewardDefinition) int {
	return gross - SpentPoints(redemptions, rewards)
}
