/*
inventory.go - Per-reward available stock

PURPOSE:
  Available stock is derived from the entire redemption log on every read:
  initial stock minus the count of non-rejected redemptions for the
  reward, floored at zero. Recomputing from the full log keeps the number
  consistent even when redemptions are approved or rejected out of band.
*/
package engine

// RedeemedCounts counts non-rejected redemptions grouped by reward.
func RedeemedCounts(redemptions []RedemptionRecord) map[RewardID]int {
	counts := make(map[RewardID]int)
	for _, r := range redemptions {
		if r.Status.IsRejected() {
			continue
		}
		if r.RewardID != "" {
			counts[r.RewardID]++
		}
	}
	return counts
}

// AvailableStock derives remaining stock for one reward from the full
// redemption log. Floored at 0: over-redeemed historical data reads as
// exhausted, not negative.
func AvailableStock(reward RewardDefinition, redemptions []RedemptionRecord) int {
	remaining := reward.InitialStock - RedeemedCounts(redemptions)[reward.ID]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RewardAvailability pairs a catalog entry with its derived stock.
type RewardAvailability struct {
	RewardDefinition
	Available int
}

// RewardsWithStock derives availability for the whole catalog in one pass
// over the redemption log.
func RewardsWithStock(rewards []RewardDefinition, redemptions []RedemptionRecord) []RewardAvailability {
	counts := RedeemedCounts(redemptions)
	out := make([]RewardAvailability, 0, len(rewards))
	for _, rw := range rewards {
		remaining := rw.InitialStock - counts[rw.ID]
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, RewardAvailability{RewardDefinition: rw, Available: remaining})
	}
	return out
}
