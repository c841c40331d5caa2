package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cresa/recognition-engine/engine"
)

func TestAvailableStock_CountsNonRejected(t *testing.T) {
	reward := engine.RewardDefinition{ID: "rw-1", InitialStock: 5}
	redemptions := []engine.RedemptionRecord{
		{ID: "c-1", RewardID: "rw-1", Status: engine.StatusApproved},
		{ID: "c-2", RewardID: "rw-1", Status: engine.StatusPending},
		{ID: "c-3", RewardID: "rw-1", Status: engine.StatusRejected}, // refunded unit
		{ID: "c-4", RewardID: "rw-2", Status: engine.StatusApproved}, // other reward
	}

	assert.Equal(t, 3, engine.AvailableStock(reward, redemptions))
}

func TestAvailableStock_Conservation(t *testing.T) {
	// available + non-rejected count == initial stock, while not over-redeemed.
	reward := engine.RewardDefinition{ID: "rw-1", InitialStock: 4}

	var redemptions []engine.RedemptionRecord
	for i := 0; i < 4; i++ {
		redemptions = append(redemptions, engine.RedemptionRecord{
			ID: engine.RedemptionID(string(rune('a' + i))), RewardID: "rw-1", Status: engine.StatusPending,
		})
		nonRejected := engine.RedeemedCounts(redemptions)["rw-1"]
		assert.Equal(t, reward.InitialStock, engine.AvailableStock(reward, redemptions)+nonRejected)
	}
}

func TestAvailableStock_FlooredAtZero(t *testing.T) {
	// Over-redeemed historical data reads as exhausted, never negative.
	reward := engine.RewardDefinition{ID: "rw-1", InitialStock: 1}
	redemptions := []engine.RedemptionRecord{
		{ID: "c-1", RewardID: "rw-1", Status: engine.StatusApproved},
		{ID: "c-2", RewardID: "rw-1", Status: engine.StatusApproved},
		{ID: "c-3", RewardID: "rw-1", Status: engine.StatusUnspecified},
	}

	assert.Equal(t, 0, engine.AvailableStock(reward, redemptions))
}

func TestRewardsWithStock_WholeCatalog(t *testing.T) {
	rewards := []engine.RewardDefinition{
		{ID: "rw-1", InitialStock: 2},
		{ID: "rw-2", InitialStock: 1},
		{ID: "rw-3", InitialStock: 0},
	}
	redemptions := []engine.RedemptionRecord{
		{ID: "c-1", RewardID: "rw-1", Status: engine.StatusApproved},
		{ID: "c-2", RewardID: "rw-2", Status: engine.RedemptionStatus("rechazado")},
	}

	got := engine.RewardsWithStock(rewards, redemptions)
	assert.Equal(t, 1, got[0].Available)
	assert.Equal(t, 1, got[1].Available, "rejected redemption returns the unit")
	assert.Equal(t, 0, got[2].Available)
}
