package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresa/recognition-engine/engine"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(
		engine.MustLevelTable(engine.DefaultLevels()),
		engine.DefaultRules(),
		engine.DefaultBadges(),
	)
}

func snapshotFixture() engine.Snapshot {
	at := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	return engine.Snapshot{
		Users: []engine.User{
			{ID: "ana", Name: "Ana", Status: engine.UserActive, Role: engine.RoleContributor, HistoricalPoints: 250},
			{ID: "beto", Name: "Beto", Status: engine.UserActive, Role: engine.RoleGranter},
			{ID: "carla", Name: "Carla", Status: engine.UserInactive, Role: engine.RoleContributor, HistoricalPoints: 9000},
			{ID: "root", Name: "Root", Status: engine.UserActive, Role: engine.RoleAdmin, HistoricalPoints: 9000},
		},
		Recognitions: []engine.RecognitionEvent{
			{ID: "r-1", GiverID: "beto", ReceiverID: "ana", Principle: "Innovación", Timestamp: at},
			{ID: "r-2", GiverID: "beto", ReceiverID: "ana", Principle: "Innovación", Timestamp: at.Add(time.Hour)},
			{ID: "r-3", GiverID: "beto", ReceiverID: "ana", Principle: "Foco en el Cliente", Timestamp: at.Add(2 * time.Hour)},
			{ID: "r-4", GiverID: "ana", ReceiverID: "beto", Principle: "Innovación", Timestamp: at.Add(3 * time.Hour)},
		},
		Rewards: []engine.RewardDefinition{
			{ID: "rw-1", Name: "Tarjeta de Regalo", PointCost: 150, InitialStock: 5},
		},
		Redemptions: []engine.RedemptionRecord{
			{ID: "c-1", UserID: "ana", RewardID: "rw-1", Status: engine.StatusApproved, Timestamp: at},
			{ID: "c-2", UserID: "ana", RewardID: "rw-1", Status: engine.StatusRejected, Timestamp: at},
		},
	}
}

// =============================================================================
// SUMMARIZE
// =============================================================================

func TestSummarize_DerivesEverythingFromTheLog(t *testing.T) {
	// GIVEN: Ana with 250 carried points, 3 recognitions received, one
	// approved and one rejected redemption of cost 150
	// THEN: gross 550, spent 150, net 400, level "Participante"

	s, err := testEngine(t).Summarize(snapshotFixture(), "ana")
	require.NoError(t, err)

	assert.Equal(t, 3, s.ReceivedCount)
	assert.Equal(t, 550, s.GrossPoints)
	assert.Equal(t, 150, s.SpentPoints)
	assert.Equal(t, 400, s.NetPoints)
	assert.Equal(t, "Participante", s.Level.Name)
	assert.Equal(t, "Contribuidor", s.Progress.NextLevelName)
	assert.Equal(t, 50, s.Progress.PointsNeeded)
	assert.Len(t, s.BadgesEarned, len(engine.DefaultBadges()))
}

func TestSummarize_UnknownUser(t *testing.T) {
	_, err := testEngine(t).Summarize(snapshotFixture(), "ghost")
	assert.ErrorIs(t, err, engine.ErrUserNotFound)
}

// =============================================================================
// LEADERBOARD
// =============================================================================

func TestLeaderboard_ExcludesAdminsAndInactive(t *testing.T) {
	// Carla (inactive) and Root (admin) would both outrank everyone on raw
	// points; neither may appear.

	board := testEngine(t).Leaderboard(snapshotFixture(), 10)
	require.Len(t, board, 2)
	assert.Equal(t, engine.UserID("ana"), board[0].UserID)
	assert.Equal(t, 550, board[0].Points)
	assert.Equal(t, engine.UserID("beto"), board[1].UserID)
	assert.Equal(t, 100, board[1].Points)
}

func TestLeaderboard_TiesBreakByName(t *testing.T) {
	snap := engine.Snapshot{
		Users: []engine.User{
			{ID: "z", Name: "Zoe", Status: engine.UserActive, Role: engine.RoleContributor, HistoricalPoints: 100},
			{ID: "a", Name: "Abel", Status: engine.UserActive, Role: engine.RoleContributor, HistoricalPoints: 100},
		},
	}

	board := testEngine(t).Leaderboard(snap, 0)
	require.Len(t, board, 2)
	assert.Equal(t, "Abel", board[0].Name)
	assert.Equal(t, "Zoe", board[1].Name)
}

func TestLeaderboard_LimitCaps(t *testing.T) {
	board := testEngine(t).Leaderboard(snapshotFixture(), 1)
	require.Len(t, board, 1)
	assert.Equal(t, engine.UserID("ana"), board[0].UserID)
}

// =============================================================================
// PRINCIPLE DISTRIBUTION
// =============================================================================

func TestPrincipleCounts_MostFrequentFirst(t *testing.T) {
	counts := engine.PrincipleCounts(snapshotFixture().Recognitions)
	require.Len(t, counts, 2)
	assert.Equal(t, engine.PrincipleCount{Principle: "Innovación", Count: 3}, counts[0])
	assert.Equal(t, engine.PrincipleCount{Principle: "Foco en el Cliente", Count: 1}, counts[1])
}

func TestPrincipleCounts_Empty(t *testing.T) {
	assert.Empty(t, engine.PrincipleCounts(nil))
}
