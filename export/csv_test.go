package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresa/recognition-engine/engine"
	"github.com/cresa/recognition-engine/export"
)

func TestWriteResults(t *testing.T) {
	// GIVEN: Ana with 3 recognitions (badge earned) and one approved
	// redemption of cost 150
	// THEN: one header plus one fully derived row per user

	at := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	snap := engine.Snapshot{
		Users: []engine.User{
			{ID: "ana", Name: "Ana", Email: "ana@cresa.mx", Status: engine.UserActive, Role: engine.RoleContributor, HistoricalPoints: 250},
			{ID: "beto", Name: "Beto", Status: engine.UserActive, Role: engine.RoleGranter},
		},
		Recognitions: []engine.RecognitionEvent{
			{ID: "r-1", ReceiverID: "ana", Principle: "Innovación", Timestamp: at},
			{ID: "r-2", ReceiverID: "ana", Principle: "Innovación", Timestamp: at.Add(time.Hour)},
			{ID: "r-3", ReceiverID: "ana", Principle: "Innovación", Timestamp: at.Add(2 * time.Hour)},
		},
		Rewards: []engine.RewardDefinition{
			{ID: "rw-1", PointCost: 150, InitialStock: 5},
		},
		Redemptions: []engine.RedemptionRecord{
			{ID: "c-1", UserID: "ana", RewardID: "rw-1", Status: engine.StatusApproved, Timestamp: at},
		},
	}
	eng := engine.New(engine.MustLevelTable(engine.DefaultLevels()), engine.DefaultRules(), engine.DefaultBadges())

	var buf bytes.Buffer
	require.NoError(t, export.WriteResults(&buf, eng, snap))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"user_id", "name", "email", "status",
		"received", "gross_points", "spent_points", "net_points",
		"level", "level_name", "progress_pct", "badges_earned",
	}, rows[0])

	ana := rows[1]
	assert.Equal(t, "ana", ana[0])
	assert.Equal(t, "3", ana[4])
	assert.Equal(t, "550", ana[5])
	assert.Equal(t, "150", ana[6])
	assert.Equal(t, "400", ana[7])
	assert.Equal(t, "Participante", ana[9])
	assert.Equal(t, "1", ana[11], "the Innovación badge is earned at threshold")

	beto := rows[2]
	assert.Equal(t, "0", beto[5])
	assert.Equal(t, "Novato", beto[9])
}

func TestWriteResults_EmptySnapshot(t *testing.T) {
	eng := engine.New(engine.MustLevelTable(engine.DefaultLevels()), engine.DefaultRules(), engine.DefaultBadges())

	var buf bytes.Buffer
	require.NoError(t, export.WriteResults(&buf, eng, engine.Snapshot{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
