package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresa/recognition-engine/engine"
	"github.com/cresa/recognition-engine/store/sqlite"
)

// newTestStore opens a fresh database in a per-test temp dir. A file (not
// :memory:) so every pooled connection sees the same data.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshot_RoundTrip(t *testing.T) {
	// GIVEN: one entity of each kind written through the store
	// WHEN: loading a snapshot
	// THEN: every field survives, timestamps in UTC at second precision

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, time.April, 10, 14, 30, 0, 0, time.UTC)

	require.NoError(t, store.SaveUser(ctx, engine.User{
		ID: "u-1", Name: "Ana", Email: "ana@cresa.mx",
		Status: engine.UserActive, Role: engine.RoleGranter,
		HistoricalPoints: 250, CreatedAt: at,
	}))
	require.NoError(t, store.AppendRecognition(ctx, engine.RecognitionEvent{
		ID: "r-1", GiverID: "u-2", ReceiverID: "u-1",
		Principle: "Innovación", Reason: "gran idea", Timestamp: at,
	}))
	require.NoError(t, store.SaveReward(ctx, engine.RewardDefinition{
		ID: "rw-1", Name: "Taza", Description: "con logo",
		RequiredLevel: 1, InitialStock: 10, PointCost: 150, ImageURL: "http://img",
	}))
	require.NoError(t, store.AppendRedemption(ctx, engine.RedemptionRecord{
		ID: "c-1", UserID: "u-1", RewardID: "rw-1", Timestamp: at, Status: engine.StatusPending,
	}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Users, 1)
	assert.Equal(t, "Ana", snap.Users[0].Name)
	assert.Equal(t, engine.RoleGranter, snap.Users[0].Role)
	assert.Equal(t, 250, snap.Users[0].HistoricalPoints)
	assert.True(t, snap.Users[0].CreatedAt.Equal(at))

	require.Len(t, snap.Recognitions, 1)
	assert.Equal(t, "gran idea", snap.Recognitions[0].Reason)
	assert.True(t, snap.Recognitions[0].Timestamp.Equal(at))

	require.Len(t, snap.Rewards, 1)
	assert.Equal(t, 150, snap.Rewards[0].PointCost)
	assert.Equal(t, "con logo", snap.Rewards[0].Description)

	require.Len(t, snap.Redemptions, 1)
	assert.Equal(t, engine.StatusPending, snap.Redemptions[0].Status)
}

func TestRecognitions_OrderedByTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	// Inserted newest first; snapshot must come back chronological.
	require.NoError(t, store.AppendRecognition(ctx, engine.RecognitionEvent{ID: "r-late", ReceiverID: "u", Timestamp: base.Add(48 * time.Hour)}))
	require.NoError(t, store.AppendRecognition(ctx, engine.RecognitionEvent{ID: "r-early", ReceiverID: "u", Timestamp: base}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Recognitions, 2)
	assert.Equal(t, engine.RecognitionID("r-early"), snap.Recognitions[0].ID)
	assert.Equal(t, engine.RecognitionID("r-late"), snap.Recognitions[1].ID)
}

func TestSetRedemptionStatus_Workflow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AppendRedemption(ctx, engine.RedemptionRecord{
		ID: "c-1", UserID: "u-1", RewardID: "rw-1", Timestamp: time.Now(), Status: engine.StatusPending,
	}))

	require.NoError(t, store.SetRedemptionStatus(ctx, "c-1", engine.StatusApproved))

	rec, err := store.GetRedemption(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusApproved, rec.Status)

	// Terminal statuses never move again.
	err = store.SetRedemptionStatus(ctx, "c-1", engine.StatusRejected)
	assert.ErrorIs(t, err, engine.ErrStatusTerminal)

	err = store.SetRedemptionStatus(ctx, "ghost", engine.StatusApproved)
	assert.ErrorIs(t, err, engine.ErrRedemptionNotFound)

	_, err = store.GetRedemption(ctx, "ghost")
	assert.ErrorIs(t, err, engine.ErrRedemptionNotFound)
}

func TestSaveUser_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, engine.User{ID: "u-1", Name: "Ana", Status: engine.UserActive, Role: engine.RoleContributor}))
	require.NoError(t, store.SaveUser(ctx, engine.User{ID: "u-1", Name: "Ana María", Status: engine.UserActive, Role: engine.RoleGranter}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "Ana María", snap.Users[0].Name)
	assert.Equal(t, engine.RoleGranter, snap.Users[0].Role)
}

func TestImportSnapshot_FullReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, engine.User{ID: "old", Status: engine.UserActive, Role: engine.RoleContributor}))
	require.NoError(t, store.AppendRedemption(ctx, engine.RedemptionRecord{ID: "c-old", UserID: "old", RewardID: "rw", Timestamp: time.Now(), Status: engine.StatusApproved}))

	require.NoError(t, store.ImportSnapshot(ctx, engine.Snapshot{
		Users: []engine.User{{ID: "new", Name: "Nueva", Status: engine.UserActive, Role: engine.RoleContributor}},
	}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, engine.UserID("new"), snap.Users[0].ID)
	assert.Empty(t, snap.Redemptions)
	assert.Empty(t, snap.Recognitions)
}

func TestGuardOverSQLite_EndToEnd(t *testing.T) {
	// The admission gate runs against the persistent store exactly as it
	// does against the in-memory one.

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, engine.User{ID: "u-1", Name: "Ana", Status: engine.UserActive, Role: engine.RoleContributor, HistoricalPoints: 300, CreatedAt: time.Now()}))
	require.NoError(t, store.SaveReward(ctx, engine.RewardDefinition{ID: "rw-1", Name: "Taza", PointCost: 300, InitialStock: 1}))

	eng := engine.New(engine.MustLevelTable(engine.DefaultLevels()), engine.DefaultRules(), engine.DefaultBadges())
	guard := engine.NewGuard(store, eng)

	rec, err := guard.RequestRedemption(ctx, "u-1", "rw-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPending, rec.Status)

	_, err = guard.RequestRedemption(ctx, "u-1", "rw-1")
	assert.ErrorIs(t, err, engine.ErrOutOfStock)
}
