package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresa/recognition-engine/engine"
	"github.com/cresa/recognition-engine/ingest"
)

// =============================================================================
// USERS SHEET
// =============================================================================

func TestParseUsers_MessyHeaders(t *testing.T) {
	// GIVEN: a sheet with BOM, quoting, stray spaces and mixed case headers
	// THEN: every column still lands on its canonical name

	in := "\uFEFF\"Usuario_ID\", Nombre ,EMAIL,Estado:,Rol Otorgador,Puntos Anteriores,Fecha Creacion\n" +
		"u-1,Ana,ana@cresa.mx,Activo,Otorgador,250,2024-05-01\n"

	users, err := ingest.ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, users, 1)

	u := users[0]
	assert.Equal(t, engine.UserID("u-1"), u.ID)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, engine.UserActive, u.Status)
	assert.Equal(t, engine.RoleGranter, u.Role)
	assert.Equal(t, 250, u.HistoricalPoints)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), u.CreatedAt)
}

func TestParseUsers_RoleVocabulary(t *testing.T) {
	cases := []struct {
		raw  string
		want engine.Role
	}{
		{"admin", engine.RoleAdmin},
		{"Administrador", engine.RoleAdmin},
		{"colaborador", engine.RoleContributor},
		{"lector", engine.RoleContributor},
		{"", engine.RoleContributor},
		{"Otorgador", engine.RoleGranter},
		{"manager", engine.RoleGranter}, // any unrecognized non-empty value grants
	}

	for _, c := range cases {
		in := "usuario_id,rol\nu-1," + c.raw + "\n"
		users, err := ingest.ParseUsers(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, c.want, users[0].Role, "role=%q", c.raw)
	}
}

func TestParseUsers_MalformedNumbersBecomeZero(t *testing.T) {
	in := "usuario_id,puntos_anteriores\nu-1,n/a\nu-2,\nu-3,300\n"

	users, err := ingest.ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, 0, users[0].HistoricalPoints)
	assert.Equal(t, 0, users[1].HistoricalPoints)
	assert.Equal(t, 300, users[2].HistoricalPoints)
}

func TestParseUsers_SkipsRowsWithoutID(t *testing.T) {
	in := "usuario_id,nombre\n,SinID\nu-1,Ana\n"

	users, err := ingest.ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

// =============================================================================
// RECOGNITIONS SHEET
// =============================================================================

func TestParseRecognitions_DateLayouts(t *testing.T) {
	in := "aplauso_id,otorgante_id,receptor_id,principio,fecha\n" +
		"r-1,g,u,Innovación,2025-03-01T10:30:00Z\n" +
		"r-2,g,u,Innovación,2025-03-02 08:00:00\n" +
		"r-3,g,u,Innovación,03/03/2025\n" +
		"r-4,g,u,Innovación,not a date\n"

	events, err := ingest.ParseRecognitions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, time.Date(2025, time.March, 1, 10, 30, 0, 0, time.UTC), events[0].Timestamp)
	assert.Equal(t, time.Date(2025, time.March, 2, 8, 0, 0, 0, time.UTC), events[1].Timestamp)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), events[2].Timestamp)
	assert.True(t, events[3].Timestamp.IsZero(), "unparseable date degrades to zero time")
}

// =============================================================================
// REDEMPTIONS SHEET
// =============================================================================

func TestParseRedemptions_SpanishStatuses(t *testing.T) {
	in := "canje_id,usuario_id,recompensa_id,estado\n" +
		"c-1,u-1,rw-1,Pendiente\n" +
		"c-2,u-1,rw-1, aprobado \n" +
		"c-3,u-1,rw-1,RECHAZADO\n" +
		"c-4,u-1,rw-1,quien sabe\n"

	recs, err := ingest.ParseRedemptions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, engine.StatusPending, recs[0].Status)
	assert.Equal(t, engine.StatusApproved, recs[1].Status)
	assert.Equal(t, engine.StatusRejected, recs[2].Status)
	assert.Equal(t, engine.StatusUnspecified, recs[3].Status)
	assert.False(t, recs[3].Status.IsRejected(), "unknown status still spends")
}

// =============================================================================
// FULL SNAPSHOT
// =============================================================================

func TestParseSnapshot_AllSheets(t *testing.T) {
	snap, err := ingest.ParseSnapshot(ingest.SnapshotReaders{
		Users:        strings.NewReader("usuario_id,nombre,estado\nu-1,Ana,Activo\n"),
		Recognitions: strings.NewReader("aplauso_id,receptor_id,principio,fecha\nr-1,u-1,Integridad,2025-01-01\n"),
		Rewards:      strings.NewReader("recompensa_id,nombre,stock,puntos_costo,nivel_requerido\nrw-1,Taza,10,150,1\n"),
		Redemptions:  strings.NewReader("canje_id,usuario_id,recompensa_id,estado\nc-1,u-1,rw-1,Aprobado\n"),
	})
	require.NoError(t, err)

	assert.Len(t, snap.Users, 1)
	assert.Len(t, snap.Recognitions, 1)
	require.Len(t, snap.Rewards, 1)
	assert.Equal(t, 150, snap.Rewards[0].PointCost)
	assert.Equal(t, 1, snap.Rewards[0].RequiredLevel)
	assert.Len(t, snap.Redemptions, 1)
}

func TestParseSnapshot_NilReadersYieldEmptySections(t *testing.T) {
	snap, err := ingest.ParseSnapshot(ingest.SnapshotReaders{})
	require.NoError(t, err)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Recognitions)
	assert.Empty(t, snap.Rewards)
	assert.Empty(t, snap.Redemptions)
}

func TestParseSnapshot_HeaderOnlySheet(t *testing.T) {
	snap, err := ingest.ParseSnapshot(ingest.SnapshotReaders{
		Users: strings.NewReader("usuario_id,nombre\n"),
	})
	require.NoError(t, err)
	assert.Empty(t, snap.Users)
}
