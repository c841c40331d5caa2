/*
Package ingest is the validated ingestion boundary for the tabular
snapshot encoding.

PURPOSE:
  The raw log arrives as CSV exports of the upstream spreadsheets, with
  loosely-typed cells and historically messy headers. This package parses
  that text into the strict entities of the engine so the core never
  touches untyped data.

TOLERANCE RULES:
  - Headers are normalized: trimmed, BOM stripped, lowercased, every run
    of non [a-z0-9_] characters collapsed to one underscore (so "Estado:"
    and " estado " both become "estado")
  - Numeric cells that fail to parse become 0, never an error - derived
    state computation must be total
  - Role and status vocabulary is canonicalized, Spanish labels included
  - Dates are tried against several layouts (RFC 3339, YYYY-MM-DD,
    DD/MM/YYYY, with and without time)
*/
package ingest

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cresa/recognition-engine/engine"
)

// =============================================================================
// TABLE READER
// =============================================================================

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// normalizeHeader canonicalizes one column name.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ReplaceAll(h, "\uFEFF", "")
	h = strings.Trim(h, `"`)
	h = strings.ToLower(h)
	h = nonIdent.ReplaceAllString(h, "_")
	h = strings.Trim(h, "_")
	return h
}

// readTable parses CSV into one map per row, keyed by normalized header.
// Rows shorter than the header are padded with empty strings.
func readTable(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(rec) {
				row[key] = strings.TrimSpace(rec[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

// atoiOrZero is the MalformedNumericField rule: unparseable means 0.
func atoiOrZero(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// parseDate tries the known snapshot layouts; zero time on failure.
func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseUserStatus(v string) engine.UserStatus {
	if strings.ToLower(strings.TrimSpace(v)) == "activo" || strings.ToLower(strings.TrimSpace(v)) == "active" {
		return engine.UserActive
	}
	return engine.UserInactive
}

// parseRole reproduces the upstream sheet's loose role vocabulary:
// admin/administrador map to admin, colaborador/lector/empty map to
// contributor, and any other non-empty value grants recognition rights.
func parseRole(v string) engine.Role {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "admin", "administrador":
		return engine.RoleAdmin
	case "colaborador", "lector", "contributor", "":
		return engine.RoleContributor
	default:
		return engine.RoleGranter
	}
}

// =============================================================================
// ENTITY PARSERS
// =============================================================================

// ParseUsers reads the users sheet.
func ParseUsers(r io.Reader) ([]engine.User, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var out []engine.User
	for _, row := range rows {
		id := row["usuario_id"]
		if id == "" {
			continue
		}
		role := row["rol_otorgador"]
		if role == "" {
			role = row["rol"]
		}
		out = append(out, engine.User{
			ID:               engine.UserID(id),
			Name:             row["nombre"],
			Email:            row["email"],
			Status:           parseUserStatus(row["estado"]),
			Role:             parseRole(role),
			HistoricalPoints: atoiOrZero(row["puntos_anteriores"]),
			CreatedAt:        parseDate(row["fecha_creacion"]),
		})
	}
	return out, nil
}

// ParseRecognitions reads the recognitions sheet.
func ParseRecognitions(r io.Reader) ([]engine.RecognitionEvent, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var out []engine.RecognitionEvent
	for _, row := range rows {
		id := row["aplauso_id"]
		if id == "" {
			continue
		}
		out = append(out, engine.RecognitionEvent{
			ID:         engine.RecognitionID(id),
			GiverID:    engine.UserID(row["otorgante_id"]),
			ReceiverID: engine.UserID(row["receptor_id"]),
			Principle:  row["principio"],
			Reason:     row["motivo"],
			Timestamp:  parseDate(row["fecha"]),
		})
	}
	return out, nil
}

// ParseRewards reads the reward catalog sheet.
func ParseRewards(r io.Reader) ([]engine.RewardDefinition, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var out []engine.RewardDefinition
	for _, row := range rows {
		id := row["recompensa_id"]
		if id == "" {
			continue
		}
		out = append(out, engine.RewardDefinition{
			ID:            engine.RewardID(id),
			Name:          row["nombre"],
			Description:   row["descripcion"],
			RequiredLevel: atoiOrZero(row["nivel_requerido"]),
			InitialStock:  atoiOrZero(row["stock"]),
			PointCost:     atoiOrZero(row["puntos_costo"]),
			ImageURL:      row["imagen_url"],
		})
	}
	return out, nil
}

// ParseRedemptions reads the redemptions sheet.
func ParseRedemptions(r io.Reader) ([]engine.RedemptionRecord, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var out []engine.RedemptionRecord
	for _, row := range rows {
		id := row["canje_id"]
		if id == "" {
			continue
		}
		out = append(out, engine.RedemptionRecord{
			ID:        engine.RedemptionID(id),
			UserID:    engine.UserID(row["usuario_id"]),
			RewardID:  engine.RewardID(row["recompensa_id"]),
			Timestamp: parseDate(row["fecha"]),
			Status:    engine.ParseRedemptionStatus(row["estado"]),
		})
	}
	return out, nil
}

// =============================================================================
// FULL SNAPSHOT
// =============================================================================

// SnapshotReaders holds one reader per sheet of the export.
type SnapshotReaders struct {
	Users        io.Reader
	Recognitions io.Reader
	Rewards      io.Reader
	Redemptions  io.Reader
}

// ParseSnapshot parses all four sheets into one snapshot. Nil readers
// yield empty sections.
func ParseSnapshot(in SnapshotReaders) (engine.Snapshot, error) {
	var snap engine.Snapshot
	var err error

	if in.Users != nil {
		if snap.Users, err = ParseUsers(in.Users); err != nil {
			return snap, err
		}
	}
	if in.Recognitions != nil {
		if snap.Recognitions, err = ParseRecognitions(in.Recognitions); err != nil {
			return snap, err
		}
	}
	if in.Rewards != nil {
		if snap.Rewards, err = ParseRewards(in.Rewards); err != nil {
			return snap, err
		}
	}
	if in.Redemptions != nil {
		if snap.Redemptions, err = ParseRedemptions(in.Redemptions); err != nil {
			return snap, err
		}
	}
	return snap, nil
}
