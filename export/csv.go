// Package export writes admin result exports as CSV, the format the
// back office feeds into spreadsheets.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cresa/recognition-engine/engine"
)

// WriteResults writes one row per user with their full derived state:
// points, level, progress and earned badge count. Derived values are
// recomputed from the snapshot at write time.
func WriteResults(w io.Writer, eng *engine.Engine, snap engine.Snapshot) error {
	cw := csv.NewWriter(w)

	header := []string{
		"user_id", "name", "email", "status",
		"received", "gross_points", "spent_points", "net_points",
		"level", "level_name", "progress_pct", "badges_earned",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, u := range snap.Users {
		summary, err := eng.Summarize(snap, u.ID)
		if err != nil {
			return err
		}

		earned := 0
		for _, b := range summary.BadgesEarned {
			if b.Earned {
				earned++
			}
		}

		row := []string{
			string(u.ID),
			u.Name,
			u.Email,
			string(u.Status),
			strconv.Itoa(summary.ReceivedCount),
			strconv.Itoa(summary.GrossPoints),
			strconv.Itoa(summary.SpentPoints),
			strconv.Itoa(summary.NetPoints),
			strconv.Itoa(summary.Level.Level),
			summary.Level.Name,
			strconv.FormatFloat(summary.Progress.Percentage, 'f', 2, 64),
			strconv.Itoa(earned),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
