/*
engine.go - Configured engine facade and derived user views

PURPOSE:
  Bundles the validated level table, scoring rules and badge catalog into
  one value that entry points pass around explicitly. No package-level
  state: the original client kept all of this in a process-wide mutable
  context, which is reimplemented here as plain structs handed to the
  computations that need them.
*/
package engine

import "sort"

// Engine is the configured computation core. All methods are pure reads
// over a snapshot.
type Engine struct {
	Levels *LevelTable
	Rules  Rules
	Badges BadgeEvaluator
}

// New builds an engine from a validated level table, rules and badge
// catalog.
func New(levels *LevelTable, rules Rules, badges []BadgeDefinition) *Engine {
	return &Engine{
		Levels: levels,
		Rules:  rules,
		Badges: BadgeEvaluator{Definitions: badges, Threshold: rules.BadgeThreshold},
	}
}

// UserSummary is the full derived state for one user.
type UserSummary struct {
	User          User
	ReceivedCount int
	GrossPoints   int
	SpentPoints   int
	NetPoints     int
	Level         LevelEntry
	Progress      Progress
	BadgesEarned  []EarnedBadge
}

// Summarize derives the complete per-user state from a snapshot.
func (e *Engine) Summarize(snap Snapshot, id UserID) (*UserSummary, error) {
	user := snap.UserByID(id)
	if user == nil {
		return nil, ErrUserNotFound
	}

	received := snap.ReceivedBy(id)
	gross := e.Rules.GrossPoints(len(received), user.HistoricalPoints)
	spent := SpentPoints(snap.RedemptionsBy(id), snap.Rewards)

	return &UserSummary{
		User:          *user,
		ReceivedCount: len(received),
		GrossPoints:   gross,
		SpentPoints:   spent,
		NetPoints:     gross - spent,
		Level:         e.Levels.LevelFor(gross),
		Progress:      e.Levels.ProgressToNext(gross),
		BadgesEarned:  e.Badges.CalculateEarnedBadges(received),
	}, nil
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	UserID UserID
	Name   string
	Points int
	Level  LevelEntry
}

// Leaderboard ranks active, non-admin users by gross points, descending.
// Ties break by name so the ordering is stable across recomputes. limit <= 0
// means no cap.
func (e *Engine) Leaderboard(snap Snapshot, limit int) []LeaderboardEntry {
	counts := make(map[UserID]int)
	for _, r := range snap.Recognitions {
		counts[r.ReceiverID]++
	}

	var out []LeaderboardEntry
	for _, u := range snap.Users {
		if u.IsAdmin() || !u.IsActive() {
			continue
		}
		gross := e.Rules.GrossPoints(counts[u.ID], u.HistoricalPoints)
		out = append(out, LeaderboardEntry{
			UserID: u.ID,
			Name:   u.Name,
			Points: gross,
			Level:  e.Levels.LevelFor(gross),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Name < out[j].Name
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PrincipleCount is one slice of the admin distribution chart.
type PrincipleCount struct {
	Principle string
	Count     int
}

// PrincipleCounts groups all recognitions by principle, most frequent
// first, ties by name.
func PrincipleCounts(recognitions []RecognitionEvent) []PrincipleCount {
	counts := make(map[string]int)
	for _, r := range recognitions {
		counts[r.Principle]++
	}

	out := make([]PrincipleCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PrincipleCount{Principle: p, Count: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Principle < out[j].Principle
	})
	return out
}
