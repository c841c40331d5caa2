// Package memory provides an in-memory SnapshotStore (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/cresa/recognition-engine/engine"
)

// Store holds the raw log in memory behind a RWMutex. Snapshot returns
// deep copies so callers can never observe a partially-applied write.
type Store struct {
	mu           sync.RWMutex
	users        []engine.User
	recognitions []engine.RecognitionEvent
	rewards      []engine.RewardDefinition
	redemptions  []engine.RedemptionRecord
}

func New() *Store {
	return &Store{}
}

// Compile-time interface checks.
var (
	_ engine.SnapshotStore = (*Store)(nil)
	_ engine.ApprovalStore = (*Store)(nil)
)

func (s *Store) Snapshot(_ context.Context) (engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := engine.Snapshot{
		Users:        make([]engine.User, len(s.users)),
		Recognitions: make([]engine.RecognitionEvent, len(s.recognitions)),
		Rewards:      make([]engine.RewardDefinition, len(s.rewards)),
		Redemptions:  make([]engine.RedemptionRecord, len(s.redemptions)),
	}
	copy(snap.Users, s.users)
	copy(snap.Recognitions, s.recognitions)
	copy(snap.Rewards, s.rewards)
	copy(snap.Redemptions, s.redemptions)
	return snap, nil
}

func (s *Store) AppendRecognition(_ context.Context, ev engine.RecognitionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognitions = append(s.recognitions, ev)
	return nil
}

func (s *Store) AppendRedemption(_ context.Context, rec engine.RedemptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions = append(s.redemptions, rec)
	return nil
}

func (s *Store) SetRedemptionStatus(_ context.Context, id engine.RedemptionID, status engine.RedemptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.redemptions {
		if s.redemptions[i].ID != id {
			continue
		}
		if s.redemptions[i].Status.Terminal() {
			return engine.ErrStatusTerminal
		}
		s.redemptions[i].Status = status
		return nil
	}
	return engine.ErrRedemptionNotFound
}

// SaveUser upserts a user record (fixture setup and admin edits).
func (s *Store) SaveUser(_ context.Context, u engine.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			return nil
		}
	}
	s.users = append(s.users, u)
	return nil
}

// SaveReward upserts a catalog entry.
func (s *Store) SaveReward(_ context.Context, rw engine.RewardDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rewards {
		if s.rewards[i].ID == rw.ID {
			s.rewards[i] = rw
			return nil
		}
	}
	s.rewards = append(s.rewards, rw)
	return nil
}

// ImportSnapshot atomically replaces the entire raw log (full refresh, not
// incremental sync).
func (s *Store) ImportSnapshot(_ context.Context, snap engine.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]engine.User(nil), snap.Users...)
	s.recognitions = append([]engine.RecognitionEvent(nil), snap.Recognitions...)
	s.rewards = append([]engine.RewardDefinition(nil), snap.Rewards...)
	s.redemptions = append([]engine.RedemptionRecord(nil), snap.Redemptions...)
	return nil
}
