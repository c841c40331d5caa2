/*
guard.go - Redemption admission gate

PURPOSE:
  The one place where derived state turns into a write. A redemption
  request is admitted only if, at confirmation time, the user still has
  the points, the reward still has stock, and the level gate holds. The
  UI checked all three when it rendered the offer, but points and stock
  can change between offer and confirmation (the classic check-then-act
  race), so the guard re-validates everything against a snapshot read
  inside its critical section and appends the record before releasing it.

LOCKING:
  Admission is serialized per (user, reward) pair with keyed mutexes. The
  user lock is always acquired before the reward lock, so two concurrent
  requests can never deadlock and can never both pass the last-unit stock
  check or both pass the points check. There is no partial-success state:
  either the record is appended or the request fails with a typed denial.

SIDE EFFECTS:
  Exactly one: the append. Point deduction is never stored; it is always
  re-derived via NetPoints on the next read.
*/
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard decides redemption admissibility and performs the single append.
type Guard struct {
	Store  SnapshotStore
	Engine *Engine

	// now is swappable for tests.
	now func() time.Time

	mu          sync.Mutex
	userLocks   map[UserID]*sync.Mutex
	rewardLocks map[RewardID]*sync.Mutex
}

// NewGuard builds a guard over a snapshot store.
func NewGuard(store SnapshotStore, eng *Engine) *Guard {
	return &Guard{
		Store:       store,
		Engine:      eng,
		now:         time.Now,
		userLocks:   make(map[UserID]*sync.Mutex),
		rewardLocks: make(map[RewardID]*sync.Mutex),
	}
}

func (g *Guard) userLock(id UserID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.userLocks[id]
	if !ok {
		l = &sync.Mutex{}
		g.userLocks[id] = l
	}
	return l
}

func (g *Guard) rewardLock(id RewardID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.rewardLocks[id]
	if !ok {
		l = &sync.Mutex{}
		g.rewardLocks[id] = l
	}
	return l
}

// RequestRedemption re-validates points, stock and level against a fresh
// snapshot and, on admission, appends a pending redemption record. Denials
// are typed admission errors; they are expected outcomes, not faults.
func (g *Guard) RequestRedemption(ctx context.Context, userID UserID, rewardID RewardID) (*RedemptionRecord, error) {
	// Lock ordering: user before reward, always.
	ul := g.userLock(userID)
	ul.Lock()
	defer ul.Unlock()
	rl := g.rewardLock(rewardID)
	rl.Lock()
	defer rl.Unlock()

	snap, err := g.Store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	user := snap.UserByID(userID)
	if user == nil {
		return nil, ErrUserNotFound
	}
	// The guard validates against the current catalog definition, never a
	// stale lookup.
	reward := snap.RewardByID(rewardID)
	if reward == nil {
		return nil, ErrRewardNotFound
	}

	gross := g.Engine.Rules.GrossPoints(len(snap.ReceivedBy(userID)), user.HistoricalPoints)
	net := NetPoints(gross, snap.RedemptionsBy(userID), snap.Rewards)
	if net < reward.PointCost {
		return nil, &InsufficientPointsError{UserID: userID, RewardID: rewardID, Net: net, Cost: reward.PointCost}
	}

	if AvailableStock(*reward, snap.Redemptions) <= 0 {
		return nil, &OutOfStockError{RewardID: rewardID}
	}

	if level := g.Engine.Levels.LevelFor(gross); level.Level < reward.RequiredLevel {
		return nil, &LevelTooLowError{UserID: userID, RewardID: rewardID, Level: level.Level, Required: reward.RequiredLevel}
	}

	rec := RedemptionRecord{
		ID:        RedemptionID(uuid.NewString()),
		UserID:    userID,
		RewardID:  rewardID,
		Timestamp: g.now(),
		Status:    StatusPending,
	}
	if err := g.Store.AppendRedemption(ctx, rec); err != nil {
		return nil, fmt.Errorf("append redemption: %w", err)
	}
	return &rec, nil
}

// GrantRecognition validates and appends a recognition event: only
// granters and admins give, receivers must be active, and self-recognition
// is rejected.
func (g *Guard) GrantRecognition(ctx context.Context, giverID, receiverID UserID, principle, reason string) (*RecognitionEvent, error) {
	if giverID == receiverID {
		return nil, ErrSelfRecognition
	}

	snap, err := g.Store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	giver := snap.UserByID(giverID)
	if giver == nil {
		return nil, fmt.Errorf("giver %s: %w", giverID, ErrUserNotFound)
	}
	if !giver.CanGrant() {
		return nil, ErrNotGranter
	}
	receiver := snap.UserByID(receiverID)
	if receiver == nil {
		return nil, fmt.Errorf("receiver %s: %w", receiverID, ErrUserNotFound)
	}
	if !receiver.IsActive() {
		return nil, ErrInactiveReceiver
	}

	ev := RecognitionEvent{
		ID:         RecognitionID(uuid.NewString()),
		GiverID:    giverID,
		ReceiverID: receiverID,
		Principle:  principle,
		Reason:     reason,
		Timestamp:  g.now(),
	}
	if err := g.Store.AppendRecognition(ctx, ev); err != nil {
		return nil, fmt.Errorf("append recognition: %w", err)
	}
	return &ev, nil
}
