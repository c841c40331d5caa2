/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place. Admission denials are normal, typed
  outcomes - a user retrying later is expected - so they are sentinel
  errors matched with errors.Is, not panics or HTTP-shaped values.

ERROR CATEGORIES:
  1. Admission denials - InsufficientPoints, OutOfStock, LevelTooLow
  2. Reference errors - unknown user/reward ids
  3. Configuration errors - level table problems, fatal at startup

SEE ALSO:
  - guard.go: produces admission errors
  - levels.go: produces configuration errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientPoints is returned when a redemption costs more than the
	// user's current net points.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrOutOfStock is returned when a reward has no available stock left.
	ErrOutOfStock = errors.New("reward out of stock")

	// ErrLevelTooLow is returned when the user's level is below the reward's
	// required level.
	ErrLevelTooLow = errors.New("level too low")

	// ErrUserNotFound is returned when a referenced user is absent from the
	// snapshot.
	ErrUserNotFound = errors.New("user not found")

	// ErrRewardNotFound is returned when a referenced reward is absent from
	// the catalog.
	ErrRewardNotFound = errors.New("reward not found")

	// ErrRedemptionNotFound is returned by stores when a redemption id does
	// not exist.
	ErrRedemptionNotFound = errors.New("redemption not found")

	// ErrStatusTerminal is returned when the approval workflow tries to
	// transition a redemption that is already approved or rejected.
	ErrStatusTerminal = errors.New("redemption status is terminal")

	// ErrNotGranter is returned when a user without granting rights tries to
	// give a recognition.
	ErrNotGranter = errors.New("user cannot grant recognitions")

	// ErrSelfRecognition is returned when giver and receiver are the same.
	ErrSelfRecognition = errors.New("cannot recognize yourself")

	// ErrInactiveReceiver is returned when the receiver account is inactive.
	ErrInactiveReceiver = errors.New("receiver is inactive")

	// ErrEmptyLevelTable is a configuration error: the level ladder has no
	// entries. Fatal at startup, never tolerated per call.
	ErrEmptyLevelTable = errors.New("level table is empty")

	// ErrLevelTableNotMonotonic is a configuration error: levels or their
	// thresholds do not strictly increase.
	ErrLevelTableNotMonotonic = errors.New("level table is not monotonic")
)

// =============================================================================
// STRUCTURED ERRORS - Carry admission context
// =============================================================================

// InsufficientPointsError reports how short the user's balance is.
type InsufficientPointsError struct {
	UserID   UserID
	RewardID RewardID
	Net      int
	Cost     int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: have %d, reward %s costs %d", e.Net, e.RewardID, e.Cost)
}

func (e *InsufficientPointsError) Unwrap() error { return ErrInsufficientPoints }

// OutOfStockError reports an exhausted reward.
type OutOfStockError struct {
	RewardID RewardID
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("reward %s is out of stock", e.RewardID)
}

func (e *OutOfStockError) Unwrap() error { return ErrOutOfStock }

// LevelTooLowError reports a level gate failure.
type LevelTooLowError struct {
	UserID   UserID
	RewardID RewardID
	Level    int
	Required int
}

func (e *LevelTooLowError) Error() string {
	return fmt.Sprintf("level %d below required %d for reward %s", e.Level, e.Required, e.RewardID)
}

func (e *LevelTooLowError) Unwrap() error { return ErrLevelTooLow }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsAdmissionDenial reports whether the error is one of the recoverable
// redemption denials a user may retry later.
func IsAdmissionDenial(err error) bool {
	return errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrLevelTooLow)
}

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRewardNotFound) ||
		errors.Is(err, ErrRedemptionNotFound)
}
