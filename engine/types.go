/*
Package engine is the points/leveling/badge/inventory consistency core of
the recognition platform.

PURPOSE:
  Turns the raw event log (recognitions given and received, redemptions
  requested) into derived state: gross points, net spendable points, level,
  badge ownership with earn timestamps, and per-reward available stock.
  Derived values are never stored - they are always recomputed from the
  full log, so out-of-band status changes (a redemption approved or
  rejected by the back-office workflow) are picked up on the next read
  without any incremental bookkeeping.

KEY CONCEPTS IN THIS FILE (types.go):
  - User, RecognitionEvent, RewardDefinition, RedemptionRecord: the raw
    entities of the snapshot
  - RedemptionStatus: pending/approved/rejected lifecycle, parsed
    tolerantly from free-form input
  - Snapshot: an immutable full copy of the log, replaced wholesale on
    refresh

DESIGN PRINCIPLES:
  1. Immutability: recognition and redemption records are append-only;
     the only field ever mutated is a redemption's status, and that is
     owned by the approval workflow outside this package
  2. Totality: derived-state computation never fails on bad data -
     malformed numerics default to zero at the ingestion boundary
  3. Recompute, don't cache: every read derives from the raw log

SEE ALSO:
  - scoring.go: gross/net point derivation
  - levels.go: level table and resolution
  - badges.go: badge evaluation
  - inventory.go: reward stock accounting
  - guard.go: redemption admission gate
*/
package engine

import (
	"strings"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type RecognitionID string
type RewardID string
type RedemptionID string

// =============================================================================
// USER
// =============================================================================

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type Role string

const (
	RoleContributor Role = "contributor" // can receive recognitions and redeem
	RoleGranter     Role = "granter"     // can also give recognitions
	RoleAdmin       Role = "admin"       // granter plus approval workflow
)

// User is a platform member. HistoricalPoints is a carry-over balance from
// a prior system, added once into gross points; it is raw input, never
// derived.
type User struct {
	ID               UserID
	Name             string
	Email            string
	Status           UserStatus
	Role             Role
	HistoricalPoints int
	CreatedAt        time.Time
}

func (u User) IsActive() bool  { return u.Status == UserActive }
func (u User) CanGrant() bool  { return u.Role == RoleGranter || u.Role == RoleAdmin }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

// =============================================================================
// RECOGNITION EVENT
// =============================================================================

// RecognitionEvent is an immutable peer-to-peer acknowledgment tied to a
// company-value principle. Ordering by Timestamp matters for badge earn
// dates.
type RecognitionEvent struct {
	ID         RecognitionID
	GiverID    UserID
	ReceiverID UserID
	Principle  string
	Reason     string
	Timestamp  time.Time
}

// =============================================================================
// REWARD DEFINITION
// =============================================================================

// RewardDefinition is a static catalog entry. InitialStock is the total
// quantity ever offered; available stock is derived from the redemption
// log (see inventory.go).
type RewardDefinition struct {
	ID            RewardID
	Name          string
	Description   string
	RequiredLevel int
	InitialStock  int
	PointCost     int
	ImageURL      string
}

// =============================================================================
// REDEMPTION RECORD
// =============================================================================

type RedemptionStatus string

const (
	StatusPending     RedemptionStatus = "pending"
	StatusApproved    RedemptionStatus = "approved"
	StatusRejected    RedemptionStatus = "rejected"
	StatusUnspecified RedemptionStatus = "unspecified"
)

// ParseRedemptionStatus canonicalizes a free-form status value. The source
// snapshot historically carried Spanish labels with inconsistent casing and
// whitespace, so matching is trimmed and case-insensitive. Anything
// unrecognized maps to StatusUnspecified, which counts as spending: only an
// explicit rejection refunds points.
func ParseRedemptionStatus(raw string) RedemptionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "pendiente":
		return StatusPending
	case "approved", "aprobado":
		return StatusApproved
	case "rejected", "rechazado":
		return StatusRejected
	default:
		return StatusUnspecified
	}
}

// IsRejected reports whether the status counts as a refund. Comparison goes
// through ParseRedemptionStatus so records that bypassed the ingestion
// boundary are still handled.
func (s RedemptionStatus) IsRejected() bool {
	return ParseRedemptionStatus(string(s)) == StatusRejected
}

// Terminal reports whether no further transition is allowed. Pending and
// unspecified records can still be approved or rejected by the workflow.
func (s RedemptionStatus) Terminal() bool {
	p := ParseRedemptionStatus(string(s))
	return p == StatusApproved || p == StatusRejected
}

// RedemptionRecord is created by the redemption guard with StatusPending.
// Status is mutated afterwards by the out-of-engine approval workflow; the
// engine only ever reads it.
type RedemptionRecord struct {
	ID        RedemptionID
	UserID    UserID
	RewardID  RewardID
	Timestamp time.Time
	Status    RedemptionStatus
}

// =============================================================================
// SNAPSHOT - Full copy of the raw log
// =============================================================================

// Snapshot is the externally-owned source of truth: the complete raw log at
// one moment. It is replaced wholesale on refresh, never patched, and all
// derived state is recomputed from it on every read.
type Snapshot struct {
	Users        []User
	Recognitions []RecognitionEvent
	Rewards      []RewardDefinition
	Redemptions  []RedemptionRecord
}

// UserByID returns the user with the given id, or nil.
func (s Snapshot) UserByID(id UserID) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// RewardByID returns the catalog entry with the given id, or nil.
func (s Snapshot) RewardByID(id RewardID) *RewardDefinition {
	for i := range s.Rewards {
		if s.Rewards[i].ID == id {
			return &s.Rewards[i]
		}
	}
	return nil
}

// ReceivedBy returns the recognitions received by one user, in log order.
func (s Snapshot) ReceivedBy(id UserID) []RecognitionEvent {
	var out []RecognitionEvent
	for _, r := range s.Recognitions {
		if r.ReceiverID == id {
			out = append(out, r)
		}
	}
	return out
}

// RedemptionsBy returns the redemptions requested by one user, in log order.
func (s Snapshot) RedemptionsBy(id UserID) []RedemptionRecord {
	var out []RedemptionRecord
	for _, r := range s.Redemptions {
		if r.UserID == id {
			out = append(out, r)
		}
	}
	return out
}
