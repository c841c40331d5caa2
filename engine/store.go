/*
store.go - Storage contracts for the raw event log

PURPOSE:
  The engine does not own persistence. It reads a full snapshot and
  performs exactly two kinds of append: a new recognition and a new
  redemption. Everything else (status transitions, seeding, resets) is
  collaborator territory.
*/
package engine

import "context"

// SnapshotStore is the externally-owned raw log the engine computes from.
//
// INVARIANTS:
//   - Snapshot returns a consistent full copy; refresh replaces the whole
//     snapshot, it is never patched incrementally
//   - Appends are the only writes the engine performs; records are
//     immutable once written
type SnapshotStore interface {
	// Snapshot returns a full, consistent copy of the raw log.
	Snapshot(ctx context.Context) (Snapshot, error)

	// AppendRecognition adds an immutable recognition event.
	AppendRecognition(ctx context.Context, ev RecognitionEvent) error

	// AppendRedemption adds a redemption record. Called only by the
	// redemption guard after admission.
	AppendRedemption(ctx context.Context, rec RedemptionRecord) error
}

// ApprovalStore is implemented by stores that support the back-office
// approval workflow. The engine itself never transitions a status - it is
// purely a reader - but the HTTP surface exposes these operations.
type ApprovalStore interface {
	// SetRedemptionStatus moves a pending or unspecified redemption to a
	// new status. Transitions out of a terminal status fail with
	// ErrStatusTerminal.
	SetRedemptionStatus(ctx context.Context, id RedemptionID, status RedemptionStatus) error
}
