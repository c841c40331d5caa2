/*
Package sqlite provides a SQLite-backed implementation of the snapshot
store.

PURPOSE:
  Persists the raw event log (users, recognitions, rewards, redemptions)
  and hands the engine full snapshots of it. The engine never reads
  individual rows - every derived value is recomputed from a complete
  snapshot, so the store's one job is to return a consistent copy.

APPEND-ONLY ENFORCEMENT:
  Recognitions and redemptions are append-only. The single exception is
  the redemption status column, which the back-office approval workflow
  flips from pending to approved or rejected - and never out of a
  terminal status.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  one writer at a time, better crash recovery.

CONCURRENCY:
  A sync.RWMutex guards the connection. Admission-time atomicity is the
  redemption guard's responsibility (per-user/per-reward locks); the
  store only guarantees that Snapshot sees no torn writes.

SEE ALSO:
  - engine/store.go: interface definitions
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cresa/recognition-engine/engine"
)

// Store implements engine.SnapshotStore and engine.ApprovalStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ engine.SnapshotStore = (*Store)(nil)
	_ engine.ApprovalStore = (*Store)(nil)
)

// New opens (or creates) the database at path. Use ":memory:" for an
// in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		role TEXT NOT NULL,
		historical_points INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Append-only: no UPDATE, no DELETE.
	CREATE TABLE IF NOT EXISTS recognitions (
		id TEXT PRIMARY KEY,
		giver_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		principle TEXT NOT NULL,
		reason TEXT,
		at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_recognitions_receiver ON recognitions(receiver_id, at);

	CREATE TABLE IF NOT EXISTS rewards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		required_level INTEGER NOT NULL DEFAULT 0,
		initial_stock INTEGER NOT NULL DEFAULT 0,
		point_cost INTEGER NOT NULL DEFAULT 0,
		image_url TEXT
	);

	-- Append-only except the status column, owned by the approval workflow.
	CREATE TABLE IF NOT EXISTS redemptions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		reward_id TEXT NOT NULL,
		at TEXT NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_redemptions_user ON redemptions(user_id, at);
	CREATE INDEX IF NOT EXISTS idx_redemptions_reward ON redemptions(reward_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT STORE (engine.SnapshotStore interface)
// =============================================================================

// Snapshot loads the complete raw log in one read transaction.
func (s *Store) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap engine.Snapshot

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return snap, fmt.Errorf("failed to begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	if snap.Users, err = loadUsers(ctx, tx); err != nil {
		return snap, err
	}
	if snap.Recognitions, err = loadRecognitions(ctx, tx); err != nil {
		return snap, err
	}
	if snap.Rewards, err = loadRewards(ctx, tx); err != nil {
		return snap, err
	}
	if snap.Redemptions, err = loadRedemptions(ctx, tx); err != nil {
		return snap, err
	}
	return snap, nil
}

func loadUsers(ctx context.Context, tx *sql.Tx) ([]engine.User, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, email, status, role, historical_points, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	var out []engine.User
	for rows.Next() {
		var u engine.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Status, &u.Role, &u.HistoricalPoints, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(createdAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

func loadRecognitions(ctx context.Context, tx *sql.Tx) ([]engine.RecognitionEvent, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, giver_id, receiver_id, principle, reason, at FROM recognitions ORDER BY at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load recognitions: %w", err)
	}
	defer rows.Close()

	var out []engine.RecognitionEvent
	for rows.Next() {
		var r engine.RecognitionEvent
		var reason sql.NullString
		var at string
		if err := rows.Scan(&r.ID, &r.GiverID, &r.ReceiverID, &r.Principle, &reason, &at); err != nil {
			return nil, err
		}
		r.Reason = reason.String
		r.Timestamp = parseTime(at)
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadRewards(ctx context.Context, tx *sql.Tx) ([]engine.RewardDefinition, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, description, required_level, initial_stock, point_cost, image_url FROM rewards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards: %w", err)
	}
	defer rows.Close()

	var out []engine.RewardDefinition
	for rows.Next() {
		var rw engine.RewardDefinition
		var desc, img sql.NullString
		if err := rows.Scan(&rw.ID, &rw.Name, &desc, &rw.RequiredLevel, &rw.InitialStock, &rw.PointCost, &img); err != nil {
			return nil, err
		}
		rw.Description = desc.String
		rw.ImageURL = img.String
		out = append(out, rw)
	}
	return out, rows.Err()
}

func loadRedemptions(ctx context.Context, tx *sql.Tx) ([]engine.RedemptionRecord, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, reward_id, at, status FROM redemptions ORDER BY at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load redemptions: %w", err)
	}
	defer rows.Close()

	var out []engine.RedemptionRecord
	for rows.Next() {
		var r engine.RedemptionRecord
		var at, status string
		if err := rows.Scan(&r.ID, &r.UserID, &r.RewardID, &at, &status); err != nil {
			return nil, err
		}
		r.Timestamp = parseTime(at)
		r.Status = engine.ParseRedemptionStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AppendRecognition adds an immutable recognition event.
func (s *Store) AppendRecognition(ctx context.Context, ev engine.RecognitionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recognitions (id, giver_id, receiver_id, principle, reason, at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.GiverID, ev.ReceiverID, ev.Principle, ev.Reason, ev.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to append recognition: %w", err)
	}
	return nil
}

// AppendRedemption adds a redemption record.
func (s *Store) AppendRedemption(ctx context.Context, rec engine.RedemptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO redemptions (id, user_id, reward_id, at, status) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.RewardID, rec.Timestamp.UTC().Format(time.RFC3339), rec.Status)
	if err != nil {
		return fmt.Errorf("failed to append redemption: %w", err)
	}
	return nil
}

// =============================================================================
// APPROVAL WORKFLOW (engine.ApprovalStore interface)
// =============================================================================

// SetRedemptionStatus transitions a redemption's status. Only non-terminal
// records (pending or unspecified) may move; approved and rejected are
// final.
func (s *Store) SetRedemptionStatus(ctx context.Context, id engine.RedemptionID, status engine.RedemptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM redemptions WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return engine.ErrRedemptionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read redemption status: %w", err)
	}
	if engine.RedemptionStatus(current).Terminal() {
		return engine.ErrStatusTerminal
	}

	_, err = s.db.ExecContext(ctx, `UPDATE redemptions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update redemption status: %w", err)
	}
	return nil
}

// GetRedemption returns a single redemption record, or ErrRedemptionNotFound.
func (s *Store) GetRedemption(ctx context.Context, id engine.RedemptionID) (*engine.RedemptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r engine.RedemptionRecord
	var at, status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, reward_id, at, status FROM redemptions WHERE id = ?`, id).
		Scan(&r.ID, &r.UserID, &r.RewardID, &at, &status)
	if err == sql.ErrNoRows {
		return nil, engine.ErrRedemptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get redemption: %w", err)
	}
	r.Timestamp = parseTime(at)
	r.Status = engine.ParseRedemptionStatus(status)
	return &r, nil
}

// =============================================================================
// CATALOG AND USER MAINTENANCE
// =============================================================================

// SaveUser upserts a user record.
func (s *Store) SaveUser(ctx context.Context, u engine.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, status, role, historical_points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			status = excluded.status,
			role = excluded.role,
			historical_points = excluded.historical_points`,
		u.ID, u.Name, u.Email, u.Status, u.Role, u.HistoricalPoints, u.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SaveReward upserts a catalog entry.
func (s *Store) SaveReward(ctx context.Context, rw engine.RewardDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewards (id, name, description, required_level, initial_stock, point_cost, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			required_level = excluded.required_level,
			initial_stock = excluded.initial_stock,
			point_cost = excluded.point_cost,
			image_url = excluded.image_url`,
		rw.ID, rw.Name, rw.Description, rw.RequiredLevel, rw.InitialStock, rw.PointCost, rw.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to save reward: %w", err)
	}
	return nil
}

// ImportSnapshot atomically replaces the entire raw log with a freshly
// ingested one. This is the refresh operation: full reload, never an
// incremental merge.
func (s *Store) ImportSnapshot(ctx context.Context, snap engine.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "recognitions", "rewards", "redemptions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, u := range snap.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, status, role, historical_points, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, u.Status, u.Role, u.HistoricalPoints, u.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	for _, r := range snap.Recognitions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recognitions (id, giver_id, receiver_id, principle, reason, at) VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.GiverID, r.ReceiverID, r.Principle, r.Reason, r.Timestamp.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to import recognition %s: %w", r.ID, err)
		}
	}
	for _, rw := range snap.Rewards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rewards (id, name, description, required_level, initial_stock, point_cost, image_url) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rw.ID, rw.Name, rw.Description, rw.RequiredLevel, rw.InitialStock, rw.PointCost, rw.ImageURL); err != nil {
			return fmt.Errorf("failed to import reward %s: %w", rw.ID, err)
		}
	}
	for _, rd := range snap.Redemptions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO redemptions (id, user_id, reward_id, at, status) VALUES (?, ?, ?, ?, ?)`,
			rd.ID, rd.UserID, rd.RewardID, rd.Timestamp.UTC().Format(time.RFC3339), rd.Status); err != nil {
			return fmt.Errorf("failed to import redemption %s: %w", rd.ID, err)
		}
	}

	return tx.Commit()
}

// Reset clears all tables (dev only).
func (s *Store) Reset(ctx context.Context) error {
	return s.ImportSnapshot(ctx, engine.Snapshot{})
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
