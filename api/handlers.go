/*
handlers.go - HTTP handlers for the recognition platform

PURPOSE:
  Exposes the engine via REST. Handlers parse and validate input, load a
  snapshot, delegate to the engine (or the guard, for the two write
  paths), and serialize the result. Derived state is recomputed from the
  snapshot on every request - nothing here caches points, levels or
  stock.

ERROR HANDLING:
  Admission denials are expected outcomes, mapped to client statuses:
  - 403: level too low
  - 409: insufficient points, out of stock, terminal status transition
  - 404: unknown user/reward/redemption
  - 400: malformed input
  - 500: snapshot/store failures

SEE ALSO:
  - dto.go: wire shapes
  - server.go: routing and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cresa/recognition-engine/engine"
	"github.com/cresa/recognition-engine/export"
)

// Store is what the HTTP surface needs from persistence: the engine's
// snapshot contract plus the approval workflow.
type Store interface {
	engine.SnapshotStore
	engine.ApprovalStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Store
	Engine *engine.Engine
	Guard  *engine.Guard
	Log    *zap.Logger
}

// NewHandler wires a handler. The guard shares the handler's store so
// admissions and reads see the same log.
func NewHandler(store Store, eng *engine.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:  store,
		Engine: eng,
		Guard:  engine.NewGuard(store, eng),
		Log:    log,
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns every user with their derived summary.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	out := make([]UserSummaryDTO, 0, len(snap.Users))
	for _, u := range snap.Users {
		summary, err := h.Engine.Summarize(snap, u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to summarize user", err)
			return
		}
		out = append(out, toSummaryDTO(summary))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetUserSummary returns the full derived state for one user.
func (h *Handler) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	id := engine.UserID(chi.URLParam(r, "id"))

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	summary, err := h.Engine.Summarize(snap, id)
	if errors.Is(err, engine.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize user", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetUserBadges returns the badge evaluation for one user.
func (h *Handler) GetUserBadges(w http.ResponseWriter, r *http.Request) {
	id := engine.UserID(chi.URLParam(r, "id"))

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	if snap.UserByID(id) == nil {
		writeError(w, http.StatusNotFound, "User not found", engine.ErrUserNotFound)
		return
	}

	badges := h.Engine.Badges.CalculateEarnedBadges(snap.ReceivedBy(id))
	out := make([]BadgeDTO, 0, len(badges))
	for _, b := range badges {
		out = append(out, toBadgeDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLeaderboard returns the ranked active users. ?limit=N caps the list
// (default 10, the dashboard widget size).
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	entries := h.Engine.Leaderboard(snap, limit)
	out := make([]LeaderboardEntryDTO, 0, len(entries))
	for i, e := range entries {
		out = append(out, LeaderboardEntryDTO{
			Rank:      i + 1,
			UserID:    string(e.UserID),
			Name:      e.Name,
			Points:    e.Points,
			Level:     e.Level.Level,
			LevelName: e.Level.Name,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// REWARD HANDLERS
// =============================================================================

// ListRewards returns the catalog with derived available stock.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	withStock := engine.RewardsWithStock(snap.Rewards, snap.Redemptions)
	out := make([]RewardDTO, 0, len(withStock))
	for _, rw := range withStock {
		out = append(out, RewardDTO{
			ID:            string(rw.ID),
			Name:          rw.Name,
			Description:   rw.Description,
			RequiredLevel: rw.RequiredLevel,
			InitialStock:  rw.InitialStock,
			PointCost:     rw.PointCost,
			ImageURL:      rw.ImageURL,
			Available:     rw.Available,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// RECOGNITION HANDLERS
// =============================================================================

// ListRecognitions returns recognitions, optionally filtered by receiver.
func (h *Handler) ListRecognitions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	events := snap.Recognitions
	if receiver := r.URL.Query().Get("receiver_id"); receiver != "" {
		events = snap.ReceivedBy(engine.UserID(receiver))
	}

	out := make([]RecognitionDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toRecognitionDTO(ev))
	}
	writeJSON(w, http.StatusOK, out)
}

// GrantRecognition records a new recognition event.
func (h *Handler) GrantRecognition(w http.ResponseWriter, r *http.Request) {
	var req GrantRecognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.GiverID == "" || req.ReceiverID == "" || req.Principle == "" {
		writeError(w, http.StatusBadRequest, "giver_id, receiver_id and principle are required", nil)
		return
	}

	ev, err := h.Guard.GrantRecognition(r.Context(),
		engine.UserID(req.GiverID), engine.UserID(req.ReceiverID), req.Principle, req.Reason)
	switch {
	case errors.Is(err, engine.ErrSelfRecognition),
		errors.Is(err, engine.ErrNotGranter),
		errors.Is(err, engine.ErrInactiveReceiver):
		writeError(w, http.StatusForbidden, "Recognition not allowed", err)
		return
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "User not found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to record recognition", err)
		return
	}

	h.Log.Info("recognition granted",
		zap.String("giver", req.GiverID),
		zap.String("receiver", req.ReceiverID),
		zap.String("principle", req.Principle))
	writeJSON(w, http.StatusCreated, toRecognitionDTO(*ev))
}

// =============================================================================
// REDEMPTION HANDLERS
// =============================================================================

// ListRedemptions returns redemptions, optionally filtered by user.
func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	records := snap.Redemptions
	if user := r.URL.Query().Get("user_id"); user != "" {
		records = snap.RedemptionsBy(engine.UserID(user))
	}

	out := make([]RedemptionDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toRedemptionDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// RequestRedemption is the admission gate: points, stock and level are
// re-validated atomically with the append.
func (h *Handler) RequestRedemption(w http.ResponseWriter, r *http.Request) {
	var req RedemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || req.RewardID == "" {
		writeError(w, http.StatusBadRequest, "user_id and reward_id are required", nil)
		return
	}

	rec, err := h.Guard.RequestRedemption(r.Context(), engine.UserID(req.UserID), engine.RewardID(req.RewardID))
	switch {
	case errors.Is(err, engine.ErrLevelTooLow):
		writeError(w, http.StatusForbidden, "Level too low for this reward", err)
		return
	case engine.IsAdmissionDenial(err):
		writeError(w, http.StatusConflict, "Redemption denied", err)
		return
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Unknown user or reward", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to process redemption", err)
		return
	}

	h.Log.Info("redemption admitted",
		zap.String("user", req.UserID),
		zap.String("reward", req.RewardID),
		zap.String("redemption", string(rec.ID)))
	writeJSON(w, http.StatusCreated, toRedemptionDTO(*rec))
}

// ApproveRedemption moves a pending redemption to approved (workflow,
// store-level; the engine only reads status).
func (h *Handler) ApproveRedemption(w http.ResponseWriter, r *http.Request) {
	h.setRedemptionStatus(w, r, engine.StatusApproved)
}

// RejectRedemption moves a pending redemption to rejected, which refunds
// the points on the next recompute.
func (h *Handler) RejectRedemption(w http.ResponseWriter, r *http.Request) {
	h.setRedemptionStatus(w, r, engine.StatusRejected)
}

func (h *Handler) setRedemptionStatus(w http.ResponseWriter, r *http.Request, status engine.RedemptionStatus) {
	id := engine.RedemptionID(chi.URLParam(r, "id"))

	err := h.Store.SetRedemptionStatus(r.Context(), id, status)
	switch {
	case errors.Is(err, engine.ErrRedemptionNotFound):
		writeError(w, http.StatusNotFound, "Redemption not found", err)
		return
	case errors.Is(err, engine.ErrStatusTerminal):
		writeError(w, http.StatusConflict, "Redemption already resolved", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to update redemption", err)
		return
	}

	h.Log.Info("redemption resolved",
		zap.String("redemption", string(id)),
		zap.String("status", string(status)))
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": string(status)})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// GetPrincipleStats returns recognition counts grouped by principle.
func (h *Handler) GetPrincipleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	counts := engine.PrincipleCounts(snap.Recognitions)
	out := make([]PrincipleCountDTO, 0, len(counts))
	for _, c := range counts {
		out = append(out, PrincipleCountDTO{Principle: c.Principle, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

// ExportResults streams the per-user results CSV.
func (h *Handler) ExportResults(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	if err := export.WriteResults(w, h.Engine, snap); err != nil {
		h.Log.Error("results export failed", zap.Error(err))
	}
}
