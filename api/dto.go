/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP API, kept separate from the engine entities so
  wire format changes never leak into the computation core.
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cresa/recognition-engine/engine"
)

// =============================================================================
// RESPONSE DTOs
// =============================================================================

type UserDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Status           string `json:"status"`
	Role             string `json:"role"`
	HistoricalPoints int    `json:"historical_points"`
}

type ProgressDTO struct {
	Percentage    float64 `json:"percentage"`
	PointsNeeded  int     `json:"points_needed"`
	NextLevelName string  `json:"next_level_name"`
}

type LevelDTO struct {
	Level          int    `json:"level"`
	Name           string `json:"name"`
	RequiredPoints int    `json:"required_points"`
}

type BadgeDTO struct {
	Name        string `json:"name"`
	Principle   string `json:"principle"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Earned      bool   `json:"earned"`
	EarnedAt    string `json:"earned_at,omitempty"`
}

type UserSummaryDTO struct {
	User          UserDTO     `json:"user"`
	ReceivedCount int         `json:"received_count"`
	GrossPoints   int         `json:"gross_points"`
	SpentPoints   int         `json:"spent_points"`
	NetPoints     int         `json:"net_points"`
	Level         LevelDTO    `json:"level"`
	Progress      ProgressDTO `json:"progress"`
	Badges        []BadgeDTO  `json:"badges"`
}

type RewardDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RequiredLevel int    `json:"required_level"`
	InitialStock  int    `json:"initial_stock"`
	PointCost     int    `json:"point_cost"`
	ImageURL      string `json:"image_url,omitempty"`
	Available     int    `json:"available"`
}

type RecognitionDTO struct {
	ID         string `json:"id"`
	GiverID    string `json:"giver_id"`
	ReceiverID string `json:"receiver_id"`
	Principle  string `json:"principle"`
	Reason     string `json:"reason"`
	Timestamp  string `json:"timestamp"`
}

type RedemptionDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	RewardID  string `json:"reward_id"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type LeaderboardEntryDTO struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Level     int    `json:"level"`
	LevelName string `json:"level_name"`
}

type PrincipleCountDTO struct {
	Principle string `json:"principle"`
	Count     int    `json:"count"`
}

// =============================================================================
// REQUEST DTOs
// =============================================================================

type GrantRecognitionRequest struct {
	GiverID    string `json:"giver_id"`
	ReceiverID string `json:"receiver_id"`
	Principle  string `json:"principle"`
	Reason     string `json:"reason"`
}

type RedemptionRequest struct {
	UserID   string `json:"user_id"`
	RewardID string `json:"reward_id"`
}

// =============================================================================
// DTO MAPPERS
// =============================================================================

func toUserDTO(u engine.User) UserDTO {
	return UserDTO{
		ID:               string(u.ID),
		Name:             u.Name,
		Email:            u.Email,
		Status:           string(u.Status),
		Role:             string(u.Role),
		HistoricalPoints: u.HistoricalPoints,
	}
}

func toLevelDTO(l engine.LevelEntry) LevelDTO {
	return LevelDTO{Level: l.Level, Name: l.Name, RequiredPoints: l.RequiredPoints}
}

func toBadgeDTO(b engine.EarnedBadge) BadgeDTO {
	dto := BadgeDTO{
		Name:        b.Name,
		Principle:   b.Principle,
		Description: b.Description,
		Count:       b.Count,
		Earned:      b.Earned,
	}
	if b.EarnedAt != nil {
		dto.EarnedAt = b.EarnedAt.Format(time.RFC3339)
	}
	return dto
}

func toSummaryDTO(s *engine.UserSummary) UserSummaryDTO {
	badges := make([]BadgeDTO, 0, len(s.BadgesEarned))
	for _, b := range s.BadgesEarned {
		badges = append(badges, toBadgeDTO(b))
	}
	return UserSummaryDTO{
		User:          toUserDTO(s.User),
		ReceivedCount: s.ReceivedCount,
		GrossPoints:   s.GrossPoints,
		SpentPoints:   s.SpentPoints,
		NetPoints:     s.NetPoints,
		Level:         toLevelDTO(s.Level),
		Progress: ProgressDTO{
			Percentage:    s.Progress.Percentage,
			PointsNeeded:  s.Progress.PointsNeeded,
			NextLevelName: s.Progress.NextLevelName,
		},
		Badges: badges,
	}
}

func toRecognitionDTO(r engine.RecognitionEvent) RecognitionDTO {
	return RecognitionDTO{
		ID:         string(r.ID),
		GiverID:    string(r.GiverID),
		ReceiverID: string(r.ReceiverID),
		Principle:  r.Principle,
		Reason:     r.Reason,
		Timestamp:  r.Timestamp.Format(time.RFC3339),
	}
}

func toRedemptionDTO(r engine.RedemptionRecord) RedemptionDTO {
	return RedemptionDTO{
		ID:        string(r.ID),
		UserID:    string(r.UserID),
		RewardID:  string(r.RewardID),
		Timestamp: r.Timestamp.Format(time.RFC3339),
		Status:    string(r.Status),
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
