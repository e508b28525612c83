package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/middleware"
)

type rateRequest struct {
	ContentID int64   `json:"content_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
}

const feedbackTimeout = 30 * time.Second

// Rate records one vote. The learning loop runs detached so its latency and
// failures never reach the rater.
func (a *App) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ContentID == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "content_id required")
		return
	}
	if !domain.ValidRatingValue(req.Rating) {
		a.error(w, http.StatusBadRequest, "invalid_rating", "rating must be -2, -1, 1 or 2")
		return
	}

	sid := a.sessionID(r)
	userID := middleware.UserIDFromContext(r.Context())
	if sid == "" && userID == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "session id required")
		return
	}

	if sid != "" {
		if err := a.Sessions.Touch(r.Context(), sid, a.country(r)); err != nil {
			a.Logger.Warn().Err(err).Str("session_id", sid).Msg("session touch failed")
		}
	}

	rating := domain.Rating{
		ContentID: req.ContentID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if sid != "" {
		rating.SessionID = &sid
	}
	if err := a.Ratings.RecordRating(r.Context(), rating); err != nil {
		a.Logger.Error().Err(err).Int64("content_id", req.ContentID).Msg("record rating failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record rating")
		return
	}

	go func(contentID int64, value int) {
		ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
		defer cancel()
		a.AgentSvc.AnalyzeRatingFeedback(ctx, contentID, value)
	}(req.ContentID, req.Rating)

	a.json(w, http.StatusOK, map[string]any{"status": "ok"})
}
