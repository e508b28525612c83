package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/queue"
)

type generateRequest struct {
	Prompt          string         `json:"prompt"`
	Type            string         `json:"type"`
	Model           string         `json:"model,omitempty"`
	Count           int            `json:"count"`
	Params          map[string]any `json:"params,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds,omitempty"`
	// UseAgent is a pointer so omission keeps enhancement on.
	UseAgent *bool  `json:"use_agent,omitempty"`
	AgentID  string `json:"agent_id,omitempty"`
}

// Generate queues a generation job and returns its id for polling.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	if req.Type == "" {
		req.Type = domain.ContentTypeImage
	}
	useAgent := true
	if req.UseAgent != nil {
		useAgent = *req.UseAgent
	}

	job := domain.GenerationRequest{
		Prompt:          req.Prompt,
		Type:            req.Type,
		Model:           req.Model,
		Count:           req.Count,
		Params:          req.Params,
		DurationSeconds: req.DurationSeconds,
		UserID:          middleware.UserIDFromContext(r.Context()),
		AgentID:         req.AgentID,
		UseAgent:        useAgent,
	}
	id, err := a.Queue.Enqueue(r.Context(), job)
	if err != nil {
		a.Logger.Error().Err(err).Msg("enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue generation")
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{
		"job_id": id,
		"status": string(queue.StatusQueued),
		"count":  job.EffectiveCount(),
	})
}

// GenerateStatus reports job progress. Unknown ids are a valid answer, not an
// error.
func (a *App) GenerateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job id required")
		return
	}
	status, err := a.Queue.Status(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", id).Msg("job status failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job status")
		return
	}
	a.json(w, http.StatusOK, status)
}
