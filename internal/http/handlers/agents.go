package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

func (a *App) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := a.AgentSvc.ActiveAgents(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("list agents failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list agents")
		return
	}
	if agents == nil {
		agents = []domain.Agent{}
	}
	a.json(w, http.StatusOK, map[string]any{"agents": agents})
}

type enhanceRequest struct {
	Prompt  string `json:"prompt"`
	Type    string `json:"type"`
	AgentID string `json:"agent_id,omitempty"`
}

// EnhancePrompt previews an agent rewrite without generating anything.
func (a *App) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
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

	enh := a.AgentSvc.Enhance(r.Context(), req.Prompt, req.Type, req.AgentID)
	resp := map[string]any{
		"original_prompt": req.Prompt,
		"enhanced_prompt": enh.EnhancedPrompt,
		"agent_id":        enh.AgentID,
		"agent_name":      enh.AgentName,
		"techniques":      enh.Techniques,
	}
	if enh.Err != nil {
		resp["degraded"] = true
	}
	a.json(w, http.StatusOK, resp)
}

type variantsRequest struct {
	Prompt  string `json:"prompt"`
	Type    string `json:"type"`
	AgentID string `json:"agent_id,omitempty"`
	Count   int    `json:"count"`
}

func (a *App) PromptVariants(w http.ResponseWriter, r *http.Request) {
	var req variantsRequest
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

	variants, err := a.AgentSvc.GenerateVariants(r.Context(), req.Prompt, req.Type, req.AgentID, req.Count)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no agent available for this type")
			return
		}
		a.Logger.Error().Err(err).Msg("variants failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to generate variants")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"variants": variants})
}

func (a *App) AgentMemories(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")
	if agentID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "agent id required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	memories, err := a.Agents.ListMemories(r.Context(), agentID, limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Str("agent_id", agentID).Msg("list memories failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list memories")
		return
	}
	if memories == nil {
		memories = []domain.AgentMemory{}
	}

	insights, err := a.Agents.Insights(r.Context(), agentID)
	if err != nil {
		a.Logger.Warn().Err(err).Str("agent_id", agentID).Msg("insights failed")
	}
	a.json(w, http.StatusOK, map[string]any{
		"memories": memories,
		"insights": insights,
	})
}
