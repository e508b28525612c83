package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
)

// NextContent serves the rater feed: the oldest content the caller has not
// voted on yet.
func (a *App) NextContent(w http.ResponseWriter, r *http.Request) {
	filter := domain.NextContentFilter{Ascending: true}
	if sid := a.sessionID(r); sid != "" {
		filter.SessionID = &sid
	}
	filter.UserID = middleware.UserIDFromContext(r.Context())
	if types := r.URL.Query().Get("type"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Types = append(filter.Types, t)
			}
		}
	}
	if r.URL.Query().Get("order") == "newest" {
		filter.Ascending = false
	}

	content, err := a.Content.GetNextContent(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusOK, map[string]any{"done": true})
			return
		}
		a.Logger.Error().Err(err).Msg("next content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load content")
		return
	}
	a.json(w, http.StatusOK, content)
}

// AdminData lists content with pagination for the admin view.
func (a *App) AdminData(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	items, err := a.Content.ListContent(r.Context(), page, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list content")
		return
	}
	total, err := a.Content.CountContent(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("count content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to count content")
		return
	}
	if items == nil {
		items = []domain.Content{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func decodeContentInput(r *http.Request) (domain.ContentInput, error) {
	var in domain.ContentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, err
	}
	if in.Type == "" {
		return in, errors.New("type required")
	}
	return in, nil
}

func (a *App) CreateContent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeContentInput(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	content, err := a.Content.CreateContent(r.Context(), in)
	if err != nil {
		a.Logger.Error().Err(err).Msg("create content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create content")
		return
	}
	a.json(w, http.StatusCreated, content)
}

func (a *App) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid content id")
		return
	}
	in, err := decodeContentInput(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	content, err := a.Content.UpdateContent(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "content not found")
			return
		}
		a.Logger.Error().Err(err).Int64("content_id", id).Msg("update content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update content")
		return
	}
	a.json(w, http.StatusOK, content)
}

func (a *App) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid content id")
		return
	}
	if err := a.Content.DeleteContent(r.Context(), id); err != nil {
		a.Logger.Error().Err(err).Int64("content_id", id).Msg("delete content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete content")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
