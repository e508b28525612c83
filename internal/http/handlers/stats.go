package handlers

import (
	"net/http"

	"server/internal/middleware"
)

func (a *App) StatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Stats.GetStats(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, stats)
}

// StatsSummary reports the caller's own rating progress.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	var sessionID *string
	if sid := a.sessionID(r); sid != "" {
		sessionID = &sid
	}
	userID := middleware.UserIDFromContext(r.Context())

	counts, err := a.Stats.GetSummaryCounts(r.Context(), sessionID, userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load summary")
		return
	}
	a.json(w, http.StatusOK, counts)
}
