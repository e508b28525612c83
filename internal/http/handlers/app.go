package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"server/internal/agent"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/queue"
	"server/internal/registry"
)

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	Cfg      *infra.Config
	Logger   infra.Logger
	Content  domain.ContentRepository
	Ratings  domain.RatingRepository
	Agents   domain.AgentRepository
	Users    domain.UserRepository
	Sessions domain.SessionRepository
	Stats    domain.StatsRepository
	Queue    queue.Queue
	AgentSvc *agent.Service
	Geo      geoip.CountryResolver
	Catalog  func() []registry.CatalogEntry
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// sessionID identifies an anonymous rater, from header or query string.
func (a *App) sessionID(r *http.Request) string {
	if sid := strings.TrimSpace(r.Header.Get("X-Session-Id")); sid != "" {
		return sid
	}
	return strings.TrimSpace(r.URL.Query().Get("session_id"))
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// country resolves the caller's country code, nil when unresolvable.
func (a *App) country(r *http.Request) *string {
	if a.Geo == nil {
		return nil
	}
	code, err := a.Geo.CountryCode(clientIP(r))
	if err != nil || code == "" {
		return nil
	}
	return &code
}
