package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
	)

	auth := middleware.AuthJWT(app.Cfg.JWTSecret)
	optional := middleware.OptionalAuth(app.Cfg.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Post("/login", app.Login)
		r.Get("/models", app.Models)

		r.Group(func(r chi.Router) {
			r.Use(optional)
			r.Get("/next-content", app.NextContent)
			r.Get("/stats/summary", app.StatsSummary)
			r.Post("/generate", app.Generate)
			r.Get("/generate/{id}", app.GenerateStatus)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
				r.Post("/rate", app.Rate)
			})
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", app.ListAgents)
			r.Post("/enhance", app.EnhancePrompt)
			r.Post("/variants", app.PromptVariants)
			r.Get("/{id}/memories", app.AgentMemories)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/stats", app.StatsOverview)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireAdmin)
			r.Get("/admin/data", app.AdminData)
			r.Delete("/admin/data/{id}", app.DeleteContent)
			r.Post("/content", app.CreateContent)
			r.Put("/content/{id}", app.UpdateContent)
		})
	})

	return r
}
