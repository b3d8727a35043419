package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api/handlers"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/api/middleware"
)

type RouterConfig struct {
	SourceHandler  *handlers.SourceHandler
	SessionHandler *handlers.SessionHandler
	AskHandler     *handlers.AskHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 20 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sources", func(r chi.Router) {
		r.Post("/", cfg.SourceHandler.Ingest)
		r.Get("/", cfg.SourceHandler.List)
		r.Get("/{fingerprint}", cfg.SourceHandler.Get)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", cfg.SessionHandler.Create)
		r.Put("/{id}/source", cfg.SessionHandler.SelectSource)
		r.Get("/{id}/history", cfg.SessionHandler.History)
		r.Post("/{id}/ask", cfg.AskHandler.Ask)
	})

	return r
}
