package server

import (
	"net/http"

	"github.com/cloo-solutions/paperchat/internal/api"
	"github.com/cloo-solutions/paperchat/internal/api/handlers"
	"github.com/cloo-solutions/paperchat/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	ChatHandler     *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads carry whole PDF files, so the body cap is generous.
	const maxBodyBytes int64 = 50 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Upload)
		r.Get("/", cfg.DocumentHandler.List)
		r.Delete("/{filename}", cfg.DocumentHandler.Delete)
	})

	r.Post("/chat", cfg.ChatHandler.Chat)
	r.Get("/chat/{session_id}/history", cfg.ChatHandler.History)

	return r
}
