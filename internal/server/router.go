package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lanternlabs/lantern/internal/api"
	"github.com/lanternlabs/lantern/internal/api/handlers"
	"github.com/lanternlabs/lantern/internal/api/middleware"
)

type RouterConfig struct {
	APIToken     string
	EntryHandler *handlers.EntryHandler
	ChatHandler  *handlers.ChatHandler
	NoteHandler  *handlers.NoteHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// entries carry raw media uploads
	const maxBodyBytes int64 = 64 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.StaticTokenAuth(cfg.APIToken))

		r.Post("/chat", cfg.ChatHandler.Message)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", cfg.NoteHandler.List)
			r.Post("/create", cfg.NoteHandler.Create)
			r.Delete("/delete/{id}", cfg.NoteHandler.Delete)
			r.Get("/search", cfg.NoteHandler.Search)
			r.Post("/summarize", cfg.EntryHandler.Summarize)
		})
	})

	return r
}
