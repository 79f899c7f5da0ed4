package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"helpcenter-sync/internal/chunking"
	"helpcenter-sync/internal/handlers"
	"helpcenter-sync/internal/state"
)

const healthPath = "/api/health"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store        state.Store
	Syncer       handlers.Syncer
	ChunkOptions chunking.Options
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	healthHandler := handlers.NewHealthHandler(deps.Store)
	chunkHandler := handlers.NewChunkHandler(deps.ChunkOptions)
	syncHandler := handlers.NewSyncHandler(deps.Syncer)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/chunk", chunkHandler)
		r.Method(http.MethodPost, "/sync", syncHandler)
	})

	return r
}
