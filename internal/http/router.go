package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"discourse-ai/internal/handlers"
	"discourse-ai/internal/recommend"
	"discourse-ai/internal/search"
	"discourse-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	SearchEngine    *search.Engine
	RecommendEngine *recommend.Engine
	Store           vectorstore.VectorStore
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Add CORS and request-scoped logging
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	searchHandler := handlers.NewSearchHandler(deps.SearchEngine)
	recommendHandler := handlers.NewRecommendHandler(deps.RecommendEngine)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/search/semantic", searchHandler.Semantic)
		r.Post("/search/hybrid", searchHandler.Hybrid)
		r.Post("/search/multistage", searchHandler.MultiStage)
		r.Method(http.MethodGet, "/recommendations/{userID}", recommendHandler)
	})

	return r
}
