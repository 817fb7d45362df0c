package handlers

import (
	"context"
	"net/http"
	"time"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/vectorstore"
)

// HealthHandler handles HTTP requests for liveness and readiness checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall status: "ok" or "degraded"
	Status string `json:"status"`

	// Timestamp of the check
	Timestamp string `json:"timestamp"`

	// Individual check results, only populated for readiness
	Checks map[string]string `json:"checks,omitempty"`
}

// Live handles GET /healthz. It reports process liveness only and never
// touches dependencies.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /readyz.
//
// Search and recommendations degrade to keyword and recency fallbacks while
// the vector store is down, so readiness reports degraded with a 503 rather
// than failing outright.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	status := "ok"
	code := http.StatusOK

	if h.vectorStore != nil && h.vectorStore.Ready(checkCtx) {
		checks["vector_store"] = "ok"
	} else {
		checks["vector_store"] = "unavailable"
		status = "degraded"
		code = http.StatusServiceUnavailable
		logger.WarnContext(ctx, "readiness check failed", "check", "vector_store")
	}

	writeJSON(w, r, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
