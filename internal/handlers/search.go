package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/search"
	"discourse-ai/internal/vectorstore"
)

// SearchHandler handles HTTP requests for the search operations.
type SearchHandler struct {
	engine *search.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// SemanticSearchRequest represents the HTTP request payload for lens-steered
// semantic search.
//
// swagger:model SemanticSearchRequest
type SemanticSearchRequest struct {
	Query string `json:"query"`
	// Lens steers the retrieval; empty means ai-recommended.
	Lens  string `json:"lens,omitempty"`
	Limit int    `json:"limit,omitempty"`
	// ScoreThreshold overrides the lens default when positive.
	ScoreThreshold float32 `json:"scoreThreshold,omitempty"`
	TimeRange      string  `json:"timeRange,omitempty"`
	CategoryID     string  `json:"categoryId,omitempty"`
}

// HybridSearchRequest represents the HTTP request payload for fused
// dense+sparse search.
//
// swagger:model HybridSearchRequest
type HybridSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// Fusion is "rrf" or "dbsf"; empty means rrf.
	Fusion     string `json:"fusion,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

// MultiStageSearchRequest represents the HTTP request payload for
// coarse-to-fine search.
//
// swagger:model MultiStageSearchRequest
type MultiStageSearchRequest struct {
	Query          string `json:"query"`
	Limit          int    `json:"limit,omitempty"`
	CandidateLimit int    `json:"candidateLimit,omitempty"`
	CategoryID     string `json:"categoryId,omitempty"`
}

const defaultSearchLimit = 10

// Semantic handles POST /api/search/semantic.
func (h *SearchHandler) Semantic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SemanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	lens, err := search.ParseLens(req.Lens)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	timeRange, err := search.ParseTimeRange(req.TimeRange)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.engine.Semantic(ctx, req.Query, lens, search.Options{
		Limit:          req.Limit,
		ScoreThreshold: req.ScoreThreshold,
		TimeRange:      timeRange,
		CategoryID:     req.CategoryID,
	})
	h.respond(w, r, resp, err)
}

// Hybrid handles POST /api/search/hybrid.
func (h *SearchHandler) Hybrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req HybridSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	fusion, err := parseFusion(req.Fusion)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.engine.Hybrid(ctx, req.Query, search.HybridOptions{
		Limit:   req.Limit,
		Fusion:  fusion,
		Filters: categoryFilter(req.CategoryID),
	})
	h.respond(w, r, resp, err)
}

// MultiStage handles POST /api/search/multistage.
func (h *SearchHandler) MultiStage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req MultiStageSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	resp, err := h.engine.MultiStage(ctx, req.Query, search.MultiStageOptions{
		Limit:          req.Limit,
		CandidateLimit: req.CandidateLimit,
		Filters:        categoryFilter(req.CategoryID),
	})
	h.respond(w, r, resp, err)
}

func (h *SearchHandler) respond(w http.ResponseWriter, r *http.Request, resp *search.Response, err error) {
	if err != nil {
		var verr *search.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		logger := contextutil.LoggerFromContext(r.Context())
		logger.ErrorContext(r.Context(), "search failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Search failed")
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func parseFusion(s string) (vectorstore.FusionMethod, error) {
	switch s {
	case "":
		return vectorstore.FusionRRF, nil
	case string(vectorstore.FusionRRF):
		return vectorstore.FusionRRF, nil
	case string(vectorstore.FusionDBSF):
		return vectorstore.FusionDBSF, nil
	default:
		return "", &search.ValidationError{Field: "fusion", Message: "must be rrf or dbsf"}
	}
}

func categoryFilter(categoryID string) []vectorstore.Condition {
	if categoryID == "" {
		return nil
	}
	return []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldCategoryID, categoryID)}
}
