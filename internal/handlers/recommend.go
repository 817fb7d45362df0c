package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/recommend"
)

// RecommendHandler handles HTTP requests for the personalized feed.
type RecommendHandler struct {
	engine *recommend.Engine
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(engine *recommend.Engine) *RecommendHandler {
	return &RecommendHandler{engine: engine}
}

const defaultRecommendLimit = 20

// ServeHTTP handles GET /api/recommendations/{userID}.
func (h *RecommendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID := chi.URLParam(r, "userID")

	limit := defaultRecommendLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	mode, err := recommend.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.engine.Recommend(ctx, userID, recommend.Options{Limit: limit, Mode: mode})
	if err != nil {
		var verr *recommend.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		logger.ErrorContext(ctx, "recommendation failed", "error", err, "userId", userID)
		writeError(w, r, http.StatusInternalServerError, "Recommendation failed")
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}
