package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"discourse-ai/internal/embedding"
	"discourse-ai/internal/ranking"
	"discourse-ai/internal/search"
	"discourse-ai/internal/storage"
	storagemocks "discourse-ai/internal/storage/mocks"
	vsmocks "discourse-ai/internal/vectorstore/mocks"
)

type stubEmbedder struct {
	providers bool
	vector    []float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, kind embedding.Kind) embedding.Result {
	return embedding.Result{Vector: s.vector, Provider: "stub", Fallback: !s.providers}
}

func (s *stubEmbedder) HasProviders() bool { return s.providers }

func newDegradedSearchHandler(t *testing.T, ctrl *gomock.Controller, posts *storagemocks.MockPostStore) *SearchHandler {
	t.Helper()
	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().Ready(gomock.Any()).Return(false).AnyTimes()
	engine := search.NewEngine(store, &stubEmbedder{}, posts, search.Config{
		Collection:      "posts",
		SparseVocabSize: 1024,
		Ranking:         ranking.DefaultOptions(),
	})
	return NewSearchHandler(engine)
}

func TestSearchHandlerSemanticKeywordFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	posts := storagemocks.NewMockPostStore(ctrl)
	posts.EXPECT().KeywordSearch(gomock.Any(), "go concurrency", 10).
		Return([]storage.Post{{ID: "post-1", Title: "go concurrency patterns"}}, nil)

	handler := newDegradedSearchHandler(t, ctrl, posts)

	req := httptest.NewRequest(http.MethodPost, "/api/search/semantic",
		strings.NewReader(`{"query":"go concurrency"}`))
	w := httptest.NewRecorder()
	handler.Semantic(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Semantic() status = %v, want %v, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp search.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SearchType != search.SearchTypeKeyword {
		t.Errorf("SearchType = %q, want %q", resp.SearchType, search.SearchTypeKeyword)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "post-1" {
		t.Errorf("Results = %+v, want single post-1 hit", resp.Results)
	}
}

func TestSearchHandlerSemanticInvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := newDegradedSearchHandler(t, ctrl, storagemocks.NewMockPostStore(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/search/semantic", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.Semantic(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Semantic() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestSearchHandlerSemanticUnknownLens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := newDegradedSearchHandler(t, ctrl, storagemocks.NewMockPostStore(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/search/semantic",
		strings.NewReader(`{"query":"anything","lens":"psychic"}`))
	w := httptest.NewRecorder()
	handler.Semantic(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Semantic() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "lens") {
		t.Errorf("error body %q should name the lens field", w.Body.String())
	}
}

func TestSearchHandlerHybridRejectsUnknownFusion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := newDegradedSearchHandler(t, ctrl, storagemocks.NewMockPostStore(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/search/hybrid",
		strings.NewReader(`{"query":"anything","fusion":"average"}`))
	w := httptest.NewRecorder()
	handler.Hybrid(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Hybrid() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestSearchHandlerMultiStageEmptyQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := newDegradedSearchHandler(t, ctrl, storagemocks.NewMockPostStore(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/search/multistage",
		strings.NewReader(`{"query":"  "}`))
	w := httptest.NewRecorder()
	handler.MultiStage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("MultiStage() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}
