package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"discourse-ai/internal/ranking"
	"discourse-ai/internal/recommend"
	"discourse-ai/internal/storage"
	storagemocks "discourse-ai/internal/storage/mocks"
	vsmocks "discourse-ai/internal/vectorstore/mocks"
)

func newRecommendRouter(engine *recommend.Engine) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/api/recommendations/{userID}", NewRecommendHandler(engine))
	return r
}

func newColdUserEngine(ctrl *gomock.Controller, posts *storagemocks.MockPostStore) *recommend.Engine {
	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().Ready(gomock.Any()).Return(false).AnyTimes()

	interactions := storagemocks.NewMockInteractionStore(ctrl)
	interactions.EXPECT().RecentComments(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	interactions.EXPECT().RecentVotes(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	interactions.EXPECT().RecentBookmarks(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	interactions.EXPECT().SeenPostIDs(gomock.Any(), gomock.Any()).Return(map[string]bool{}, nil).AnyTimes()
	posts.EXPECT().RecentByUser(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	return recommend.NewEngine(store, &stubEmbedder{}, posts, interactions, nil, recommend.Config{
		PostsCollection:           "posts",
		RecommendationsCollection: "recommendations",
		SparseVocabSize:           1024,
		VectorSize:                64,
		Ranking:                   ranking.DefaultOptions(),
	})
}

func TestRecommendHandlerServesColdUserFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	posts := storagemocks.NewMockPostStore(ctrl)
	posts.EXPECT().Recent(gomock.Any(), "user-1", 5).
		Return([]storage.Post{{ID: "post-1"}, {ID: "post-2"}}, nil)

	router := newRecommendRouter(newColdUserEngine(ctrl, posts))

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/user-1?limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp recommend.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
	}
	if resp.Recommendations[0].Algorithm != recommend.AlgorithmFallback {
		t.Errorf("algorithm = %q, want %q", resp.Recommendations[0].Algorithm, recommend.AlgorithmFallback)
	}
}

func TestRecommendHandlerRejectsBadLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := newRecommendRouter(newColdUserEngine(ctrl, storagemocks.NewMockPostStore(ctrl)))

	for _, limit := range []string{"0", "-3", "lots"} {
		req := httptest.NewRequest(http.MethodGet, "/api/recommendations/user-1?limit="+limit, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%q status = %v, want %v", limit, w.Code, http.StatusBadRequest)
		}
	}
}

func TestRecommendHandlerRejectsUnknownMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := newRecommendRouter(newColdUserEngine(ctrl, storagemocks.NewMockPostStore(ctrl)))

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/user-1?mode=psychic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestParseModeDefaultsToHybrid(t *testing.T) {
	mode, err := recommend.ParseMode("")
	if err != nil {
		t.Fatalf("ParseMode(\"\") error = %v", err)
	}
	if mode != recommend.ModeHybrid {
		t.Errorf("mode = %q, want %q", mode, recommend.ModeHybrid)
	}
}
