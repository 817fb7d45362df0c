// Package search implements lens-steered semantic, hybrid, and multi-stage
// retrieval over the posts collection, with a keyword fallback against the
// relational store when the vector path is unavailable.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/embedding"
	"discourse-ai/internal/ranking"
	"discourse-ai/internal/storage"
	"discourse-ai/internal/textprep"
	"discourse-ai/internal/vectorstore"
)

// Search provenance tags returned to callers so they can explain where
// results came from.
const (
	SearchTypeSemantic   = "semantic"
	SearchTypeHybrid     = "hybrid"
	SearchTypeMultiStage = "multistage"
	SearchTypeKeyword    = "keyword"
)

// ValidationError reports caller input that cannot be coerced into a valid
// search. It is the only error kind the engine surfaces.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Embedder is the slice of the provider chain the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string, kind embedding.Kind) embedding.Result
	HasProviders() bool
}

// Options parameterizes a lens-steered semantic search.
type Options struct {
	Limit int
	// ScoreThreshold overrides the lens default when positive.
	ScoreThreshold float32
	TimeRange      TimeRange
	CategoryID     string
	// Filters are extra payload conditions ANDed into the query.
	Filters []vectorstore.Condition
}

// HybridOptions parameterizes a fused dense+sparse search.
type HybridOptions struct {
	Limit int
	// Fusion defaults to RRF.
	Fusion  vectorstore.FusionMethod
	Filters []vectorstore.Condition
}

// MultiStageOptions parameterizes the coarse-to-fine search.
type MultiStageOptions struct {
	Limit int
	// CandidateLimit bounds the coarse first pass; 0 lets the store pick.
	CandidateLimit int
	Filters        []vectorstore.Condition
}

// Result is one ranked hit returned to the caller.
type Result struct {
	ID    string  `json:"entityId"`
	Score float64 `json:"score"`
	// RelevanceScore is the keyword-overlap heuristic blended with
	// lens-specific signals, attached for explainability.
	RelevanceScore float64        `json:"relevanceScore"`
	Serendipity    bool           `json:"serendipity,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
}

// Response is a ranked result list tagged with its provenance.
type Response struct {
	Results    []Result `json:"results"`
	SearchType string   `json:"searchType"`
}

// Engine composes the embedding chain, the vector store, and the relational
// fallback into the caller-facing search operations.
type Engine struct {
	store      vectorstore.VectorStore
	embedder   Embedder
	posts      storage.PostStore
	collection string
	vocabSize  int
	rrfK       float64
	rankOpts   ranking.Options

	now func() time.Time
}

// Config holds the engine's construction parameters.
type Config struct {
	Collection      string
	SparseVocabSize int
	// RRFConstant tunes the store's client-side fusion fallback; 0 uses the
	// standard damping constant.
	RRFConstant float64
	Ranking     ranking.Options
}

// NewEngine creates a search engine over the given stores.
func NewEngine(store vectorstore.VectorStore, embedder Embedder, posts storage.PostStore, cfg Config) *Engine {
	return &Engine{
		store:      store,
		embedder:   embedder,
		posts:      posts,
		collection: cfg.Collection,
		vocabSize:  cfg.SparseVocabSize,
		rrfK:       cfg.RRFConstant,
		rankOpts:   cfg.Ranking,
		now:        time.Now,
	}
}

// StoreReady reports whether the vector path is available. Callers use it to
// decide UI messaging before issuing a search.
func (e *Engine) StoreReady(ctx context.Context) bool {
	return e.store.Ready(ctx)
}

// Semantic runs a lens-steered dense search. Caller-input problems surface as
// a ValidationError; infrastructure problems degrade to the keyword fallback.
func (e *Engine) Semantic(ctx context.Context, query string, lens Lens, opts Options) (*Response, error) {
	if err := validateQuery(query, opts.Limit); err != nil {
		return nil, err
	}
	if _, ok := lenses[lens]; !ok {
		return nil, &ValidationError{Field: "lens", Message: fmt.Sprintf("unknown lens %q", lens)}
	}

	if e.degraded(ctx) {
		return e.keywordFallback(ctx, query, opts.Limit), nil
	}

	now := e.now()
	spec := lens.spec()
	embedded := e.embedder.Embed(ctx, lens.Rewrite(query), embedding.KindQuery)

	threshold := spec.threshold
	if opts.ScoreThreshold > 0 {
		threshold = opts.ScoreThreshold
	}

	filter := e.buildFilter(opts, spec.conditions(now))
	hits, err := e.store.SearchDense(ctx, e.collection, vectorstore.DenseParams{
		Vector:         embedded.Vector,
		Limit:          opts.Limit * 2,
		ScoreThreshold: threshold,
		Filter:         filter,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "dense search failed, falling back to keyword search", "error", err)
		return e.keywordFallback(ctx, query, opts.Limit), nil
	}

	results := e.rank(hits, opts.Limit, now, func(payload map[string]any) float64 {
		title := vectorstore.PayloadString(payload, "title")
		return keywordRelevance(query, title, "") + spec.bonus(payload, now)
	})
	return &Response{Results: results, SearchType: SearchTypeSemantic}, nil
}

// Hybrid runs a fused dense+sparse search. The sparse side is built from the
// query's hashed terms so exact keyword hits survive embedding drift.
func (e *Engine) Hybrid(ctx context.Context, query string, opts HybridOptions) (*Response, error) {
	if err := validateQuery(query, opts.Limit); err != nil {
		return nil, err
	}

	if e.degraded(ctx) {
		return e.keywordFallback(ctx, query, opts.Limit), nil
	}

	now := e.now()
	embedded := e.embedder.Embed(ctx, query, embedding.KindQuery)
	fusion := opts.Fusion
	if fusion == "" {
		fusion = vectorstore.FusionRRF
	}

	filter := e.buildFilter(Options{Filters: opts.Filters}, nil)
	hits, err := e.store.SearchHybrid(ctx, e.collection, vectorstore.HybridParams{
		Dense:       embedded.Vector,
		Sparse:      embedding.HashSparse(query, e.vocabSize),
		Limit:       opts.Limit * 2,
		Fusion:      fusion,
		RRFConstant: e.rrfK,
		Filter:      filter,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "hybrid search failed, falling back to keyword search", "error", err)
		return e.keywordFallback(ctx, query, opts.Limit), nil
	}

	results := e.rank(hits, opts.Limit, now, func(payload map[string]any) float64 {
		return keywordRelevance(query, vectorstore.PayloadString(payload, "title"), "")
	})
	return &Response{Results: results, SearchType: SearchTypeHybrid}, nil
}

// MultiStage runs the coarse-to-fine two-stage search.
func (e *Engine) MultiStage(ctx context.Context, query string, opts MultiStageOptions) (*Response, error) {
	if err := validateQuery(query, opts.Limit); err != nil {
		return nil, err
	}
	if opts.CandidateLimit < 0 {
		return nil, &ValidationError{Field: "candidateLimit", Message: "must be >= 0"}
	}

	if e.degraded(ctx) {
		return e.keywordFallback(ctx, query, opts.Limit), nil
	}

	now := e.now()
	embedded := e.embedder.Embed(ctx, query, embedding.KindQuery)
	filter := e.buildFilter(Options{Filters: opts.Filters}, nil)
	hits, err := e.store.MultiStageSearch(ctx, e.collection, vectorstore.MultiStageParams{
		Vector:         embedded.Vector,
		CandidateLimit: opts.CandidateLimit,
		FinalLimit:     opts.Limit * 2,
		Filter:         filter,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "multi-stage search failed, falling back to keyword search", "error", err)
		return e.keywordFallback(ctx, query, opts.Limit), nil
	}

	results := e.rank(hits, opts.Limit, now, func(payload map[string]any) float64 {
		return keywordRelevance(query, vectorstore.PayloadString(payload, "title"), "")
	})
	return &Response{Results: results, SearchType: SearchTypeMultiStage}, nil
}

func validateQuery(query string, limit int) error {
	if strings.TrimSpace(query) == "" {
		return &ValidationError{Field: "query", Message: "must not be empty"}
	}
	if limit <= 0 {
		return &ValidationError{Field: "limit", Message: "must be > 0"}
	}
	return nil
}

// degraded reports whether the vector path cannot serve this request.
func (e *Engine) degraded(ctx context.Context) bool {
	return !e.embedder.HasProviders() || !e.store.Ready(ctx)
}

// buildFilter combines the base type predicate with the caller's category,
// time range, and extra conditions, plus the lens fragment.
func (e *Engine) buildFilter(opts Options, lensConds []vectorstore.Condition) *vectorstore.Filter {
	filter := &vectorstore.Filter{
		Must: []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldType, vectorstore.TypePost)},
	}
	if opts.CategoryID != "" {
		filter.Must = append(filter.Must, vectorstore.Eq(vectorstore.FieldCategoryID, opts.CategoryID))
	}
	if lower, ok := opts.TimeRange.LowerBound(e.now()); ok {
		filter.Must = append(filter.Must, vectorstore.Gte(vectorstore.FieldCreatedTs, float64(lower)))
	}
	filter.Must = append(filter.Must, lensConds...)
	filter.Must = append(filter.Must, opts.Filters...)
	return filter
}

// rank runs the shared post-pass: time decay, diversification, truncation,
// and relevance annotation.
func (e *Engine) rank(hits []vectorstore.SearchResult, limit int, now time.Time, relevance func(map[string]any) float64) []Result {
	payloads := make(map[string]map[string]any, len(hits))
	cands := make([]ranking.Candidate, 0, len(hits))
	for _, hit := range hits {
		payloads[hit.ID] = hit.Payload
		cands = append(cands, candidateFromHit(hit))
	}

	decayed := ranking.ApplyTimeDecay(cands, now, e.rankOpts.TimeDecayFactor)
	diversified := ranking.Diversify(decayed, limit, e.rankOpts)

	results := make([]Result, 0, len(diversified))
	for _, cand := range diversified {
		payload := payloads[cand.ID]
		results = append(results, Result{
			ID:             cand.ID,
			Score:          cand.Score,
			RelevanceScore: relevance(payload),
			Serendipity:    cand.Serendipity > 0,
			Payload:        payload,
		})
	}
	return results
}

func candidateFromHit(hit vectorstore.SearchResult) ranking.Candidate {
	cand := ranking.Candidate{
		ID:         hit.ID,
		Score:      float64(hit.Score),
		CategoryID: vectorstore.PayloadString(hit.Payload, vectorstore.FieldCategoryID),
		AuthorID:   vectorstore.PayloadString(hit.Payload, vectorstore.FieldUserID),
		Topics:     textprep.FilterStopwords(textprep.Tokenize(vectorstore.PayloadString(hit.Payload, "title"))),
	}
	if ts := vectorstore.PayloadInt(hit.Payload, vectorstore.FieldCreatedTs); ts > 0 {
		cand.CreatedAt = time.Unix(ts, 0)
	}
	return cand
}

// keywordFallback serves a degraded request from the relational store. It
// always returns a structurally valid response, even on storage errors.
func (e *Engine) keywordFallback(ctx context.Context, query string, limit int) *Response {
	resp := &Response{Results: []Result{}, SearchType: SearchTypeKeyword}
	posts, err := e.posts.KeywordSearch(ctx, query, limit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "keyword fallback failed", "error", err)
		return resp
	}
	for _, post := range posts {
		relevance := keywordRelevance(query, post.Title, post.Content)
		resp.Results = append(resp.Results, Result{
			ID:             post.ID,
			Score:          relevance,
			RelevanceScore: relevance,
			Payload: map[string]any{
				"title":                      post.Title,
				vectorstore.FieldCategoryID:  post.CategoryID,
				vectorstore.FieldUserID:      post.UserID,
				vectorstore.FieldCreatedTs:   post.CreatedAt.Unix(),
			},
		})
	}
	return resp
}
