// Package recommend implements the multi-branch recommendation engine:
// collaborative filtering over profile snapshots, content-based retrieval
// from an embedded interest document, and a training-free factorization
// heuristic, blended into one deduplicated, diversified feed.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/embedding"
	"discourse-ai/internal/ranking"
	"discourse-ai/internal/storage"
	"discourse-ai/internal/textprep"
	"discourse-ai/internal/vectorstore"
)

// Algorithm tags attached to every recommendation so the caller can explain
// provenance.
const (
	AlgorithmCollaborative = "collaborative"
	AlgorithmContent       = "content"
	AlgorithmFactorization = "factorization"
	AlgorithmSerendipity   = "serendipity"
	AlgorithmFallback      = "fallback"
)

// Mode selects which branches run.
type Mode string

const (
	// ModeHybrid runs all branches. It is the default.
	ModeHybrid        Mode = "hybrid"
	ModeCollaborative Mode = "collaborative"
	ModeContent       Mode = "content"
)

// ParseMode validates a mode name. The empty string maps to hybrid.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeHybrid, nil
	case ModeHybrid, ModeCollaborative, ModeContent:
		return Mode(s), nil
	default:
		return "", &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", s)}
	}
}

// Fallback results sit in a low score band so the UI can signal lower
// confidence.
const fallbackScoreBase = 0.3

const (
	historyLimit        = 20
	neighborLimit       = 10
	serendipityCount    = 2
	serendipityInterval = 3
	// factorizationPenalty reflects the branch's lower confidence relative
	// to the collaborative and content branches.
	factorizationPenalty = 0.8
)

// ValidationError reports caller input the engine cannot serve.
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

// Options parameterizes one recommendation request.
type Options struct {
	Limit int
	// Mode defaults to hybrid.
	Mode Mode
}

// Recommendation is one scored, explained feed entry.
type Recommendation struct {
	PostID      string  `json:"entityId"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
	Algorithm   string  `json:"algorithm"`
	Diversity   float64 `json:"diversityScore,omitempty"`
	Serendipity float64 `json:"serendipityScore,omitempty"`
}

// Metadata describes how a recommendation list was produced.
type Metadata struct {
	Algorithms       []string `json:"algorithms"`
	ActivityLevel    string   `json:"activityLevel,omitempty"`
	InteractionCount int      `json:"interactionCount"`
	Degraded         bool     `json:"degraded"`
}

// Response is the full recommendation payload.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	Metadata        Metadata         `json:"metadata"`
}

// Config holds the engine's construction parameters.
type Config struct {
	PostsCollection           string
	RecommendationsCollection string
	SparseVocabSize           int
	VectorSize                int
	Ranking                   ranking.Options
}

// Engine composes the stores and the embedding chain into the recommendation
// pipeline.
type Engine struct {
	store        vectorstore.VectorStore
	embedder     Embedder
	posts        storage.PostStore
	interactions storage.InteractionStore
	categories   storage.CategoryStore
	cfg          Config

	now func() time.Time
}

// NewEngine creates a recommendation engine.
func NewEngine(store vectorstore.VectorStore, embedder Embedder, posts storage.PostStore, interactions storage.InteractionStore, categories storage.CategoryStore, cfg Config) *Engine {
	return &Engine{
		store:        store,
		embedder:     embedder,
		posts:        posts,
		interactions: interactions,
		categories:   categories,
		cfg:          cfg,
		now:          time.Now,
	}
}

// branchHit is one candidate with its branch attribution.
type branchHit struct {
	cand      ranking.Candidate
	algorithm string
	reason    string
}

// Recommend builds a ranked feed for the user. Branch failures degrade to
// other branches; only caller-input problems surface as errors.
func (e *Engine) Recommend(ctx context.Context, userID string, opts Options) (*Response, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "userId", Message: "must not be empty"}
	}
	if opts.Limit <= 0 {
		return nil, &ValidationError{Field: "limit", Message: "must be > 0"}
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeHybrid
	}

	logger := contextutil.LoggerFromContext(ctx)
	now := e.now()

	history, seen := e.loadHistory(ctx, userID)
	if history.IsEmpty() {
		return e.fallback(ctx, userID, opts.Limit, false), nil
	}

	profile := BuildProfile(userID, history, now, e.cfg.Ranking.TimeDecayFactor)

	if !e.store.Ready(ctx) {
		logger.WarnContext(ctx, "vector store not ready, serving fallback recommendations", "userId", userID)
		return e.fallback(ctx, userID, opts.Limit, true), nil
	}

	e.upsertSnapshot(ctx, profile, now)

	var collaborative, content, factorization []branchHit
	g, gctx := errgroup.WithContext(ctx)
	if mode == ModeHybrid || mode == ModeCollaborative {
		g.Go(func() error {
			collaborative = e.collaborativeBranch(gctx, profile, seen)
			return nil
		})
	}
	if mode == ModeHybrid || mode == ModeContent {
		g.Go(func() error {
			content = e.contentBranch(gctx, profile, seen, opts.Limit)
			return nil
		})
	}
	if mode == ModeHybrid {
		g.Go(func() error {
			factorization = e.factorizationBranch(gctx, profile, seen, opts.Limit)
			return nil
		})
	}
	_ = g.Wait()

	hits := make([]branchHit, 0, len(collaborative)+len(content)+len(factorization))
	hits = append(hits, collaborative...)
	hits = append(hits, content...)
	hits = append(hits, factorization...)
	if len(hits) == 0 {
		return e.fallback(ctx, userID, opts.Limit, false), nil
	}

	cands := make([]ranking.Candidate, len(hits))
	attribution := make(map[string]branchHit, len(hits))
	for i, hit := range hits {
		cands[i] = hit.cand
		if prev, ok := attribution[hit.cand.ID]; !ok || hit.cand.Score > prev.cand.Score {
			attribution[hit.cand.ID] = hit
		}
	}

	decayed := ranking.ApplyTimeDecay(cands, now, e.cfg.Ranking.TimeDecayFactor)
	diversified := ranking.Diversify(decayed, opts.Limit, e.cfg.Ranking)

	recs := make([]Recommendation, 0, len(diversified))
	for _, cand := range diversified {
		hit := attribution[cand.ID]
		recs = append(recs, Recommendation{
			PostID:      cand.ID,
			Score:       cand.Score,
			Reason:      hit.reason,
			Algorithm:   hit.algorithm,
			Diversity:   cand.Diversity,
			Serendipity: cand.Serendipity,
		})
	}

	recs = e.injectSerendipity(ctx, profile, seen, recs, opts.Limit)

	return &Response{
		Recommendations: recs,
		Metadata: Metadata{
			Algorithms:       algorithmsUsed(recs),
			ActivityLevel:    profile.ActivityLevel,
			InteractionCount: len(profile.Interactions),
		},
	}, nil
}

// loadHistory pulls the user's bounded recent history. Storage errors degrade
// to an empty slice rather than failing the request.
func (e *Engine) loadHistory(ctx context.Context, userID string) (storage.UserHistory, map[string]bool) {
	logger := contextutil.LoggerFromContext(ctx)
	var history storage.UserHistory
	var err error

	if history.Posts, err = e.posts.RecentByUser(ctx, userID, historyLimit); err != nil {
		logger.WarnContext(ctx, "failed to load authored posts", "userId", userID, "error", err)
	}
	if history.Comments, err = e.interactions.RecentComments(ctx, userID, historyLimit); err != nil {
		logger.WarnContext(ctx, "failed to load comments", "userId", userID, "error", err)
	}
	if history.Votes, err = e.interactions.RecentVotes(ctx, userID, historyLimit); err != nil {
		logger.WarnContext(ctx, "failed to load votes", "userId", userID, "error", err)
	}
	if history.Bookmarks, err = e.interactions.RecentBookmarks(ctx, userID, historyLimit); err != nil {
		logger.WarnContext(ctx, "failed to load bookmarks", "userId", userID, "error", err)
	}

	seen, err := e.interactions.SeenPostIDs(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "failed to load seen posts", "userId", userID, "error", err)
		seen = make(map[string]bool)
	}
	return history, seen
}

// collaborativeBranch finds similar profiles by sparse interaction overlap
// and harvests their precomputed candidate lists, weighted by neighbor
// similarity and positional decay.
func (e *Engine) collaborativeBranch(ctx context.Context, profile *Profile, seen map[string]bool) []branchHit {
	if profile.PositiveInteractionCount() < 3 {
		return nil
	}
	sparse := SparseProfileVector(profile, e.cfg.SparseVocabSize)
	if sparse.IsEmpty() {
		return nil
	}

	filter := &vectorstore.Filter{
		Must:    []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldType, vectorstore.TypeProfile)},
		MustNot: []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldUserID, profile.UserID)},
	}
	neighbors, err := e.store.SearchSparse(ctx, e.cfg.RecommendationsCollection, sparse, neighborLimit, filter)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "collaborative branch failed", "error", err)
		return nil
	}

	var hits []branchHit
	for _, neighbor := range neighbors {
		candidates := vectorstore.PayloadStrings(neighbor.Payload, "candidatePostIds")
		for rank, postID := range candidates {
			if seen[postID] {
				continue
			}
			hits = append(hits, branchHit{
				cand: ranking.Candidate{
					ID:    postID,
					Score: float64(neighbor.Score) / float64(rank+1),
				},
				algorithm: AlgorithmCollaborative,
				reason:    "Highly rated by readers with similar activity",
			})
		}
	}
	return hits
}

// contentBranch embeds the profile's interest document and searches posts,
// softly preferring the user's top categories and hard-excluding their own
// posts.
func (e *Engine) contentBranch(ctx context.Context, profile *Profile, seen map[string]bool, limit int) []branchHit {
	embedded := e.embedder.Embed(ctx, profile.PseudoDocument(), embedding.KindQuery)
	if len(embedded.Vector) == 0 {
		return nil
	}

	filter := &vectorstore.Filter{
		Must:    []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldType, vectorstore.TypePost)},
		MustNot: []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldUserID, profile.UserID)},
	}
	if cats := profile.TopCategories(3); len(cats) > 0 {
		filter.Should = []vectorstore.Condition{vectorstore.AnyOf(vectorstore.FieldCategoryID, cats...)}
	}

	results, err := e.store.SearchDense(ctx, e.cfg.PostsCollection, vectorstore.DenseParams{
		Vector: embedded.Vector,
		Limit:  limit * 2,
		Filter: filter,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "content branch failed", "error", err)
		return nil
	}

	reason := "Matches your reading interests"
	if len(profile.InterestTags) > 0 {
		tags := profile.InterestTags
		if len(tags) > 3 {
			tags = tags[:3]
		}
		reason = "Matches your interest in " + strings.Join(tags, ", ")
	}

	var hits []branchHit
	for _, result := range results {
		if seen[result.ID] {
			continue
		}
		hits = append(hits, branchHit{
			cand:      candidateFromResult(result),
			algorithm: AlgorithmContent,
			reason:    reason,
		})
	}
	return hits
}

// factorizationBranch searches with the training-free latent-factor stand-in
// vector, penalized for its lower confidence.
func (e *Engine) factorizationBranch(ctx context.Context, profile *Profile, seen map[string]bool, limit int) []branchHit {
	vec := FactorizationVector(profile, e.cfg.VectorSize)
	if len(vec) == 0 {
		return nil
	}

	filter := &vectorstore.Filter{
		Must:    []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldType, vectorstore.TypePost)},
		MustNot: []vectorstore.Condition{vectorstore.Eq(vectorstore.FieldUserID, profile.UserID)},
	}
	results, err := e.store.SearchDense(ctx, e.cfg.PostsCollection, vectorstore.DenseParams{
		Vector: vec,
		Limit:  limit * 2,
		Filter: filter,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "factorization branch failed", "error", err)
		return nil
	}

	var hits []branchHit
	for _, result := range results {
		if seen[result.ID] {
			continue
		}
		cand := candidateFromResult(result)
		cand.Score *= factorizationPenalty
		hits = append(hits, branchHit{
			cand:      cand,
			algorithm: AlgorithmFactorization,
			reason:    "Similar to your overall activity pattern",
		})
	}
	return hits
}

// injectSerendipity splices high-quality posts from categories outside the
// user's preference set at spaced intervals, so discovery content is
// interleaved rather than buried at the end.
func (e *Engine) injectSerendipity(ctx context.Context, profile *Profile, seen map[string]bool, recs []Recommendation, limit int) []Recommendation {
	posts, err := e.posts.TopOutsideCategories(ctx, profile.TopCategories(3), serendipityCount)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "serendipity query failed", "error", err)
		return truncate(recs, limit)
	}

	present := make(map[string]bool, len(recs))
	for _, rec := range recs {
		present[rec.PostID] = true
	}

	pos := serendipityInterval - 1
	for _, post := range posts {
		if seen[post.ID] || present[post.ID] {
			continue
		}
		rec := Recommendation{
			PostID:      post.ID,
			Score:       fallbackScoreBase,
			Reason:      e.serendipityReason(ctx, post.CategoryID),
			Algorithm:   AlgorithmSerendipity,
			Serendipity: 1,
		}
		if pos >= len(recs) {
			recs = append(recs, rec)
		} else {
			recs = append(recs[:pos], append([]Recommendation{rec}, recs[pos:]...)...)
		}
		present[post.ID] = true
		pos += serendipityInterval
	}
	return truncate(recs, limit)
}

// serendipityReason names the unexplored category when the lookup succeeds.
func (e *Engine) serendipityReason(ctx context.Context, categoryID string) string {
	const generic = "Something different from categories you have not explored yet"
	if e.categories == nil || categoryID == "" {
		return generic
	}
	cat, err := e.categories.GetByID(ctx, categoryID)
	if err != nil {
		return generic
	}
	return "Something different: popular in " + cat.Name
}

// fallback serves the most recent posts not authored by the user, in a low
// confidence score band.
func (e *Engine) fallback(ctx context.Context, userID string, limit int, degraded bool) *Response {
	resp := &Response{
		Recommendations: []Recommendation{},
		Metadata: Metadata{
			Algorithms: []string{AlgorithmFallback},
			Degraded:   degraded,
		},
	}
	posts, err := e.posts.Recent(ctx, userID, limit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "fallback recommendations failed", "userId", userID, "error", err)
		return resp
	}
	for i, post := range posts {
		resp.Recommendations = append(resp.Recommendations, Recommendation{
			PostID:    post.ID,
			Score:     fallbackScoreBase - float64(i)*0.01,
			Reason:    "Recently posted in the community",
			Algorithm: AlgorithmFallback,
		})
	}
	return resp
}

// upsertSnapshot stores the profile's sparse and factorization vectors in the
// recommendations collection so other users' collaborative branches can find
// this user as a neighbor. Failures are logged, never fatal.
func (e *Engine) upsertSnapshot(ctx context.Context, profile *Profile, now time.Time) {
	payload := vectorstore.ProfilePayload{
		BasePayload: vectorstore.BasePayload{
			Type:      vectorstore.TypeProfile,
			UserID:    profile.UserID,
			CreatedTs: now.Unix(),
		},
		CandidatePostIDs: profile.TopRatedPostIDs(neighborLimit),
		ActivityLevel:    profile.ActivityLevel,
	}
	point := vectorstore.Point{
		ID: profile.UserID,
		Dense: map[string][]float32{
			vectorstore.VectorDense: FactorizationVector(profile, e.cfg.VectorSize),
		},
		Sparse: map[string]embedding.SparseVector{
			vectorstore.VectorSparse: SparseProfileVector(profile, e.cfg.SparseVocabSize),
		},
		Payload: payload.ToMap(),
	}
	if err := e.store.Upsert(ctx, e.cfg.RecommendationsCollection, []vectorstore.Point{point}); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "profile snapshot upsert failed", "userId", profile.UserID, "error", err)
	}
}

func candidateFromResult(result vectorstore.SearchResult) ranking.Candidate {
	cand := ranking.Candidate{
		ID:         result.ID,
		Score:      float64(result.Score),
		CategoryID: vectorstore.PayloadString(result.Payload, vectorstore.FieldCategoryID),
		AuthorID:   vectorstore.PayloadString(result.Payload, vectorstore.FieldUserID),
		Topics:     textprep.FilterStopwords(textprep.Tokenize(vectorstore.PayloadString(result.Payload, "title"))),
	}
	if ts := vectorstore.PayloadInt(result.Payload, vectorstore.FieldCreatedTs); ts > 0 {
		cand.CreatedAt = time.Unix(ts, 0)
	}
	return cand
}

func algorithmsUsed(recs []Recommendation) []string {
	seen := make(map[string]bool)
	var algorithms []string
	for _, rec := range recs {
		if rec.Algorithm == "" || seen[rec.Algorithm] {
			continue
		}
		seen[rec.Algorithm] = true
		algorithms = append(algorithms, rec.Algorithm)
	}
	return algorithms
}

func truncate(recs []Recommendation, limit int) []Recommendation {
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
