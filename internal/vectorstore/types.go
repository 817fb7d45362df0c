package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks discourse-ai/internal/vectorstore VectorStore

import (
	"context"

	"discourse-ai/internal/embedding"
)

// Named vectors carried by every indexed point.
const (
	VectorDense  = "dense"
	VectorCoarse = "coarse" // half-dimension copy for the fast first pass
	VectorSparse = "sparse"
)

// FusionMethod selects how hybrid prefetch lists are merged.
type FusionMethod string

const (
	// FusionRRF is reciprocal rank fusion: deterministic, scale-invariant,
	// rewards items ranked highly in any list.
	FusionRRF FusionMethod = "rrf"
	// FusionDBSF normalizes each list's score distribution before summing;
	// use when dense and sparse score scales differ significantly.
	FusionDBSF FusionMethod = "dbsf"
)

// Point is one indexable entity with named vectors and a metadata payload.
type Point struct {
	// ID is the stable external id. UUIDs pass through to the store
	// natively; other strings are hashed to a numeric point id.
	ID      string
	Dense   map[string][]float32
	Sparse  map[string]embedding.SparseVector
	Payload map[string]any
}

// SearchResult is one ranked hit from a vector search.
type SearchResult struct {
	// ID is the external entity id recovered from the payload, or the
	// store-native id when the payload carries none.
	ID      string
	Score   float32
	Payload map[string]any
}

// PayloadFieldKind declares the index type for a filterable payload field.
type PayloadFieldKind int

const (
	PayloadKeyword PayloadFieldKind = iota
	PayloadInteger
	PayloadBool
)

// PayloadIndex declares one payload field eligible for filter predicates.
type PayloadIndex struct {
	Field string
	Kind  PayloadFieldKind
}

// CollectionSpec declares a collection's named vector configuration and its
// filterable payload fields.
type CollectionSpec struct {
	Name string
	// Dense maps vector name to dimension.
	Dense map[string]int
	// Sparse lists sparse vector names.
	Sparse []string
	// Indexes are the payload fields to index for filtering.
	Indexes []PayloadIndex
}

// DenseParams parameterizes a single-vector cosine search.
type DenseParams struct {
	Vector         []float32
	Using          string // named vector, defaults to VectorDense
	Limit          int
	ScoreThreshold float32 // 0 disables the cutoff
	Filter         *Filter
}

// HybridParams parameterizes a fused dense+sparse search. Each prefetch
// over-fetches 2x the final limit so the fusion step has material to work with.
type HybridParams struct {
	Dense  []float32
	Sparse embedding.SparseVector
	Limit  int
	Fusion FusionMethod
	// RRFConstant tunes the client-side rank-fusion fallback; 0 means
	// DefaultRRFConstant.
	RRFConstant float64
	Filter      *Filter
}

// MultiStageParams parameterizes the coarse-to-fine two-stage search: a fast
// half-dimension pass over CandidateLimit points, then full-precision
// re-scoring of only those candidates down to FinalLimit.
type MultiStageParams struct {
	Vector         []float32
	CandidateLimit int
	FinalLimit     int
	Filter         *Filter
}

// VectorStore is the storage-side contract for collection lifecycle, point
// upsert, and the search primitives the retrieval engines compose.
type VectorStore interface {
	// Ready reports whether the store answers a health probe within the
	// configured short timeout. Callers use it to gate fallback decisions.
	Ready(ctx context.Context) bool

	// EnsureCollections creates missing collections and validates existing
	// ones without recreating them.
	EnsureCollections(ctx context.Context, specs []CollectionSpec) error

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// SearchDense performs a cosine similarity search over one named vector.
	SearchDense(ctx context.Context, collection string, params DenseParams) ([]SearchResult, error)

	// SearchSparse performs a dot-product search over the sparse vector.
	SearchSparse(ctx context.Context, collection string, sparse embedding.SparseVector, limit int, filter *Filter) ([]SearchResult, error)

	// SearchHybrid issues a fused dense+sparse query. On failure it falls
	// back to a dense-only search against the same collection.
	SearchHybrid(ctx context.Context, collection string, params HybridParams) ([]SearchResult, error)

	// MultiStageSearch runs the coarse-to-fine two-stage search.
	MultiStageSearch(ctx context.Context, collection string, params MultiStageParams) ([]SearchResult, error)
}
