package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/embedding"
)

// ExternalIDField is the payload key carrying the entity's external id, so
// results can be mapped back without a second database round-trip even when
// the store-native point id is a hash.
const ExternalIDField = "externalId"

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client       *qdrant.Client
	ids          *idTable
	readyTimeout time.Duration
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string, readyTimeout time.Duration) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// Extract port from URL, default to 6333 for HTTP
	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	if readyTimeout <= 0 {
		readyTimeout = 500 * time.Millisecond
	}

	return &QdrantStore{
		client:       client,
		ids:          newIDTable(),
		readyTimeout: readyTimeout,
	}, nil
}

// Ready probes the store's health endpoint with a short timeout. The probe
// gates fallback decisions, so it must never block the request pipeline: a
// slow store counts as not ready.
func (s *QdrantStore) Ready(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.readyTimeout)
	defer cancel()

	_, err := s.client.HealthCheck(probeCtx)
	return err == nil
}

// EnsureCollections creates each missing collection with its declared vector
// configuration and payload indexes. Existing collections are validated, not
// recreated: a dimension mismatch is logged as configuration drift but never
// auto-migrated, since that would destroy indexed data.
func (s *QdrantStore) EnsureCollections(ctx context.Context, specs []CollectionSpec) error {
	logger := contextutil.LoggerFromContext(ctx)

	for _, spec := range specs {
		exists, err := s.client.CollectionExists(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("failed to check collection existence: %w", err)
		}

		if !exists {
			if err := s.createCollection(ctx, spec); err != nil {
				return err
			}
			logger.InfoContext(ctx, "collection created", "collection", spec.Name)
			continue
		}

		s.validateCollection(ctx, spec)
	}
	return nil
}

func (s *QdrantStore) createCollection(ctx context.Context, spec CollectionSpec) error {
	denseConfig := make(map[string]*qdrant.VectorParams, len(spec.Dense))
	for name, dim := range spec.Dense {
		denseConfig[name] = &qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}
	}

	create := &qdrant.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig:  qdrant.NewVectorsConfigMap(denseConfig),
	}
	if len(spec.Sparse) > 0 {
		sparseConfig := make(map[string]*qdrant.SparseVectorParams, len(spec.Sparse))
		for _, name := range spec.Sparse {
			sparseConfig[name] = &qdrant.SparseVectorParams{}
		}
		create.SparseVectorsConfig = qdrant.NewSparseVectorsConfig(sparseConfig)
	}

	if err := s.client.CreateCollection(ctx, create); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", spec.Name, err)
	}

	for _, index := range spec.Indexes {
		fieldType := qdrant.FieldType_FieldTypeKeyword
		switch index.Kind {
		case PayloadInteger:
			fieldType = qdrant.FieldType_FieldTypeInteger
		case PayloadBool:
			fieldType = qdrant.FieldType_FieldTypeBool
		}
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: spec.Name,
			FieldName:      index.Field,
			FieldType:      &fieldType,
		})
		if err != nil {
			return fmt.Errorf("failed to create payload index %s.%s: %w", spec.Name, index.Field, err)
		}
	}
	return nil
}

// validateCollection compares an existing collection's dense vector config
// against the declared spec. Mismatches are logged, never corrected.
func (s *QdrantStore) validateCollection(ctx context.Context, spec CollectionSpec) {
	logger := contextutil.LoggerFromContext(ctx)

	info, err := s.client.GetCollectionInfo(ctx, spec.Name)
	if err != nil {
		logger.WarnContext(ctx, "failed to fetch collection info for validation",
			"collection", spec.Name, "error", err)
		return
	}

	config := info.GetConfig().GetParams().GetVectorsConfig().GetParamsMap().GetMap()
	for name, wantDim := range spec.Dense {
		params, ok := config[name]
		if !ok {
			logger.WarnContext(ctx, "collection missing declared vector",
				"collection", spec.Name, "vector", name)
			continue
		}
		if int(params.GetSize()) != wantDim {
			logger.WarnContext(ctx, "collection vector size mismatch, not migrating",
				"collection", spec.Name, "vector", name,
				"declared", wantDim, "actual", params.GetSize())
		}
	}
	logger.InfoContext(ctx, "collection validated", "collection", spec.Name)
}

// Upsert inserts or updates points in the collection. Vector dimensions are
// assumed already corrected by the embedding layer; the external id is
// duplicated into the payload so hits map back to entities.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		vectors := make(map[string]*qdrant.Vector, len(point.Dense)+len(point.Sparse))
		for name, vec := range point.Dense {
			vectors[name] = qdrant.NewVector(vec...)
		}
		for name, sparse := range point.Sparse {
			if sparse.IsEmpty() {
				continue
			}
			vectors[name] = qdrant.NewVectorSparse(sparse.Indices, sparse.Values)
		}

		payload := make(map[string]any, len(point.Payload)+1)
		for k, v := range point.Payload {
			payload[k] = v
		}
		payload[ExternalIDField] = point.ID

		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      s.pointID(point.ID),
			Vectors: qdrant.NewVectorsMap(vectors),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// SearchDense performs a cosine similarity search over one named vector.
func (s *QdrantStore) SearchDense(ctx context.Context, collection string, params DenseParams) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if params.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	using := params.Using
	if using == "" {
		using = VectorDense
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(params.Vector...),
		Using:          &using,
		Limit:          qdrant.PtrOf(uint64(params.Limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if params.ScoreThreshold > 0 {
		query.ScoreThreshold = &params.ScoreThreshold
	}
	if qf := params.Filter.toQdrant(); qf != nil {
		query.Filter = qf
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "dense search failed", "collection", collection, "error", err)
		return nil, fmt.Errorf("dense search failed: %w", err)
	}

	return s.toResults(scored), nil
}

// SearchSparse performs a dot-product search over the sparse named vector.
func (s *QdrantStore) SearchSparse(ctx context.Context, collection string, sparse embedding.SparseVector, limit int, filter *Filter) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	if sparse.IsEmpty() {
		return nil, nil
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuerySparse(sparse.Indices, sparse.Values),
		Using:          qdrant.PtrOf(VectorSparse),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if qf := filter.toQdrant(); qf != nil {
		query.Filter = qf
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "sparse search failed", "collection", collection, "error", err)
		return nil, fmt.Errorf("sparse search failed: %w", err)
	}

	return s.toResults(scored), nil
}

// SearchHybrid issues one fused query: a dense prefetch and a sparse
// prefetch, each over-fetching 2x the final limit, merged server-side by the
// requested fusion method. If the server rejects the fused query (older
// Qdrant versions lack the Query API fusion), the two searches run
// separately and are fused client-side instead.
func (s *QdrantStore) SearchHybrid(ctx context.Context, collection string, params HybridParams) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if params.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	denseOnly := func() ([]SearchResult, error) {
		return s.SearchDense(ctx, collection, DenseParams{
			Vector: params.Dense,
			Limit:  params.Limit,
			Filter: params.Filter,
		})
	}

	if params.Sparse.IsEmpty() {
		return denseOnly()
	}

	prefetchLimit := qdrant.PtrOf(uint64(params.Limit * 2))
	qf := params.Filter.toQdrant()

	fusion := qdrant.Fusion_RRF
	if params.Fusion == FusionDBSF {
		fusion = qdrant.Fusion_DBSF
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query:  qdrant.NewQuery(params.Dense...),
				Using:  qdrant.PtrOf(VectorDense),
				Limit:  prefetchLimit,
				Filter: qf,
			},
			{
				Query:  qdrant.NewQuerySparse(params.Sparse.Indices, params.Sparse.Values),
				Using:  qdrant.PtrOf(VectorSparse),
				Limit:  prefetchLimit,
				Filter: qf,
			},
		},
		Query:       qdrant.NewQueryFusion(fusion),
		Limit:       qdrant.PtrOf(uint64(params.Limit)),
		WithPayload: qdrant.NewWithPayload(true),
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		logger.WarnContext(ctx, "server-side fusion failed, fusing client-side",
			"collection", collection, "error", err)
		return s.fuseClientSide(ctx, collection, params)
	}

	return s.toResults(scored), nil
}

// fuseClientSide runs the dense and sparse legs as separate queries and
// merges them locally with the requested fusion method.
func (s *QdrantStore) fuseClientSide(ctx context.Context, collection string, params HybridParams) ([]SearchResult, error) {
	dense, err := s.SearchDense(ctx, collection, DenseParams{
		Vector: params.Dense,
		Limit:  params.Limit * 2,
		Filter: params.Filter,
	})
	if err != nil {
		return nil, err
	}
	sparse, err := s.SearchSparse(ctx, collection, params.Sparse, params.Limit*2, params.Filter)
	if err != nil {
		// The dense leg alone is still a usable result set.
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "sparse leg failed, returning dense-only",
			"collection", collection, "error", err)
		if len(dense) > params.Limit {
			dense = dense[:params.Limit]
		}
		return dense, nil
	}

	var fused []SearchResult
	if params.Fusion == FusionDBSF {
		fused = FuseDBSF(dense, sparse)
	} else {
		fused = FuseRRF(params.RRFConstant, dense, sparse)
	}
	if len(fused) > params.Limit {
		fused = fused[:params.Limit]
	}
	return fused, nil
}

// MultiStageSearch narrows the candidate pool with a fast half-dimension
// pass, then re-scores only those candidates with the full vector. The
// truncated first pass is cheap; the expensive full-precision comparison
// touches CandidateLimit points at most.
func (s *QdrantStore) MultiStageSearch(ctx context.Context, collection string, params MultiStageParams) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if params.FinalLimit <= 0 {
		return nil, fmt.Errorf("final limit must be greater than 0")
	}
	candidateLimit := params.CandidateLimit
	if candidateLimit < params.FinalLimit {
		candidateLimit = params.FinalLimit * 4
	}

	coarse := embedding.NormalizeDim(params.Vector, len(params.Vector)/2)

	stage1 := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(coarse...),
		Using:          qdrant.PtrOf(VectorCoarse),
		Limit:          qdrant.PtrOf(uint64(candidateLimit)),
		WithPayload:    qdrant.NewWithPayload(false),
	}
	if qf := params.Filter.toQdrant(); qf != nil {
		stage1.Filter = qf
	}

	candidates, err := s.client.Query(ctx, stage1)
	if err != nil {
		logger.ErrorContext(ctx, "multi-stage coarse pass failed", "collection", collection, "error", err)
		return nil, fmt.Errorf("coarse search failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]*qdrant.PointId, 0, len(candidates))
	for _, c := range candidates {
		if c.Id != nil {
			ids = append(ids, c.Id)
		}
	}

	stage2 := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(params.Vector...),
		Using:          qdrant.PtrOf(VectorDense),
		Limit:          qdrant.PtrOf(uint64(params.FinalLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewHasID(ids...)},
		},
	}

	scored, err := s.client.Query(ctx, stage2)
	if err != nil {
		logger.ErrorContext(ctx, "multi-stage rescoring pass failed", "collection", collection, "error", err)
		return nil, fmt.Errorf("rescoring search failed: %w", err)
	}

	return s.toResults(scored), nil
}

func (s *QdrantStore) toResults(scored []*qdrant.ScoredPoint) []SearchResult {
	results := make([]SearchResult, 0, len(scored))
	for _, point := range scored {
		meta := convertPayloadToMap(point.Payload)

		id := PayloadString(meta, ExternalIDField)
		if id == "" && point.Id != nil {
			if uuid := point.Id.GetUuid(); uuid != "" {
				id = uuid
			} else {
				id = strconv.FormatUint(point.Id.GetNum(), 10)
			}
		}

		results = append(results, SearchResult{
			ID:      id,
			Score:   point.Score,
			Payload: meta,
		})
	}
	return results
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
