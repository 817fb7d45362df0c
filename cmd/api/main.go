package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"discourse-ai/internal/config"
	"discourse-ai/internal/embedding"
	"discourse-ai/internal/http"
	"discourse-ai/internal/indexer"
	"discourse-ai/internal/ranking"
	"discourse-ai/internal/recommend"
	"discourse-ai/internal/search"
	"discourse-ai/internal/storage"
	"discourse-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API provides semantic search and personalized recommendations over
// community posts: lens-steered retrieval, hybrid dense+sparse search, and a
// multi-branch recommendation feed.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Discourse AI API
//   description: |
//     Semantic search and recommendation API for community discussion content.
//     Posts are embedded and indexed into a vector store; search degrades to
//     relational keyword matching when the vector path is unavailable.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	postRepo := storage.NewPostRepo(db)
	interactionRepo := storage.NewInteractionRepo(db)
	categoryRepo := storage.NewCategoryRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store. Unreachable Qdrant is not fatal: search
	// and recommendations degrade to their relational fallbacks and readiness
	// reports the store as unavailable until it comes back.
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.ReadyProbeTimeout)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	if vectorStore.Ready(ctx) {
		if err := vectorStore.EnsureCollections(ctx, collectionSpecs(cfg)); err != nil {
			slog.Warn("Failed to ensure Qdrant collections, running degraded", "error", err)
		} else {
			slog.Info("Qdrant collections ready", "vector_size", cfg.VectorSize)
		}
	} else {
		slog.Warn("Qdrant unreachable at startup, running degraded", "url", cfg.QdrantURL)
	}

	// Build the embedding provider chain in failover order
	chain := embedding.NewChain(buildProviders(cfg), embedding.ChainOptions{
		Dimension:      cfg.VectorSize,
		MaxRetries:     cfg.MaxRetries,
		AttemptTimeout: cfg.EmbedAttemptTimeout,
		Budget:         cfg.EmbedBudget,
	})
	if !chain.HasProviders() {
		slog.Warn("No embedding providers configured, using deterministic fallback vectors only")
	}

	rankOpts := rankingOptions(cfg)

	searchEngine := search.NewEngine(vectorStore, chain, postRepo, search.Config{
		Collection:      cfg.PostsCollection,
		SparseVocabSize: cfg.SparseVocabSize,
		RRFConstant:     cfg.RRFConstant,
		Ranking:         rankOpts,
	})
	recommendEngine := recommend.NewEngine(vectorStore, chain, postRepo, interactionRepo, categoryRepo, recommend.Config{
		PostsCollection:           cfg.PostsCollection,
		RecommendationsCollection: cfg.RecommendationsCollection,
		SparseVocabSize:           cfg.SparseVocabSize,
		VectorSize:                cfg.VectorSize,
		Ranking:                   rankOpts,
	})
	slog.Info("Search and recommendation engines initialized")

	// Create indexing pipeline
	pipeline := indexer.NewPipeline(
		postRepo,
		chain,
		vectorStore,
		cfg.PostsCollection,
		cfg.VectorSize,
		cfg.SparseVocabSize,
		cfg.BatchSize,
	)

	// Create router with dependencies
	deps := &http.Deps{
		SearchEngine:    searchEngine,
		RecommendEngine: recommendEngine,
		Store:           vectorStore,
	}
	router := http.NewRouter(deps)

	// Start indexing in background after router is ready
	go func() {
		indexCtx := context.Background()
		slog.Info("Starting background indexing of posts")
		stats, err := pipeline.IndexAll(indexCtx)
		if err != nil {
			slog.Error("Indexing completed with errors", "error", err)
			return
		}
		slog.Info("Indexing completed",
			"processed", stats.PostsProcessed,
			"indexed", stats.PostsIndexed,
			"failures", stats.Failures,
			"fallback_vectors", stats.FallbackVectors,
		)
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// buildProviders assembles the embedding failover chain: each provider is
// tried in order until one returns a usable vector.
func buildProviders(cfg *config.Config) []embedding.Provider {
	var remote []embedding.Provider
	if cfg.OpenAIAPIKey != "" {
		remote = append(remote, embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.VectorSize))
	}
	if cfg.PrimaryEmbeddingURL != "" {
		remote = append(remote, embedding.NewHTTPProvider("primary", cfg.PrimaryEmbeddingURL, cfg.PrimaryEmbeddingKey, cfg.PrimaryModel, true))
	}

	var local []embedding.Provider
	if cfg.LocalEmbeddingURL != "" {
		local = append(local, embedding.NewHTTPProvider("local", cfg.LocalEmbeddingURL, "", cfg.LocalModel, true))
	}

	if cfg.PreferLocalFirst {
		return append(local, remote...)
	}
	return append(remote, local...)
}

func rankingOptions(cfg *config.Config) ranking.Options {
	opts := ranking.DefaultOptions()
	opts.CategoryWeight = cfg.DiversityCategoryWeight
	opts.AuthorWeight = cfg.DiversityAuthorWeight
	opts.TopicWeight = cfg.DiversityTopicWeight
	opts.TopicOverlapThreshold = cfg.TopicOverlapThreshold
	opts.TimeDecayFactor = cfg.TimeDecayFactor
	opts.DiversityBonusWeight = cfg.DiversityBonusWeight
	opts.SerendipityBonusWeight = cfg.SerendipityBonusWeight
	return opts
}

// collectionSpecs declares the vector schema per entity type. Posts carry a
// half-dimension coarse copy for the multi-stage first pass; the
// recommendations collection holds per-user profile snapshots keyed for
// collaborative lookups.
func collectionSpecs(cfg *config.Config) []vectorstore.CollectionSpec {
	return []vectorstore.CollectionSpec{
		{
			Name: cfg.PostsCollection,
			Dense: map[string]int{
				vectorstore.VectorDense:  cfg.VectorSize,
				vectorstore.VectorCoarse: cfg.VectorSize / 2,
			},
			Sparse: []string{vectorstore.VectorSparse},
			Indexes: []vectorstore.PayloadIndex{
				{Field: vectorstore.FieldType, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldCategoryID, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldUserID, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldCreatedTs, Kind: vectorstore.PayloadInteger},
				{Field: "score", Kind: vectorstore.PayloadInteger},
				{Field: "commentCount", Kind: vectorstore.PayloadInteger},
				{Field: "contentLength", Kind: vectorstore.PayloadInteger},
				{Field: "trending", Kind: vectorstore.PayloadBool},
			},
		},
		{
			Name:   cfg.CommentsCollection,
			Dense:  map[string]int{vectorstore.VectorDense: cfg.VectorSize},
			Sparse: []string{vectorstore.VectorSparse},
			Indexes: []vectorstore.PayloadIndex{
				{Field: vectorstore.FieldType, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldCategoryID, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldUserID, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldCreatedTs, Kind: vectorstore.PayloadInteger},
			},
		},
		{
			Name:  cfg.UsersCollection,
			Dense: map[string]int{vectorstore.VectorDense: cfg.VectorSize},
			Indexes: []vectorstore.PayloadIndex{
				{Field: vectorstore.FieldType, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldUserID, Kind: vectorstore.PayloadKeyword},
			},
		},
		{
			Name:   cfg.RecommendationsCollection,
			Dense:  map[string]int{vectorstore.VectorDense: cfg.VectorSize},
			Sparse: []string{vectorstore.VectorSparse},
			Indexes: []vectorstore.PayloadIndex{
				{Field: vectorstore.FieldType, Kind: vectorstore.PayloadKeyword},
				{Field: vectorstore.FieldUserID, Kind: vectorstore.PayloadKeyword},
			},
		},
	}
}
