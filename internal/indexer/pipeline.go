// Package indexer turns posts from the relational store into indexed points
// in the vector store: markdown stripped, embedded in batches, and upserted
// with dense, coarse, and sparse named vectors.
package indexer

import (
	"context"
	"fmt"

	"discourse-ai/internal/contextutil"
	"discourse-ai/internal/embedding"
	"discourse-ai/internal/storage"
	"discourse-ai/internal/textprep"
	"discourse-ai/internal/vectorstore"
)

// Embedder is the slice of the provider chain the pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, text string, kind embedding.Kind) embedding.Result
	EmbedBatch(ctx context.Context, texts []string, kind embedding.Kind) []embedding.Result
}

// Stats summarizes one indexing run.
type Stats struct {
	PostsProcessed  int `json:"postsProcessed"`
	PostsIndexed    int `json:"postsIndexed"`
	Failures        int `json:"failures"`
	FallbackVectors int `json:"fallbackVectors"`
}

// Pipeline orchestrates the indexing of posts into the vector store.
type Pipeline struct {
	posts      storage.PostStore
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	vectorSize int
	vocabSize  int
	batchSize  int
}

// NewPipeline creates an indexing pipeline.
func NewPipeline(posts storage.PostStore, embedder Embedder, store vectorstore.VectorStore, collection string, vectorSize, vocabSize, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Pipeline{
		posts:      posts,
		embedder:   embedder,
		store:      store,
		collection: collection,
		vectorSize: vectorSize,
		vocabSize:  vocabSize,
		batchSize:  batchSize,
	}
}

// IndexPost indexes a single post.
func (p *Pipeline) IndexPost(ctx context.Context, post *storage.Post) error {
	result := p.embedder.Embed(ctx, embeddingText(post), embedding.KindPassage)
	point := p.buildPoint(post, result)
	if err := p.store.Upsert(ctx, p.collection, []vectorstore.Point{point}); err != nil {
		return fmt.Errorf("failed to upsert post %s: %w", post.ID, err)
	}
	return nil
}

// IndexAll pages through every post and indexes them in batches. Batch
// failures are logged and counted, never fatal; the context cancels the run.
func (p *Pipeline) IndexAll(ctx context.Context) (*Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	stats := &Stats{}

	for offset := 0; ; offset += p.batchSize {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		posts, err := p.posts.List(ctx, p.batchSize, offset)
		if err != nil {
			return stats, fmt.Errorf("failed to list posts at offset %d: %w", offset, err)
		}
		if len(posts) == 0 {
			break
		}

		texts := make([]string, len(posts))
		for i := range posts {
			texts[i] = embeddingText(&posts[i])
		}
		results := p.embedder.EmbedBatch(ctx, texts, embedding.KindPassage)

		points := make([]vectorstore.Point, len(posts))
		for i := range posts {
			stats.PostsProcessed++
			if results[i].Fallback {
				stats.FallbackVectors++
			}
			points[i] = p.buildPoint(&posts[i], results[i])
		}

		if err := p.store.Upsert(ctx, p.collection, points); err != nil {
			stats.Failures += len(points)
			logger.ErrorContext(ctx, "failed to upsert post batch", "offset", offset, "count", len(points), "error", err)
			continue
		}
		stats.PostsIndexed += len(points)
	}

	logger.InfoContext(ctx, "post indexing completed",
		"processed", stats.PostsProcessed,
		"indexed", stats.PostsIndexed,
		"failures", stats.Failures,
		"fallbackVectors", stats.FallbackVectors)
	return stats, nil
}

// buildPoint assembles the named vectors and payload for one post. The coarse
// vector is the dense vector truncated to half dimension and renormalized,
// feeding the fast first pass of multi-stage search.
func (p *Pipeline) buildPoint(post *storage.Post, result embedding.Result) vectorstore.Point {
	plain := textprep.PlainText(post.Content)
	payload := vectorstore.PostPayload{
		BasePayload: vectorstore.BasePayload{
			Type:       vectorstore.TypePost,
			CategoryID: post.CategoryID,
			UserID:     post.UserID,
			CreatedTs:  post.CreatedAt.Unix(),
		},
		Title:         post.Title,
		ContentLength: len(plain),
		Score:         post.Score,
		CommentCount:  post.CommentCount,
		Trending:      post.Trending,
	}
	return vectorstore.Point{
		ID: post.ID,
		Dense: map[string][]float32{
			vectorstore.VectorDense:  result.Vector,
			vectorstore.VectorCoarse: embedding.NormalizeDim(result.Vector, p.vectorSize/2),
		},
		Sparse: map[string]embedding.SparseVector{
			vectorstore.VectorSparse: embedding.HashSparse(post.Title+" "+plain, p.vocabSize),
		},
		Payload: payload.ToMap(),
	}
}

// embeddingText renders a post as the passage text to embed: the title plus
// the markdown-stripped body, bounded so one huge post cannot blow a
// provider's input limit.
func embeddingText(post *storage.Post) string {
	plain := textprep.PlainText(post.Content)
	return textprep.Truncate(post.Title+"\n\n"+plain, 512)
}
