package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates embeddings through the OpenAI API.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	batchLimit int
}

// NewOpenAIProvider creates an OpenAI embedding provider. dimensions requests
// a reduced output size from models that support it (text-embedding-3-*);
// pass 0 to use the model's native dimension.
func NewOpenAIProvider(apiKey, model string, dimensions int) *OpenAIProvider {
	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		batchLimit: 100,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) BatchLimit() int {
	return p.batchLimit
}

// Embed generates embeddings for the given texts. OpenAI models are
// symmetric, so the kind hint is not encoded into the input.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string, _ Kind) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, p.classify(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		result[i] = data.Embedding
	}
	return result, nil
}

// classify maps go-openai errors onto the chain's taxonomy. The client does
// not expose response headers, so rate limits get exponential backoff rather
// than a Retry-After duration.
func (p *OpenAIProvider) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return Classify(p.Name(), apiErr.HTTPStatusCode, 0, err)
	}
	return Classify(p.Name(), 0, 0, err)
}
