package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shramsetu/ncosearch/internal/config"
)

// errEmbeddingCountMismatch indicates the endpoint returned fewer vectors
// than requested. Retryable: rate-limiting behind a 200 status can produce
// partial responses.
var errEmbeddingCountMismatch = errors.New("embedding response count mismatch")

// errUpstreamProviderFailure indicates the endpoint returned HTTP 200 but the
// body carried an error instead of embedding data. Routing providers do this
// when every upstream fails; retrying is futile.
var errUpstreamProviderFailure = errors.New("upstream provider failure")

// OpenAIEmbedder embeds texts through an OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client        *openai.Client
	model         string
	dimensions    int
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// OpenAIOption is a functional option for OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.backoffFactor = f }
}

// WithDimensions sets the expected vector dimensionality.
func WithDimensions(d int) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.dimensions = d }
}

// NewOpenAIEmbedder creates an embedder backed by the configured endpoint.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig, model string, opts ...OpenAIOption) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey())
	if cfg.BaseURL() != "" {
		clientCfg.BaseURL = cfg.BaseURL()
	}
	if cfg.Timeout() > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}
	}

	e := &OpenAIEmbedder{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         model,
		dimensions:    DefaultHashDimensions,
		maxRetries:    cfg.MaxRetries(),
		initialDelay:  2 * time.Second,
		backoffFactor: 2.0,
	}
	if e.maxRetries <= 0 {
		e.maxRetries = config.DefaultEmbedRetries
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the embedding model identifier.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Dimensions returns the expected vector dimensionality.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Embed generates unit-normalized embeddings for the given texts in a single
// endpoint call.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	}

	var resp openai.EmbeddingResponse
	var err error

	err = e.withRetry(ctx, func() error {
		resp, err = e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		// A 200 with zero data, no model, and zero usage is a routed
		// upstream failure, not a transient overload.
		if len(resp.Data) == 0 && string(resp.Model) == "" && resp.Usage.TotalTokens == 0 {
			return fmt.Errorf("%w: endpoint returned no embedding data", errUpstreamProviderFailure)
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d texts", errEmbeddingCountMismatch, len(resp.Data), len(texts))
		}
		return nil
	})
	if err != nil {
		return nil, e.wrapError("embedding", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vec := make([]float32, len(data.Embedding))
		copy(vec, data.Embedding)
		vectors[i] = normalize(vec)
	}

	if e.dimensions == 0 && len(vectors) > 0 {
		e.dimensions = len(vectors[0])
	}

	return vectors, nil
}

// withRetry executes the function with exponential backoff retry.
func (e *OpenAIEmbedder) withRetry(ctx context.Context, fn func() error) error {
	delay := e.initialDelay
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < e.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * e.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable determines if an error should be retried.
func isRetryable(err error) bool {
	if errors.Is(err, errEmbeddingCountMismatch) {
		return true
	}
	if errors.Is(err, errUpstreamProviderFailure) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return true
	}

	return false
}

// wrapError wraps an endpoint error into a ProviderError.
func (e *OpenAIEmbedder) wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(operation, 0, err.Error(), err)
}

var _ Embedder = (*OpenAIEmbedder)(nil)
