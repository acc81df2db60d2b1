// Package provider implements embedding providers behind a common interface.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Embedder produces one unit-normalized vector per input text. All vectors
// from the same provider share the same dimensionality, and the same text
// always yields the same vector.
type Embedder interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the model identifier reported by the health endpoint.
	Model() string

	// Dimensions returns the vector dimensionality.
	Dimensions() int
}

// ErrUnsupportedOperation indicates the provider cannot serve the request.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ProviderError wraps an embedding endpoint failure with request context.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a ProviderError.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Operation returns the failed operation name.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the upstream HTTP status, zero when not applicable.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("provider %s failed (status %d): %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.operation, e.message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.cause }

// normalize scales vec to unit length in place and returns it. A zero vector
// is returned unchanged so that empty inputs stay harmless.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}
