package provider

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder("local-hash", 64)

	a, err := e.Embed(context.Background(), []string{"software engineer"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"software engineer"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedder_UnitNorm(t *testing.T) {
	e := NewHashEmbedder("local-hash", 128)

	vecs, err := e.Embed(context.Background(), []string{
		"query: tailor",
		"passage: Sewing Machine Operator stitches garments",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	for _, vec := range vecs {
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}

func TestHashEmbedder_DistinctTexts(t *testing.T) {
	e := NewHashEmbedder("local-hash", 64)

	vecs, err := e.Embed(context.Background(), []string{"carpenter", "electrician"})
	require.NoError(t, err)
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestHashEmbedder_SimilarTextsScoreHigher(t *testing.T) {
	e := NewHashEmbedder("local-hash", DefaultHashDimensions)

	vecs, err := e.Embed(context.Background(), []string{
		"software developer",
		"software develop",
		"fish vendor",
	})
	require.NoError(t, err)

	near := dot(vecs[0], vecs[1])
	far := dot(vecs[0], vecs[2])
	assert.Greater(t, near, far)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := NewHashEmbedder("local-hash", 32)

	vecs, err := e.Embed(context.Background(), []string{"  "})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	for _, v := range vecs[0] {
		assert.Zero(t, v)
	}
}

func TestHashEmbedder_Devanagari(t *testing.T) {
	e := NewHashEmbedder("local-hash", 128)

	vecs, err := e.Embed(context.Background(), []string{"दर्जी", "दर्जी"})
	require.NoError(t, err)
	assert.Equal(t, vecs[0], vecs[1])

	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestHashEmbedder_Dimensions(t *testing.T) {
	assert.Equal(t, DefaultHashDimensions, NewHashEmbedder("m", 0).Dimensions())
	assert.Equal(t, 256, NewHashEmbedder("m", 256).Dimensions())
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
