package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestNewEmbedder_DefaultDimension(t *testing.T) {
	assert.Equal(t, DefaultDimension, NewEmbedder(0).Dimension())
	assert.Equal(t, 64, NewEmbedder(64).Dimension())
	assert.Equal(t, "hashing", NewEmbedder(8).Name())
}

func TestEncode_PreservesOrderAndShape(t *testing.T) {
	e := NewEmbedder(128)
	texts := []string{"I cannot sleep at night", "feeling hopeful today", ""}

	vecs, err := e.Encode(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 128)
	}
	assert.InDelta(t, 1.0, norm(vecs[0]), 1e-9)
	assert.InDelta(t, 1.0, norm(vecs[1]), 1e-9)
	// Text without tokens embeds to the zero vector.
	assert.Equal(t, 0.0, norm(vecs[2]))

	single, err := e.Encode(context.Background(), texts[1:2])
	require.NoError(t, err)
	assert.Equal(t, vecs[1], single[0])
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := NewEmbedder(256).Encode(context.Background(), []string{"the same words"})
	require.NoError(t, err)
	b, err := NewEmbedder(256).Encode(context.Background(), []string{"the same words"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_SimilarTextScoresHigher(t *testing.T) {
	e := NewEmbedder(512)
	vecs, err := e.Encode(context.Background(), []string{
		"I tried to overdose on pills last night",
		"last night I tried to overdose with pills",
		"went hiking with friends and loved the sunshine",
	})
	require.NoError(t, err)
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}

func TestEncode_StopwordsIgnored(t *testing.T) {
	e := NewEmbedder(64)
	vecs, err := e.Encode(context.Background(), []string{"the and of", "sleep", "the sleep"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, norm(vecs[0]))
	assert.Equal(t, vecs[1], vecs[2])
}

func TestEncode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbedder(16).Encode(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
