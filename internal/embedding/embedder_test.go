package embedding

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(256)

	a := e.Embed("Content must not contain guaranteed returns")
	b := e.Embed("Content must not contain guaranteed returns")
	assert.Equal(t, a, b)

	c := e.Embed("Content must include a risk disclaimer")
	assert.NotEqual(t, a, c)
}

func TestHashEmbedderDimensionAndNorm(t *testing.T) {
	for _, dim := range []int{8, 64, 256, 300} {
		e := NewHashEmbedder(dim)
		vec := e.Embed("some rule text")
		require.Len(t, vec, dim)

		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
	}
}

func TestHashEmbedderDefaultDimension(t *testing.T) {
	e := NewHashEmbedder(0)
	assert.Equal(t, DefaultDimension, e.Dimension())
	assert.Len(t, e.Embed("x"), DefaultDimension)
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0, 0}
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
	assert.InDelta(t, 0.0, Cosine(a, []float32{0, 1, 0}), 1e-9)
	assert.InDelta(t, -1.0, Cosine(a, []float32{-1, 0, 0}), 1e-9)

	assert.Zero(t, Cosine(a, []float32{1, 0}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestEncodeDecodeVector(t *testing.T) {
	vec := NewHashEmbedder(32).Embed("round trip")
	assert.Equal(t, vec, DecodeVector(EncodeVector(vec)))
}

func TestMemoryIndexFindSimilar(t *testing.T) {
	idx := NewMemoryIndex(NewHashEmbedder(64))
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, 1, "Content must not promise guaranteed returns"))
	require.NoError(t, idx.Upsert(ctx, 2, "Content must include a risk disclaimer"))

	// Identical text scores 1.0 against its own entry.
	matches, err := idx.FindSimilar(ctx, "Content must not promise guaranteed returns", 3, 0.85)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].RuleID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-4)

	// Unrelated text clears no threshold.
	matches, err = idx.FindSimilar(ctx, "completely unrelated text", 3, 0.85)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryIndexTopKAndOrdering(t *testing.T) {
	idx := NewMemoryIndex(NewHashEmbedder(64))
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, idx.Upsert(ctx, i, "rule text"))
	}

	matches, err := idx.FindSimilar(ctx, "rule text", 2, 0.0)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestMemoryIndexRemove(t *testing.T) {
	idx := NewMemoryIndex(NewHashEmbedder(64))
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, 7, "to be removed"))
	require.NoError(t, idx.Remove(ctx, 7))

	matches, err := idx.FindSimilar(ctx, "to be removed", 3, 0.5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryIndexTruncatesSnapshot(t *testing.T) {
	idx := NewMemoryIndex(NewHashEmbedder(64))
	ctx := context.Background()

	long := strings.Repeat("a", 1200)
	require.NoError(t, idx.Upsert(ctx, 1, long))

	matches, err := idx.FindSimilar(ctx, long, 1, 0.9)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].RuleText, 500)
}
