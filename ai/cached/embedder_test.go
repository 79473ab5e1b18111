package cached

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lyricseeker/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Embedder, *mock.MockEmbedder) {
	t.Helper()

	inner := mock.NewMockEmbedder()
	cache, err := NewEmbedder("", "test-model", inner)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, cache.Close())
	})
	return cache, inner
}

func TestEmbedTextCachesRepeatedQueries(t *testing.T) {
	cache, inner := newTestCache(t)
	ctx := context.Background()

	first, err := cache.EmbedText(ctx, "songs about heartbreak")
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, 1, inner.CallCount())

	second, err := cache.EmbedText(ctx, "songs about heartbreak")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount(), "second identical query must be served from cache")
}

func TestEmbedTextTrimsBeforeKeying(t *testing.T) {
	cache, inner := newTestCache(t)
	ctx := context.Background()

	_, err := cache.EmbedText(ctx, "dancing all night")
	require.NoError(t, err)

	_, err = cache.EmbedText(ctx, "  dancing all night  ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.CallCount(), "padded variant of a cached query must hit")
}

func TestEmbedTextDistinctQueriesMiss(t *testing.T) {
	cache, inner := newTestCache(t)
	ctx := context.Background()

	_, err := cache.EmbedText(ctx, "summer road trip")
	require.NoError(t, err)

	_, err = cache.EmbedText(ctx, "winter nights alone")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.CallCount())
}

func TestEmbedTextErrorNotCached(t *testing.T) {
	cache, inner := newTestCache(t)
	ctx := context.Background()

	wantErr := errors.New("provider down")
	inner.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	_, err := cache.EmbedText(ctx, "broken")
	require.ErrorIs(t, err, wantErr)

	_, err = cache.EmbedText(ctx, "broken")
	require.ErrorIs(t, err, wantErr)

	assert.Equal(t, 2, inner.CallCount(), "failures must not populate the cache")
}

func TestEmbedTextsPassesThrough(t *testing.T) {
	cache, inner := newTestCache(t)
	ctx := context.Background()

	texts := []string{"first song", "second song"}

	_, err := cache.EmbedTexts(ctx, texts)
	require.NoError(t, err)

	_, err = cache.EmbedTexts(ctx, texts)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.CallCount(), "batch embedding is never cached")
}

func TestNewEmbedderValidation(t *testing.T) {
	t.Run("requires inner embedder", func(t *testing.T) {
		_, err := NewEmbedder("", "model", nil)
		assert.Error(t, err)
	})

	t.Run("requires model identifier", func(t *testing.T) {
		_, err := NewEmbedder("", "", mock.NewMockEmbedder())
		assert.Error(t, err)
	})
}

func TestCacheEntryRoundTrip(t *testing.T) {
	entry := cacheEntry{
		Model:  "text-embedding-3-small",
		Vector: []float32{0.25, -0.5, 1.0, 0.0},
	}

	got, err := unmarshalEntry(marshalEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestUnmarshalEntryRejectsGarbage(t *testing.T) {
	_, err := unmarshalEntry([]byte{0xff})
	assert.Error(t, err)
}
