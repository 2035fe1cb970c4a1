package badger

import (
	"context"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRepository_AddGetCount(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	c := core.NewChunk("doc.txt", 0, "Contrat de 100 €")
	require.NoError(t, repos.Chunks.AddChunks(ctx, c))
	// Re-adding the same chunk replaces it.
	require.NoError(t, repos.Chunks.AddChunks(ctx, c))

	got, err := repos.Chunks.GetChunk(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Contrat de 100 €", got.Text)

	n, err := repos.Chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repos.Chunks.GetChunk(ctx, core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChunkRepository_FindSimilar(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	near := core.NewChunk("doc", 0, "near")
	near.Vector = []float32{1, 0, 0}
	mid := core.NewChunk("doc", 1, "mid")
	mid.Vector = []float32{0.7, 0.7, 0}
	far := core.NewChunk("doc", 2, "far")
	far.Vector = []float32{0, 0, 1}
	unembedded := core.NewChunk("doc", 3, "no vector")
	require.NoError(t, repos.Chunks.AddChunks(ctx, far, mid, near, unembedded))

	results, err := repos.Chunks.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Chunk.Text)
	assert.Equal(t, "mid", results[1].Chunk.Text)

	limited, err := repos.Chunks.FindSimilar(ctx, []float32{1, 0, 0}, -1, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "near", limited[0].Chunk.Text)
}

func TestFindSimilar_NoChunks(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	results, err := repos.Chunks.FindSimilar(context.Background(), []float32{0.1, 0.2}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 14.0, float64(dotProduct([]float32{1, 2, 3}, []float32{1, 2, 3, 4})), 1e-6)
	assert.Equal(t, float32(0), dotProduct(nil, []float32{1}))
}

func TestChunkRepository_ListChunks(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repos.Chunks.AddChunks(ctx, core.NewChunk("doc", i, "part")))
	}

	all, err := repos.Chunks.ListChunks(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)

	first, err := repos.Chunks.ListChunks(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, all[0].ID, first[0].ID)

	rest, err := repos.Chunks.ListChunks(ctx, first[1].ID, 0)
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, all[2].ID, rest[0].ID)

	none, err := repos.Chunks.ListChunks(ctx, all[4].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
