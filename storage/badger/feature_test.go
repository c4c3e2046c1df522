package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureRepository_Basics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	vector := []float32{0.6, 0.8}

	added, err := repos.Features.AddFeatures(ctx, &core.Feature{Source: "img_1", Model: "test", Vector: vector})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, core.FeatureID(vector), added[0].ID)
	assert.False(t, added[0].InsertedAt.IsZero())

	got, err := repos.Features.GetFeature(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "img_1", got.Source)
	assert.Equal(t, vector, got.Vector)

	count, err := repos.Features.CountFeatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repos.Features.DeleteFeatures(ctx, added[0].ID, "fv_missing"))
	_, err = repos.Features.GetFeature(ctx, added[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeatureRepository_KeepsInsertedAt(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err = repos.Features.AddFeatures(ctx, &core.Feature{ID: "fv_fixed", Vector: []float32{1}, InsertedAt: at})
	require.NoError(t, err)

	got, err := repos.Features.GetFeature(ctx, "fv_fixed")
	require.NoError(t, err)
	assert.Equal(t, at, got.InsertedAt)
}

func TestFeatureRepository_RejectsEmptyVector(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Features.AddFeatures(context.Background(), &core.Feature{Source: "x"})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFeatureRepository_FindSimilar(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	_, err = repos.Features.AddFeatures(ctx,
		&core.Feature{Source: "north", Vector: []float32{1, 0}},
		&core.Feature{Source: "north-east", Vector: []float32{0.7071, 0.7071}},
		&core.Feature{Source: "east", Vector: []float32{0, 1}},
		&core.Feature{Source: "south", Vector: []float32{-1, 0}},
	)
	require.NoError(t, err)

	t.Run("ordered by score", func(t *testing.T) {
		results, err := repos.Features.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "north", results[0].Feature.Source)
		assert.InDelta(t, 1.0, results[0].Score, 0.0001)
		assert.Equal(t, "north-east", results[1].Feature.Source)
	})

	t.Run("threshold includes negatives when asked", func(t *testing.T) {
		results, err := repos.Features.FindSimilar(ctx, []float32{1, 0}, -1, 10)
		require.NoError(t, err)
		assert.Len(t, results, 4)
		assert.Equal(t, "south", results[3].Feature.Source)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := repos.Features.FindSimilar(ctx, []float32{1, 0}, -1, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := repos.Features.FindSimilar(ctx, []float32{1, 0}, 0, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}
