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

func TestCheckpointRepository(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	missing, err := repos.Checkpoints.LoadCheckpoint(ctx, "/media/none.jpg")
	require.NoError(t, err)
	assert.Nil(t, missing)

	mod := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cp := &core.Checkpoint{Path: "/media/cat.jpg", Size: 1024, ModTime: mod, EntityID: "img_1"}
	require.NoError(t, repos.Checkpoints.SaveCheckpoint(ctx, cp))
	assert.False(t, cp.UpdatedAt.IsZero())

	loaded, err := repos.Checkpoints.LoadCheckpoint(ctx, "/media/cat.jpg")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "img_1", loaded.EntityID)
	assert.True(t, loaded.Unchanged(1024, mod))
	assert.False(t, loaded.Unchanged(1024, mod.Add(time.Second)))

	assert.ErrorIs(t, repos.Checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{}), storage.ErrInvalidQuery)
}
