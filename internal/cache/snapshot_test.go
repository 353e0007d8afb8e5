package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
	"github.com/pulsewatch/pulsewatch/internal/repository/inmem"
)

func TestSnapshotReadThrough(t *testing.T) {
	repo := inmem.NewCheckRepo()
	require.NoError(t, repo.Create(context.Background(), &check.Check{Token: "a", Name: "a"}))

	snap := NewSnapshot(repo, time.Minute)

	list, err := snap.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A write the cache has not been told about is invisible until the TTL.
	require.NoError(t, repo.Create(context.Background(), &check.Check{Token: "b", Name: "b"}))
	list, err = snap.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Synchronous invalidation makes the next read see current truth.
	snap.Invalidate()
	list, err = snap.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
