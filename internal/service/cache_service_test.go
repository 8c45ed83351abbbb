package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheRepo struct {
	*memoryCacheRepo
	err error
}

func (f *failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return f.err
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var dest map[string]string
	hit, err := svc.Get(ctx, "availability:store:s1", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "availability:store:s1", map[string]string{"id": "s1"}, 0))
	hit, err = svc.Get(ctx, "availability:store:s1", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "s1", dest["id"])

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Empty(t, repo.entries)

	var dest string
	hit, err := svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "availability:store:s1", "a", 0))
	require.NoError(t, svc.Set(ctx, "availability:store:s2", "b", 0))
	require.NoError(t, svc.Set(ctx, "availability:product:p1", "c", 0))

	require.NoError(t, svc.Invalidate(ctx, "availability:store:*"))
	assert.Len(t, repo.entries, 1)
	assert.Contains(t, repo.entries, "availability:product:p1")
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := &failingCacheRepo{memoryCacheRepo: newMemoryCacheRepo(), err: errors.New("connection reset")}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var dest string
	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.EqualError(t, err, "connection reset")
}
