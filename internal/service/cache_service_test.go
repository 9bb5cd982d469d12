package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
)

type stubCacheRepo struct {
	store  map[string][]byte
	getErr error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range s.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.store, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&stubCacheRepo{}, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out map[string]int
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", map[string]int{"a": 1}, 0))
	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestCacheServiceBackendFailureIsAMiss(t *testing.T) {
	svc := NewCacheService(&stubCacheRepo{getErr: errors.New("connection refused")}, nil, time.Minute, nil, true)

	var out map[string]int
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.store)
	assert.False(t, svc.Enabled())
}

func TestCacheServiceInvalidate(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "painel:overview:full:u1", 1, 0))
	require.NoError(t, svc.Set(ctx, "painel:overview:pedagogico:u1", 1, 0))
	require.NoError(t, svc.Set(ctx, "painel:overview:full:u2", 1, 0))

	require.NoError(t, svc.Invalidate(ctx, "painel:overview:*:u1"))
	assert.Len(t, repo.store, 1)
	assert.Contains(t, repo.store, "painel:overview:full:u2")
}
