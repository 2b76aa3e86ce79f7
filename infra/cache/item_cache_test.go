package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/app/catalog"
	"catalog/domain"
	"catalog/pkg/metrics"
)

// fakeStore is an in-memory item store counting lookups.
type fakeStore struct {
	catalog.ItemRepository
	items map[int64]domain.Item
	finds int
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (domain.Item, error) {
	s.finds++
	it, ok := s.items[id]
	if !ok {
		return domain.Item{}, domain.NotFound("item", id)
	}
	return it, nil
}

func (s *fakeStore) Save(_ context.Context, it domain.Item) (domain.Item, error) {
	s.items[it.ID] = it
	return it, nil
}

func (s *fakeStore) DeleteByID(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return domain.NotFound("item", id)
	}
	delete(s.items, id)
	return nil
}

func setup(t *testing.T) (*ItemRepository, *fakeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &fakeStore{items: map[int64]domain.Item{
		1: {ID: 1, Name: "Widget", Price: decimal.RequireFromString("9.99"), Categories: []domain.Category{{ID: 2, Name: "Tools"}}},
	}}
	return NewItemRepository(store, client, time.Minute, metrics.New()), store, mr
}

func TestItemRepository_FindByID_CachesAfterMiss(t *testing.T) {
	repo, store, mr := setup(t)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, store.finds)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, second.Price.Equal(first.Price))
	assert.Equal(t, first.CategoryIDs(), second.CategoryIDs())
	assert.True(t, mr.Exists("catalog:item:1"))
	assert.Equal(t, time.Minute, mr.TTL("catalog:item:1"))
}

func TestItemRepository_FindByID_NotFoundIsNotCached(t *testing.T) {
	repo, _, mr := setup(t)

	_, err := repo.FindByID(context.Background(), 42)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("catalog:item:42"))
}

func TestItemRepository_WritesInvalidate(t *testing.T) {
	repo, store, mr := setup(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, mr.Exists("catalog:item:1"))

	updated := store.items[1]
	updated.Name = "Gadget"
	_, err = repo.Save(ctx, updated)
	require.NoError(t, err)
	assert.False(t, mr.Exists("catalog:item:1"))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)

	require.NoError(t, repo.DeleteByID(ctx, 1))
	assert.False(t, mr.Exists("catalog:item:1"))
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepository_RedisDownFallsThrough(t *testing.T) {
	repo, store, mr := setup(t)
	mr.SetError("ERR injected failure")

	got, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 1, store.finds)
}

func TestItemRepository_CorruptEntryIsReplaced(t *testing.T) {
	repo, store, mr := setup(t)
	require.NoError(t, mr.Set("catalog:item:1", "{not json"))

	got, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 1, store.finds)
	cached, err := mr.Get("catalog:item:1")
	require.NoError(t, err)
	assert.NotEqual(t, "{not json", cached)
}

func TestItemRepository_FailedWriteKeepsEntry(t *testing.T) {
	repo, _, mr := setup(t)
	ctx := context.Background()
	_, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)

	err = repo.DeleteByID(ctx, 99)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, mr.Exists("catalog:item:1"))
}

// racingStore runs afterRead once, after the record was read and before the
// caller gets it back.
type racingStore struct {
	*fakeStore
	afterRead func()
}

func (s *racingStore) FindByID(ctx context.Context, id int64) (domain.Item, error) {
	it, err := s.fakeStore.FindByID(ctx, id)
	if hook := s.afterRead; hook != nil {
		s.afterRead = nil
		hook()
	}
	return it, err
}

func TestItemRepository_SaveDuringMissIsNotOverwritten(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	inner := &fakeStore{items: map[int64]domain.Item{
		1: {ID: 1, Name: "Widget", Price: decimal.RequireFromString("9.99")},
	}}
	store := &racingStore{fakeStore: inner}
	repo := NewItemRepository(store, client, time.Minute, metrics.New())

	store.afterRead = func() {
		renamed := inner.items[1]
		renamed.Name = "Renamed"
		_, err := repo.Save(ctx, renamed)
		require.NoError(t, err)
	}

	stale, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stale.Name)
	assert.False(t, mr.Exists("catalog:item:1"))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, mr.Exists("catalog:item:1"))
}

func TestItemRepository_FindByIDUncachedSkipsRedis(t *testing.T) {
	repo, store, mr := setup(t)
	ctx := context.Background()
	_, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)

	stored := store.items[1]
	stored.Name = "Renamed"
	store.items[1] = stored

	got, err := repo.FindByIDUncached(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 2, store.finds)
	cached, err := mr.Get("catalog:item:1")
	require.NoError(t, err)
	assert.Contains(t, cached, "Widget")
}
