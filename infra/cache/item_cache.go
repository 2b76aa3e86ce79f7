package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog/app/catalog"
	"catalog/domain"
	"catalog/pkg/metrics"
)

const (
	itemKeyPrefix = "catalog:item:"
	// generationTTL bounds how long an invalidation fences out in-flight reads.
	generationTTL = 24 * time.Hour
)

var errStaleRead = errors.New("item changed while it was being read")

// ItemRepository serves FindByID from Redis and falls through to the wrapped
// store on a miss. Writes go to the store first and then drop the cached entry
// and bump the item's generation. A miss is only cached if the generation did
// not move while the store was read. Redis failures never fail a call.
type ItemRepository struct {
	catalog.ItemRepository
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

var _ catalog.ItemRepository = (*ItemRepository)(nil)

func NewItemRepository(store catalog.ItemRepository, client *redis.Client, ttl time.Duration, m *metrics.Metrics) *ItemRepository {
	return &ItemRepository{
		ItemRepository: store,
		client:         client,
		ttl:            ttl,
		metrics:        m,
	}
}

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

func generationKey(id int64) string {
	return itemKey(id) + ":gen"
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (domain.Item, error) {
	key := itemKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var it domain.Item
		if err := json.Unmarshal(data, &it); err == nil {
			r.metrics.CacheHit()
			return it, nil
		}
		zap.L().Warn("discarding unreadable cache entry", zap.String("key", key))
		r.metrics.CacheError()
	case errors.Is(err, redis.Nil):
		r.metrics.CacheMiss()
	default:
		zap.L().Warn("cache get failed", zap.String("key", key), zap.Error(err))
		r.metrics.CacheError()
	}

	gen, genErr := r.generation(ctx, id)

	it, err := r.ItemRepository.FindByID(ctx, id)
	if err != nil {
		return it, err
	}
	if genErr == nil {
		r.store(ctx, id, gen, it)
	}
	return it, nil
}

// FindByIDUncached reads the item from the wrapped store. Callers that write
// the record back use it so a cached copy never becomes the base of a save.
func (r *ItemRepository) FindByIDUncached(ctx context.Context, id int64) (domain.Item, error) {
	return r.ItemRepository.FindByID(ctx, id)
}

func (r *ItemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	saved, err := r.ItemRepository.Save(ctx, item)
	if err != nil {
		return saved, err
	}
	r.invalidate(ctx, saved.ID)
	return saved, nil
}

func (r *ItemRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.ItemRepository.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *ItemRepository) generation(ctx context.Context, id int64) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(id)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		zap.L().Warn("cache generation read failed", zap.Int64("item_id", id), zap.Error(err))
		r.metrics.CacheError()
		return 0, err
	}
	return gen, nil
}

// store caches it under WATCH so an invalidation that landed after gen was
// read discards the write.
func (r *ItemRepository) store(ctx context.Context, id, gen int64, it domain.Item) {
	key := itemKey(id)
	data, err := json.Marshal(it)
	if err != nil {
		zap.L().Warn("failed to marshal cache value", zap.String("key", key), zap.Error(err))
		return
	}

	genKey := generationKey(id)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		zap.L().Debug("skipping cache set for concurrently modified item", zap.String("key", key))
	default:
		zap.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
		r.metrics.CacheError()
	}
}

func (r *ItemRepository) invalidate(ctx context.Context, id int64) {
	genKey := generationKey(id)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, itemKey(id))
		return nil
	})
	if err != nil {
		zap.L().Warn("cache invalidation failed", zap.Int64("item_id", id), zap.Error(err))
		r.metrics.CacheError()
	}
}
