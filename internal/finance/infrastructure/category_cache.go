package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/purple-water/accounting/internal/finance/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// CachedCategoryRepository keeps each user's category list in Redis.
// Writes go to the wrapped repository first and then drop the cached list.
// Redis failures are logged and the database answers instead.
type CachedCategoryRepository struct {
	next   domain.CategoryRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewCachedCategoryRepository(next domain.CategoryRepository, rdb *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *CachedCategoryRepository {
	return &CachedCategoryRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func categoryCacheKey(kind domain.CategoryKind, userID string) string {
	return fmt.Sprintf("categories:%s:%s", kind, userID)
}

// categoryGenerationKey counts invalidations of one cached list. A list read
// from the database is only written back while the count is unchanged.
func categoryGenerationKey(kind domain.CategoryKind, userID string) string {
	return categoryCacheKey(kind, userID) + ":gen"
}

type cachedCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r *CachedCategoryRepository) FindByUser(ctx context.Context, kind domain.CategoryKind, userID string) ([]domain.Category, error) {
	key := categoryCacheKey(kind, userID)

	data, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedCategory
		if err := json.Unmarshal(data, &cached); err == nil {
			categories := make([]domain.Category, len(cached))
			for i, c := range cached {
				categories[i] = domain.Category{ID: c.ID, UserID: userID, Name: c.Name}
			}
			return categories, nil
		}
		r.logger.WithField("key", key).Warn("discarding unreadable category cache entry")
	case !errors.Is(err, redis.Nil):
		r.logger.WithError(err).WithField("key", key).Warn("category cache read failed")
	}

	genKey := categoryGenerationKey(kind, userID)
	generation, genErr := r.rdb.Get(ctx, genKey).Int64()
	if errors.Is(genErr, redis.Nil) {
		genErr = nil
	}

	categories, err := r.next.FindByUser(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		r.logger.WithError(genErr).WithField("key", genKey).Warn("category cache generation read failed")
		return categories, nil
	}

	cached := make([]cachedCategory, len(categories))
	for i, c := range categories {
		cached[i] = cachedCategory{ID: c.ID, Name: c.Name}
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return categories, nil
	}
	if err := r.store(ctx, key, genKey, generation, payload); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("category cache write failed")
	}
	return categories, nil
}

// store writes payload unless the list was invalidated after generation was
// read. A lost race leaves the key empty for the next reader.
func (r *CachedCategoryRepository) store(ctx context.Context, key, genKey string, generation int64, payload []byte) error {
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		r.logger.WithField("key", key).Debug("category list changed while loading, not caching")
		return nil
	}
	return err
}

func (r *CachedCategoryRepository) Exists(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) (bool, error) {
	return r.next.Exists(ctx, kind, userID, categoryID)
}

func (r *CachedCategoryRepository) Create(ctx context.Context, kind domain.CategoryKind, category domain.Category) (int64, error) {
	id, err := r.next.Create(ctx, kind, category)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, kind, category.UserID)
	return id, nil
}

func (r *CachedCategoryRepository) Update(ctx context.Context, kind domain.CategoryKind, category domain.Category) (int64, error) {
	affected, err := r.next.Update(ctx, kind, category)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		r.invalidate(ctx, kind, category.UserID)
	}
	return affected, nil
}

func (r *CachedCategoryRepository) DeleteUnreferenced(ctx context.Context, kind domain.CategoryKind, userID string, categoryID int64) (int64, error) {
	affected, err := r.next.DeleteUnreferenced(ctx, kind, userID, categoryID)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		r.invalidate(ctx, kind, userID)
	}
	return affected, nil
}

func (r *CachedCategoryRepository) invalidate(ctx context.Context, kind domain.CategoryKind, userID string) {
	key := categoryCacheKey(kind, userID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, categoryGenerationKey(kind, userID))
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("category cache invalidation failed")
	}
}
