package delivery

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/logger"
)

const chargeKeyPrefix = "delivery:charge:"

// errMiss is returned by a Cache when the key is absent.
var errMiss = errors.New("cache miss")

// Cache is the key/value store the charge cache sits on.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisCache struct{ client *redis.Client }

// NewRedisCache adapts a go-redis client to Cache.
func NewRedisCache(client *redis.Client) Cache { return &redisCache{client: client} }

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errMiss
	}
	return v, err
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// cachedRepo serves FindCharge from the cache, falling through to next on a miss. Unknown
// areas are cached as "-" so repeated lookups for them stay off the database. Cache
// failures are logged and never fail a lookup.
type cachedRepo struct {
	Repository
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedRepository(next Repository, cache Cache, ttl time.Duration, log *logger.Logger) Repository {
	return &cachedRepo{Repository: next, cache: cache, ttl: ttl, log: log.Action("delivery_charge_cache")}
}

func chargeKey(hubID, area string) string { return chargeKeyPrefix + hubID + ":" + area }

func (r *cachedRepo) FindCharge(ctx context.Context, hubID, area string) (int64, bool, error) {
	key := chargeKey(hubID, area)
	v, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		if v == "-" {
			return 0, false, nil
		}
		if charge, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			return charge, true, nil
		}
		r.log.Warn("discarding malformed cache entry", "key", key, "value", v)
	case !errors.Is(err, errMiss):
		r.log.Warn("cache read failed", "key", key, "error", err)
	}

	charge, ok, err := r.Repository.FindCharge(ctx, hubID, area)
	if err != nil {
		return 0, false, err
	}
	entry := "-"
	if ok {
		entry = strconv.FormatInt(charge, 10)
	}
	if err := r.cache.Set(ctx, key, entry, r.ttl); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
	return charge, ok, nil
}

func (r *cachedRepo) Upsert(ctx context.Context, a *HubArea) error {
	if err := r.Repository.Upsert(ctx, a); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, chargeKey(a.HubID, a.Area)); err != nil {
		r.log.Warn("cache invalidation failed", "hub", a.HubID, "area", a.Area, "error", err)
	}
	return nil
}
