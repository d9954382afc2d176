package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

const (
	keyPrefix     = "product:"
	versionSuffix = ":version"

	// versionTTL outlives any entry ttl so an in-flight read cannot see the
	// version counter expire and reset underneath it.
	versionTTL = 24 * time.Hour
)

var errStaleVersion = errors.New("product changed since it was read")

// RedisProductCache caches product responses in Redis. Cache errors never
// fail a request; they degrade to a miss.
//
// Every id carries a version counter next to the entry. Invalidate bumps it
// together with the delete, and Set writes under WATCH only while the counter
// still holds the value Get reported.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache creates a new product cache
func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisProductCache{client: client, ttl: ttl}
}

// Key returns the cache key for a product id
func Key(id uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// VersionKey returns the key of the invalidation counter for a product id
func VersionKey(id uint) string {
	return Key(id) + versionSuffix
}

func (c *RedisProductCache) Get(ctx context.Context, id uint) (*domain.ProductResponse, uint64, bool) {
	pipe := c.client.Pipeline()
	dataCmd := pipe.Get(ctx, Key(id))
	versionCmd := pipe.Get(ctx, VersionKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn(ctx).Err(err).Uint("product_id", id).Msg("Cache read failed")
		return nil, 0, false
	}

	version, err := versionCmd.Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn(ctx).Err(err).Uint("product_id", id).Msg("Unreadable cache version")
		return nil, 0, false
	}

	data, err := dataCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false
	}
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", id).Msg("Cache read failed")
		return nil, version, false
	}

	var product domain.ProductResponse
	if err := json.Unmarshal(data, &product); err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", id).Msg("Discarding corrupt cache entry")
		c.Invalidate(ctx, id)
		return nil, 0, false
	}

	logger.Debug(ctx).Uint("product_id", id).Msg("Cache hit")
	return &product, version, true
}

func (c *RedisProductCache) Set(ctx context.Context, product *domain.ProductResponse, version uint64) {
	data, err := json.Marshal(product)
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", product.ID).Msg("Failed to encode product for cache")
		return
	}

	key, versionKey := Key(product.ID), VersionKey(product.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		logger.Debug(ctx).Uint("product_id", product.ID).Msg("Skipping cache fill for a product changed since it was read")
	default:
		logger.Warn(ctx).Err(err).Uint("product_id", product.ID).Msg("Failed to cache product")
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uint) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, Key(id))
		pipe.Incr(ctx, VersionKey(id))
		pipe.Expire(ctx, VersionKey(id), versionTTL)
		return nil
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", id).Msg("Failed to invalidate cached product")
	}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
