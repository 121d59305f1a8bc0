package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// Cache stores the rendered media-details payload and its ETag in Redis so
// polling clients do not hit the database on every request. The variant
// generator invalidates entries whenever it mutates a record.
type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

func (c *Cache) GetMediaDetails(ctx context.Context, id db.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, detailsKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) GetEtagMediaDetails(ctx context.Context, id db.UUID) (string, error) {
	val, err := c.client.Get(ctx, etagKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // cache miss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) SetMediaDetails(ctx context.Context, id db.UUID, data []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, detailsKey(id), data, ttl).Err(); err != nil {
		log.Printf("failed caching details for media #%s: %v", id, err)
	}
}

func (c *Cache) SetEtagMediaDetails(ctx context.Context, id db.UUID, etag string, ttl time.Duration) {
	if err := c.client.Set(ctx, etagKey(id), etag, ttl).Err(); err != nil {
		log.Printf("failed caching etag for media #%s: %v", id, err)
	}
}

func (c *Cache) DeleteMediaDetails(ctx context.Context, id db.UUID) error {
	if err := c.client.Del(ctx, detailsKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) DeleteEtagMediaDetails(ctx context.Context, id db.UUID) error {
	if err := c.client.Del(ctx, etagKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func detailsKey(id db.UUID) string {
	return "media_details:" + id.String()
}

func etagKey(id db.UUID) string {
	return "media_details_etag:" + id.String()
}
