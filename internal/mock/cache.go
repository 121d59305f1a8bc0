package mock

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
)

// Cache implements cache behaviour for tests.
type Cache struct {
	// stored values
	MediaOut []byte

	// etag values
	EtagMedia string

	// errors
	GetMediaErr     error
	GetEtagMediaErr error
	DelMediaErr     error
	DelEtagMediaErr error

	// call flags
	GetMediaCalled     bool
	GetEtagMediaCalled bool
	SetMediaCalled     bool
	SetEtagMediaCalled bool
	DelMediaCalled     bool
	DelEtagMediaCalled bool

	SetTTL time.Duration
}

func (c *Cache) GetMediaDetails(ctx context.Context, id db.UUID) ([]byte, error) {
	c.GetMediaCalled = true
	if c.GetMediaErr != nil {
		return nil, c.GetMediaErr
	}
	return c.MediaOut, nil
}

func (c *Cache) GetEtagMediaDetails(ctx context.Context, id db.UUID) (string, error) {
	c.GetEtagMediaCalled = true
	if c.GetEtagMediaErr != nil {
		return "", c.GetEtagMediaErr
	}
	return c.EtagMedia, nil
}

func (c *Cache) SetMediaDetails(ctx context.Context, id db.UUID, data []byte, ttl time.Duration) {
	c.SetMediaCalled = true
	c.MediaOut = data
	c.SetTTL = ttl
}

func (c *Cache) SetEtagMediaDetails(ctx context.Context, id db.UUID, etag string, ttl time.Duration) {
	c.SetEtagMediaCalled = true
	c.EtagMedia = etag
	c.SetTTL = ttl
}

func (c *Cache) DeleteMediaDetails(ctx context.Context, id db.UUID) error {
	c.DelMediaCalled = true
	return c.DelMediaErr
}

func (c *Cache) DeleteEtagMediaDetails(ctx context.Context, id db.UUID) error {
	c.DelEtagMediaCalled = true
	return c.DelEtagMediaErr
}
