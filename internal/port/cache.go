package port

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
)

// Cache provides caching capabilities for media detail lookups.
type Cache interface {
	GetMediaDetails(ctx context.Context, id db.UUID) ([]byte, error)
	GetEtagMediaDetails(ctx context.Context, id db.UUID) (string, error)
	SetMediaDetails(ctx context.Context, id db.UUID, data []byte, ttl time.Duration)
	SetEtagMediaDetails(ctx context.Context, id db.UUID, etag string, ttl time.Duration)
	DeleteMediaDetails(ctx context.Context, id db.UUID) error
	DeleteEtagMediaDetails(ctx context.Context, id db.UUID) error
}
