package cache

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// Noop is used when Redis is not configured: every lookup is a miss and
// writes vanish.
type Noop struct{}

var _ port.Cache = (*Noop)(nil)

func NewNoop() *Noop { return &Noop{} }

func (*Noop) GetMediaDetails(ctx context.Context, id db.UUID) ([]byte, error) { return nil, nil }

func (*Noop) GetEtagMediaDetails(ctx context.Context, id db.UUID) (string, error) { return "", nil }

func (*Noop) SetMediaDetails(ctx context.Context, id db.UUID, data []byte, ttl time.Duration) {}

func (*Noop) SetEtagMediaDetails(ctx context.Context, id db.UUID, etag string, ttl time.Duration) {}

func (*Noop) DeleteMediaDetails(ctx context.Context, id db.UUID) error { return nil }

func (*Noop) DeleteEtagMediaDetails(ctx context.Context, id db.UUID) error { return nil }
