package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/model"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

const (
	// processing records change soon, keep the cache window tight so pollers
	// see the finalized state quickly
	ttlProcessing = 15 * time.Second
	ttlTerminal   = time.Hour
)

// HTTPRenderer mediates between HTTP handlers and the media getter use case.
// It provides caching capabilities and returns both the JSON representation of
// the result as well as an ETag value derived from it.
type HTTPRenderer interface {
	// RenderGetMedia returns the cached JSON result and its ETag if available or
	// executes the underlying use case and caches the output otherwise.
	RenderGetMedia(ctx context.Context, getter port.MediaGetter, id db.UUID) ([]byte, string, error)
}

type httpRenderer struct {
	cache port.Cache
}

// compile-time check: *httpRenderer must satisfy HTTPRenderer
var _ HTTPRenderer = (*httpRenderer)(nil)

// NewHTTPRenderer creates a new HTTPRenderer implementation.
func NewHTTPRenderer(cache port.Cache) HTTPRenderer {
	return &httpRenderer{cache: cache}
}

// RenderGetMedia fetches media details either from cache or from the wrapped use
// case. It returns the JSON encoded output and a quoted ETag string.
func (r *httpRenderer) RenderGetMedia(ctx context.Context, getter port.MediaGetter, id db.UUID) ([]byte, string, error) {
	raw, err := r.cache.GetMediaDetails(ctx, id)
	etag, errEtag := r.cache.GetEtagMediaDetails(ctx, id)
	if err == nil && errEtag == nil && raw != nil && etag != "" {
		return raw, etag, nil
	}

	out, err := getter.GetMedia(ctx, id)
	if err != nil {
		return nil, "", err
	}

	raw, err = json.Marshal(out)
	if err != nil {
		return nil, "", fmt.Errorf("json marshal: %w", err)
	}

	etag = fmt.Sprintf("\"%08x\"", crc32.ChecksumIEEE(raw))
	ttl := cacheTTL(out.Status)
	r.cache.SetMediaDetails(ctx, id, raw, ttl)
	r.cache.SetEtagMediaDetails(ctx, id, etag, ttl)

	return raw, etag, nil
}

func cacheTTL(status model.MediaStatus) time.Duration {
	if status == model.MediaStatusProcessing {
		return ttlProcessing
	}
	return ttlTerminal
}
