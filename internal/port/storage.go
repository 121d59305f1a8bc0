package port

import (
	"context"
	"io"
)

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	SizeBytes   int64
	ContentType string
}

// SaveOptions carries the headers and side metadata attached to an upload.
// UserMetadata is non-authoritative (owner identity, original filename).
type SaveOptions struct {
	ContentType  string
	CacheControl string
	UserMetadata map[string]string
}

// Storage defines file storage operations against the media bucket.
type Storage interface {
	EnsureBucket(ctx context.Context) error
	StatFile(ctx context.Context, fileKey string) (FileInfo, error)
	GetFile(ctx context.Context, fileKey string) (io.ReadSeekCloser, error)
	SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts SaveOptions) error
	RemoveFile(ctx context.Context, fileKey string) error
	// PublicURL resolves the durable public/CDN URL of an object. Pure; the
	// content at a key never changes, so the URL never needs refreshing.
	PublicURL(fileKey string) string
}
