package port

import (
	"context"
	"io"
)

// DocumentInfo describes a submitted document after structural validation.
type DocumentInfo struct {
	PageCount int
}

// FileOptimiser defines CPU-bound media transforms: the client-side
// normalisation pass and the worker-side variant resize.
type FileOptimiser interface {
	// Normalise re-encodes images to the normalized output format within the
	// configured dimension/size bounds and returns the bytes plus the
	// resulting MIME type. Non-image payloads pass through unchanged.
	Normalise(ctx context.Context, mimeType string, r io.Reader) ([]byte, string, error)
	// Resize re-encodes an image capped at maxWidth, preserving aspect ratio
	// and never upscaling.
	Resize(ctx context.Context, mimeType string, r io.Reader, maxWidth int) ([]byte, error)
	// InspectDocument structurally validates a document payload and extracts
	// side metadata. The payload itself is never modified.
	InspectDocument(ctx context.Context, mimeType string, r io.Reader) (DocumentInfo, error)
}
