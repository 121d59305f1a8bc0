package optimiser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"

	"github.com/ledongthuc/pdf"
	"github.com/templeatlas/media-pipeline-go/internal/port"
	media "github.com/templeatlas/media-pipeline-go/internal/usecase/media"
)

// minQuality is the floor for the soft size target: below this the output
// degrades visibly and shaving more bytes is not worth it.
const minQuality = 50

// Config fixes the transform constants for one Optimiser instance. The
// client-side normaliser and the worker-side variant encoder run with
// independent instances and need not agree on quality.
type Config struct {
	// Quality on a 0-100 scale.
	Quality float32
	// MaxDimension caps width and height on Normalise; 0 disables the cap.
	MaxDimension int
	// TargetBytes is a soft output-size target for Normalise, reached by
	// stepping quality down; 0 disables it.
	TargetBytes int64
}

type Optimiser struct {
	cfg     Config
	webpEnc WebPEncoder
	pdfVal  PDFValidator
	// Transcodes are CPU-bound; the semaphore keeps concurrent submissions
	// from starving the process.
	sem *semaphore.Weighted
}

// compile-time check: *Optimiser must satisfy port.FileOptimiser
var _ port.FileOptimiser = (*Optimiser)(nil)

func NewOptimiser(cfg Config, webpEnc WebPEncoder, pdfVal PDFValidator) *Optimiser {
	return &Optimiser{
		cfg:     cfg,
		webpEnc: webpEnc,
		pdfVal:  pdfVal,
		sem:     semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Normalise re-encodes images to lossy WebP within the configured bounds:
// downscaled to MaxDimension preserving aspect ratio (never upscaled), then
// quality stepped down until the soft TargetBytes is met or the quality
// floor is hit. Non-image payloads are returned unchanged.
func (o *Optimiser) Normalise(ctx context.Context, mimeType string, r io.Reader) ([]byte, string, error) {
	if !media.IsImage(mimeType) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", fmt.Errorf("optimiser: failed to read data: %w", err)
		}
		return data, mimeType, nil
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, "", err
	}
	defer o.sem.Release(1)

	img, _, err := o.webpEnc.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("optimiser: failed to decode image: %w", err)
	}
	img = downscale(img, o.cfg.MaxDimension, o.cfg.MaxDimension)

	quality := o.cfg.Quality
	for {
		buf := &bytes.Buffer{}
		if err := o.webpEnc.Encode(img, quality, buf); err != nil {
			return nil, "", fmt.Errorf("optimiser: failed to encode WebP: %w", err)
		}
		if o.cfg.TargetBytes <= 0 || int64(buf.Len()) <= o.cfg.TargetBytes || quality-10 < minQuality {
			return buf.Bytes(), "image/webp", nil
		}
		quality -= 10
	}
}

// Resize re-encodes an image capped at maxWidth, preserving aspect ratio and
// never upscaling beyond the original.
func (o *Optimiser) Resize(ctx context.Context, mimeType string, r io.Reader, maxWidth int) ([]byte, error) {
	if !media.IsImage(mimeType) {
		return nil, fmt.Errorf("optimiser: cannot resize non-image type %q", mimeType)
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer o.sem.Release(1)

	img, _, err := o.webpEnc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("optimiser: failed to decode image: %w", err)
	}
	img = downscale(img, maxWidth, 0)

	buf := &bytes.Buffer{}
	if err := o.webpEnc.Encode(img, o.cfg.Quality, buf); err != nil {
		return nil, fmt.Errorf("optimiser: failed to encode WebP: %w", err)
	}
	return buf.Bytes(), nil
}

// InspectDocument structurally validates a PDF (the only allowed document
// type) and extracts its page count. The payload is never modified.
func (o *Optimiser) InspectDocument(ctx context.Context, mimeType string, r io.Reader) (port.DocumentInfo, error) {
	if !media.IsDocument(mimeType) {
		return port.DocumentInfo{}, fmt.Errorf("optimiser: unsupported document type %q", mimeType)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return port.DocumentInfo{}, fmt.Errorf("optimiser: failed to read document: %w", err)
	}

	// pdfcpu validates from a file path; stage the bytes in a temp file.
	tmp, err := os.CreateTemp("", "pdf_check_*.pdf")
	if err != nil {
		return port.DocumentInfo{}, fmt.Errorf("optimiser: could not create temp PDF: %w", err)
	}
	defer func(name string) {
		if err := os.Remove(name); err != nil {
			log.Printf("failed to remove temp file %q: %v", name, err)
		}
	}(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return port.DocumentInfo{}, fmt.Errorf("optimiser: failed to write temp PDF: %w", err)
	}
	_ = tmp.Close()

	if err := o.pdfVal.ValidateFile(tmp.Name()); err != nil {
		return port.DocumentInfo{}, fmt.Errorf("optimiser: PDF validation failed: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return port.DocumentInfo{}, fmt.Errorf("optimiser: failed to open PDF reader: %w", err)
	}

	return port.DocumentInfo{PageCount: reader.NumPage()}, nil
}

// downscale fits img inside maxWidth x maxHeight (0 disables a bound),
// preserving aspect ratio and never upscaling.
func downscale(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return img
	}

	scale := 1.0
	if maxWidth > 0 && w > maxWidth {
		scale = float64(maxWidth) / float64(w)
	}
	if maxHeight > 0 && h > maxHeight {
		if s := float64(maxHeight) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1.0 {
		return img
	}

	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
