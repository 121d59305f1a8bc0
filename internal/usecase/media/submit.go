package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/templeatlas/media-pipeline-go/internal/logger"
	"github.com/templeatlas/media-pipeline-go/internal/model"
	"github.com/templeatlas/media-pipeline-go/internal/naming"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// CacheControlImmutable is attached to every upload: the key already encodes
// uniqueness, so content at a given path never changes.
const CacheControlImmutable = "public, max-age=31536000, immutable"

// SubmitterConfig carries the pre-compression size ceilings.
type SubmitterConfig struct {
	MaxImageBytes    int64
	MaxDocumentBytes int64
}

type submitterSrv struct {
	repo    port.MediaRepository
	strg    port.Storage
	opt     port.FileOptimiser
	limiter port.RateLimiter
	newUUID port.UUIDGen
	cfg     SubmitterConfig
}

// compile-time check: *submitterSrv must satisfy port.MediaSubmitter
var _ port.MediaSubmitter = (*submitterSrv)(nil)

// NewSubmitter constructs a MediaSubmitter implementation.
func NewSubmitter(repo port.MediaRepository, strg port.Storage, opt port.FileOptimiser, limiter port.RateLimiter, newUUID port.UUIDGen, cfg SubmitterConfig) port.MediaSubmitter {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	return &submitterSrv{repo, strg, opt, limiter, newUUID, cfg}
}

// Submit runs the whole client half of the pipeline: authenticate, admit,
// validate, normalise, name, upload, register. A failure at any step before
// record creation leaves zero residue; the record is created exactly once
// per successful call, always with status `processing` and empty variants.
func (s *submitterSrv) Submit(ctx context.Context, in port.SubmitInput) (port.SubmitOutput, error) {
	if in.ActorID == "" {
		return port.SubmitOutput{}, ErrUnauthenticated
	}
	if err := s.limiter.CheckAndAdmit(ctx, in.ActorID); err != nil {
		return port.SubmitOutput{}, err
	}
	if err := s.validate(in); err != nil {
		return port.SubmitOutput{}, err
	}

	data, contentType, err := s.prepare(ctx, in)
	if err != nil {
		return port.SubmitOutput{}, err
	}

	// The key is computed from the post-compression payload so its extension
	// reflects the actual bytes being stored.
	objectKey := naming.BuildObjectKey(in.Folder, in.Filename, contentType)

	if err := s.upload(ctx, objectKey, data, contentType, in); err != nil {
		return port.SubmitOutput{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	downloadURL := s.strg.PublicURL(objectKey)

	m := &model.Media{
		ID:          s.newUUID(),
		OwnerID:     in.ActorID,
		MediaType:   in.MediaType,
		ObjectKey:   objectKey,
		DownloadURL: downloadURL,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Status:      model.MediaStatusProcessing,
		Variants:    model.Variants{},
	}
	if err := s.repo.Create(ctx, m); err != nil {
		// The blob is already written; remove it so a failed call leaves no
		// residue on either side.
		if rmErr := s.strg.RemoveFile(ctx, objectKey); rmErr != nil {
			logger.Warnf(ctx, "cleanup of orphaned object %q failed: %v", objectKey, rmErr)
		}
		return port.SubmitOutput{}, fmt.Errorf("failed creating media record: %w", err)
	}

	logger.Infof(ctx, "registered media #%s at %q, pending variants", m.ID, objectKey)
	return port.SubmitOutput{
		MediaID:     m.ID,
		DownloadURL: downloadURL,
		ObjectKey:   objectKey,
	}, nil
}

// validate enforces the file-class and size rules on the original,
// pre-compression payload, so oversized uploads fail fast without spending
// compression CPU.
func (s *submitterSrv) validate(in port.SubmitInput) error {
	if !in.MediaType.IsValid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown media type %q", in.MediaType)}
	}
	switch {
	case IsImage(in.ContentType):
		if !IsAllowedImage(in.ContentType) {
			return &ValidationError{Reason: fmt.Sprintf("unsupported image type %q", in.ContentType)}
		}
		if in.SizeBytes > s.cfg.MaxImageBytes {
			return &ValidationError{Reason: "image too large", LimitBytes: s.cfg.MaxImageBytes}
		}
	case IsDocument(in.ContentType):
		if in.SizeBytes > s.cfg.MaxDocumentBytes {
			return &ValidationError{Reason: "document too large", LimitBytes: s.cfg.MaxDocumentBytes}
		}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unsupported file type %q", in.ContentType)}
	}
	return nil
}

// prepare produces the exact bytes to store: images run through the
// normaliser, documents are structurally checked and passed through
// unchanged.
func (s *submitterSrv) prepare(ctx context.Context, in port.SubmitInput) ([]byte, string, error) {
	if IsImage(in.ContentType) {
		data, contentType, err := s.opt.Normalise(ctx, in.ContentType, in.Reader)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
		}
		return data, contentType, nil
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed reading file %q: %w", in.Filename, err)
	}
	// Declared size is caller-supplied; re-check what was actually read.
	if int64(len(data)) > s.cfg.MaxDocumentBytes {
		return nil, "", &ValidationError{Reason: "document too large", LimitBytes: s.cfg.MaxDocumentBytes}
	}
	info, err := s.opt.InspectDocument(ctx, in.ContentType, bytes.NewReader(data))
	if err != nil {
		return nil, "", &ValidationError{Reason: fmt.Sprintf("invalid document: %v", err)}
	}
	logger.Debugf(ctx, "document %q validated, %d page(s)", in.Filename, info.PageCount)
	return data, in.ContentType, nil
}

func (s *submitterSrv) upload(ctx context.Context, objectKey string, data []byte, contentType string, in port.SubmitInput) error {
	var reader io.Reader = bytes.NewReader(data)
	if in.OnProgress != nil {
		reader = newProgressReader(reader, int64(len(data)), in.OnProgress)
	}

	err := s.strg.SaveFile(ctx, objectKey, reader, int64(len(data)), port.SaveOptions{
		ContentType:  contentType,
		CacheControl: CacheControlImmutable,
		UserMetadata: map[string]string{
			"owner-id":          in.ActorID,
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return err
	}
	if in.OnProgress != nil {
		in.OnProgress(100)
	}
	return nil
}

// progressReader reports a monotonically non-decreasing 0-100 percentage as
// the wrapped reader is drained.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	cb    func(pct int)
}

func newProgressReader(r io.Reader, total int64, cb func(pct int)) *progressReader {
	return &progressReader{r: r, total: total, cb: cb}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.cb(pct)
		}
	}
	return n, err
}
