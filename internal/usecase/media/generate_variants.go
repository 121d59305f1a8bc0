package media

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/templeatlas/media-pipeline-go/internal/logger"
	"github.com/templeatlas/media-pipeline-go/internal/model"
	"github.com/templeatlas/media-pipeline-go/internal/naming"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

type variantGeneratorSrv struct {
	repo     port.MediaRepository
	opt      port.FileOptimiser
	strg     port.Storage
	cache    port.Cache
	guard    *ScopeGuard
	variants []VariantDef
}

// compile-time check: *variantGeneratorSrv must satisfy port.VariantGenerator
var _ port.VariantGenerator = (*variantGeneratorSrv)(nil)

// NewVariantGenerator constructs the server half of the pipeline. It is
// invoked once per finalize event and must tolerate duplicate delivery:
// every observable effect is idempotent.
func NewVariantGenerator(repo port.MediaRepository, opt port.FileOptimiser, strg port.Storage, cache port.Cache, guard *ScopeGuard, variants []VariantDef) port.VariantGenerator {
	return &variantGeneratorSrv{repo, opt, strg, cache, guard, variants}
}

// GenerateVariants derives the configured variants for a finalized object,
// uploads them and finalises the media record in one atomic merge. Failures
// are converted into status=failed on the record; nothing is propagated to
// a user because there is no caller to propagate to.
func (s *variantGeneratorSrv) GenerateVariants(ctx context.Context, ev port.FinalizeEvent) error {
	// Cheapest filter first, before any store lookup.
	if !s.guard.ShouldProcess(ev.ObjectKey, ev.ContentType) {
		logger.Debugf(ctx, "object %q (%s) out of scope, skipping", ev.ObjectKey, ev.ContentType)
		return nil
	}

	m, err := s.repo.GetByObjectKey(ctx, ev.ObjectKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Tolerated race: the submission side may not have written the
			// record yet, or the object is not ours. Redelivery will retry.
			logger.Debugf(ctx, "no media record for object %q yet, skipping", ev.ObjectKey)
			return nil
		}
		return err
	}
	if m.Status != model.MediaStatusProcessing {
		logger.Debugf(ctx, "media #%s already %s, nothing to do", m.ID, m.Status)
		return nil
	}
	if m.Variants.Complete(VariantNames(s.variants)) {
		logger.Debugf(ctx, "media #%s already has all variants, duplicate event", m.ID)
		return nil
	}

	scratch := newScratchDir()
	defer scratch.Cleanup(ctx)

	generated, err := s.buildVariants(ctx, m, scratch)
	if err != nil {
		s.attemptMarkFailed(ctx, m, err)
		return fmt.Errorf("%w: media #%s: %v", ErrVariantGenerationFailed, m.ID, err)
	}

	// One atomic monotonic merge: pre-existing variant keys always win, and
	// the status flip is guarded on `processing` in the store itself.
	if err := s.repo.FinaliseVariants(ctx, m.ID, generated); err != nil {
		s.attemptMarkFailed(ctx, m, err)
		return fmt.Errorf("%w: media #%s: finalise: %v", ErrVariantGenerationFailed, m.ID, err)
	}

	s.invalidateCache(ctx, m)
	logger.Infof(ctx, "media #%s ready with %d variant(s)", m.ID, len(generated))
	return nil
}

// buildVariants downloads the original to scratch storage and derives every
// configured variant. The resize jobs are independent and run concurrently
// over the same downloaded bytes; results are only merged after all of them
// succeed, so a partial run never writes anything to the record.
func (s *variantGeneratorSrv) buildVariants(ctx context.Context, m *model.Media, scratch *scratchDir) (model.Variants, error) {
	srcPath, err := s.downloadOriginal(ctx, m, scratch)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(s.variants))
	g, gCtx := errgroup.WithContext(ctx)
	for i, def := range s.variants {
		if _, ok := m.Variants[def.Name]; ok {
			// Never regenerate or overwrite a variant that already exists.
			urls[i] = m.Variants[def.Name]
			continue
		}
		g.Go(func() error {
			url, err := s.buildOne(gCtx, m, def, srcPath)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	generated := model.Variants{}
	for i, def := range s.variants {
		generated[def.Name] = urls[i]
	}
	return generated, nil
}

func (s *variantGeneratorSrv) downloadOriginal(ctx context.Context, m *model.Media, scratch *scratchDir) (string, error) {
	reader, err := s.strg.GetFile(ctx, m.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("failed downloading original %q: %w", m.ObjectKey, err)
	}
	defer func() { _ = reader.Close() }()

	f, err := scratch.Create("variant_src_*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed writing scratch copy of %q: %w", m.ObjectKey, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (s *variantGeneratorSrv) buildOne(ctx context.Context, m *model.Media, def VariantDef, srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	resized, err := s.opt.Resize(ctx, m.ContentType, src, def.MaxWidth)
	if err != nil {
		return "", fmt.Errorf("failed resizing %q variant: %w", def.Name, err)
	}

	variantKey := naming.VariantKey(m.ObjectKey, def.Name)
	err = s.strg.SaveFile(ctx, variantKey, bytes.NewReader(resized), int64(len(resized)), port.SaveOptions{
		ContentType:  "image/webp",
		CacheControl: CacheControlImmutable,
	})
	if err != nil {
		return "", fmt.Errorf("failed saving variant %q: %w", variantKey, err)
	}

	return s.strg.PublicURL(variantKey), nil
}

// attemptMarkFailed is the single best-effort secondary write of the
// pipeline: it records the failure so presentation code can show an error
// state instead of spinning forever, and swallows its own errors because the
// primary failure is the one worth reporting.
func (s *variantGeneratorSrv) attemptMarkFailed(ctx context.Context, m *model.Media, cause error) {
	if err := s.repo.MarkFailed(ctx, m.ID, cause.Error()); err != nil {
		logger.Warnf(ctx, "failed marking media #%s as failed: %v", m.ID, err)
		return
	}
	s.invalidateCache(ctx, m)
}

func (s *variantGeneratorSrv) invalidateCache(ctx context.Context, m *model.Media) {
	if err := s.cache.DeleteMediaDetails(ctx, m.ID); err != nil {
		logger.Warnf(ctx, "failed deleting cache for media #%s: %v", m.ID, err)
	}
	if err := s.cache.DeleteEtagMediaDetails(ctx, m.ID); err != nil {
		logger.Warnf(ctx, "failed deleting etag cache for media #%s: %v", m.ID, err)
	}
}

// scratchDir tracks local scratch files so they are removed on every exit
// path, including the error path.
type scratchDir struct {
	mu    sync.Mutex
	paths []string
}

func newScratchDir() *scratchDir { return &scratchDir{} }

func (d *scratchDir) Create(pattern string) (*os.File, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed creating scratch file: %w", err)
	}
	d.mu.Lock()
	d.paths = append(d.paths, f.Name())
	d.mu.Unlock()
	return f, nil
}

func (d *scratchDir) Cleanup(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warnf(ctx, "failed removing scratch file %q: %v", p, err)
		}
	}
	d.paths = nil
}
