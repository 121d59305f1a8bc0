package media

import (
	"context"
	"database/sql"
	"errors"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

type mediaGetterSrv struct {
	repo port.MediaRepository
}

// compile-time check: *mediaGetterSrv must satisfy port.MediaGetter
var _ port.MediaGetter = (*mediaGetterSrv)(nil)

// NewMediaGetter constructs a MediaGetter implementation.
func NewMediaGetter(repo port.MediaRepository) port.MediaGetter {
	return &mediaGetterSrv{repo: repo}
}

// GetMedia returns the record state for polling. Callers must treat
// `processing` as pending, `ready` as complete (falling back to the original
// URL for any absent variant) and `failed` as an error affordance; variants
// are never guaranteed populated while status is `processing`.
func (s *mediaGetterSrv) GetMedia(ctx context.Context, id db.UUID) (*port.GetMediaOutput, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}

	return &port.GetMediaOutput{
		ID:          m.ID,
		Status:      m.Status,
		URL:         m.DownloadURL,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Variants:    m.Variants,
		CreatedAt:   m.CreatedAt,
	}, nil
}
