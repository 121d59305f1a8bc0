package mariadb

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/model"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

type MediaRepository struct {
	db *sql.DB
}

// compile-time check: *MediaRepository must satisfy port.MediaRepository
var _ port.MediaRepository = (*MediaRepository)(nil)

func NewMediaRepository(database *sql.DB) *MediaRepository {
	return &MediaRepository{db: database}
}

const mediaColumns = `id, owner_id, media_type, object_key, download_url, content_type, size_bytes, status, variants, failure_message, created_at, updated_at`

func (r *MediaRepository) Create(ctx context.Context, media *model.Media) error {
	log.Printf("creating database record for media #%s, at status %q...", media.ID, media.Status)

	const query = `
      INSERT INTO medias
        (id, owner_id, media_type, object_key, download_url, content_type, size_bytes, status, variants, failure_message)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		media.ID, media.OwnerID, media.MediaType,
		media.ObjectKey, media.DownloadURL,
		media.ContentType, media.SizeBytes,
		media.Status, media.Variants, media.FailureMessage,
	)
	return err
}

func (r *MediaRepository) GetByID(ctx context.Context, id db.UUID) (*model.Media, error) {
	log.Printf("fetching media #%s from the database...", id)

	const query = `SELECT ` + mediaColumns + ` FROM medias WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *MediaRepository) GetByObjectKey(ctx context.Context, objectKey string) (*model.Media, error) {
	log.Printf("fetching media for object %q from the database...", objectKey)

	const query = `SELECT ` + mediaColumns + ` FROM medias WHERE object_key = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, objectKey))
}

func (r *MediaRepository) CountOwnedSince(ctx context.Context, ownerID string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM medias WHERE owner_id = ? AND created_at >= ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, ownerID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FinaliseVariants merges the generated variants into the record and flips
// it to `ready` in one statement. The stored map is applied as the patch
// over the incoming one, so keys already present always win and the union
// only ever grows; the status guard makes redelivered finalisations no-ops.
func (r *MediaRepository) FinaliseVariants(ctx context.Context, id db.UUID, variants model.Variants) error {
	log.Printf("finalising media #%s with %d variant(s)...", id, len(variants))

	const query = `
      UPDATE medias
      SET variants = JSON_MERGE_PATCH(CAST(? AS JSON), COALESCE(variants, JSON_OBJECT())),
          status = ?
      WHERE id = ? AND status = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		variants, model.MediaStatusReady, id, model.MediaStatusProcessing,
	)
	return err
}

// MarkFailed is only effective on records still in `processing`; terminal
// states never regress.
func (r *MediaRepository) MarkFailed(ctx context.Context, id db.UUID, reason string) error {
	log.Printf("marking media #%s as failed...", id)

	const query = `
      UPDATE medias
      SET status = ?, failure_message = ?
      WHERE id = ? AND status = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		model.MediaStatusFailed, reason, id, model.MediaStatusProcessing,
	)
	return err
}

func (r *MediaRepository) ListProcessingBefore(ctx context.Context, before time.Time) ([]*model.Media, error) {
	const query = `SELECT ` + mediaColumns + ` FROM medias WHERE status = ? AND created_at < ? ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, model.MediaStatusProcessing, before)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var medias []*model.Media
	for rows.Next() {
		var m model.Media
		if err := scanMedia(rows, &m); err != nil {
			return nil, err
		}
		medias = append(medias, &m)
	}
	return medias, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *MediaRepository) scanOne(row *sql.Row) (*model.Media, error) {
	var m model.Media
	if err := scanMedia(row, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMedia(row rowScanner, m *model.Media) error {
	return row.Scan(
		&m.ID, &m.OwnerID, &m.MediaType,
		&m.ObjectKey, &m.DownloadURL,
		&m.ContentType, &m.SizeBytes,
		&m.Status, &m.Variants, &m.FailureMessage,
		&m.CreatedAt, &m.UpdatedAt,
	)
}
