package port

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/model"
)

// MediaRepository defines persistence operations for media records.
type MediaRepository interface {
	Create(ctx context.Context, media *model.Media) error
	GetByID(ctx context.Context, id db.UUID) (*model.Media, error)
	GetByObjectKey(ctx context.Context, objectKey string) (*model.Media, error)
	// CountOwnedSince returns how many records the actor created at or after
	// the given instant. Used by the soft rate limit; read-only.
	CountOwnedSince(ctx context.Context, ownerID string, since time.Time) (int, error)
	// FinaliseVariants merges the given variants into the record (monotonic
	// union: already-present names win) and sets status to `ready`. The
	// update is a no-op for records that already left `processing`.
	FinaliseVariants(ctx context.Context, id db.UUID, variants model.Variants) error
	// MarkFailed sets status to `failed` with a diagnostic message, only for
	// records still in `processing`.
	MarkFailed(ctx context.Context, id db.UUID, reason string) error
	// ListProcessingBefore returns records stuck in `processing` that were
	// created before the given cutoff, for the reconciliation sweep.
	ListProcessingBefore(ctx context.Context, before time.Time) ([]*model.Media, error)
}
