package port

import (
	"context"
	"io"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/db"
	"github.com/templeatlas/media-pipeline-go/internal/model"
)

// UUIDGen produces record identifiers; injected so tests can fix them.
type UUIDGen func() db.UUID

// RateLimiter guards submission frequency per actor. Soft, client-observable
// guard only: the authoritative enforcement point is the object store's
// access-control layer, not this check.
type RateLimiter interface {
	CheckAndAdmit(ctx context.Context, actorID string) error
}

// MediaSubmitter validates, compresses, names, uploads and registers a
// pending media record in one synchronous call.
type MediaSubmitter interface {
	Submit(ctx context.Context, in SubmitInput) (SubmitOutput, error)
}

// SubmitInput carries an already-authenticated actor identity explicitly;
// nothing in the pipeline reads ambient user state.
type SubmitInput struct {
	ActorID     string
	Folder      string
	MediaType   model.MediaType
	Filename    string
	ContentType string
	SizeBytes   int64
	Reader      io.Reader
	// OnProgress, when set, receives a monotonically non-decreasing upload
	// percentage from 0 to 100.
	OnProgress func(pct int)
}

type SubmitOutput struct {
	MediaID     db.UUID `json:"media_id"`
	DownloadURL string  `json:"download_url"`
	ObjectKey   string  `json:"object_key"`
}

// FinalizeEvent is the at-least-once notification that an object write
// completed. The variant generator has no other inbound interface.
type FinalizeEvent struct {
	ObjectKey   string `json:"object_key" validate:"required"`
	ContentType string `json:"content_type"`
}

// VariantGenerator derives presentation variants for a finalized object and
// finalises the owning media record. All outcomes are observed through the
// record's status and variants, never through a return value to a caller.
type VariantGenerator interface {
	GenerateVariants(ctx context.Context, ev FinalizeEvent) error
}

// MediaGetter returns the state of a media record for polling by
// presentation code.
type MediaGetter interface {
	GetMedia(ctx context.Context, id db.UUID) (*GetMediaOutput, error)
}

type GetMediaOutput struct {
	ID          db.UUID           `json:"id"`
	Status      model.MediaStatus `json:"status"`
	URL         string            `json:"url"`
	ContentType string            `json:"content_type"`
	SizeBytes   int64             `json:"size_bytes"`
	Variants    model.Variants    `json:"variants"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Reconciler re-triggers or fails records stuck in `processing`.
type Reconciler interface {
	ReconcileStuck(ctx context.Context) error
}
