package worker

import (
	"context"
	"log"

	"github.com/templeatlas/media-pipeline-go/internal/port"
	"github.com/templeatlas/media-pipeline-go/internal/task"
	"github.com/templeatlas/media-pipeline-go/internal/validation"
)

// GenerateVariantsHandler handles a generate-variants task.
// It validates the incoming payload and delegates the call to the service.
// Returning an error makes Asynq redeliver the task; the service is
// idempotent so retries are safe.
func GenerateVariantsHandler(ctx context.Context, p task.GenerateVariantsPayload, svc port.VariantGenerator) error {
	if err := validation.ValidateStruct(p); err != nil {
		log.Printf("❌  Payload validation failed: %v", err)
		return err
	}

	ev := port.FinalizeEvent{ObjectKey: p.ObjectKey, ContentType: p.ContentType}
	if err := svc.GenerateVariants(ctx, ev); err != nil {
		log.Printf("❌  Failed to generate variants for %q: %v", p.ObjectKey, err)
		return err
	}

	log.Printf("✅  Finished variant generation for %q", p.ObjectKey)
	return nil
}
