package task

import (
	"context"

	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// NoopDispatcher drops every task; used when Redis is not configured so the
// API can still run (variants are then only produced by the reconcile sweep
// once a queue is available).
type NoopDispatcher struct{}

var _ port.TaskDispatcher = (*NoopDispatcher)(nil)

func NewNoopDispatcher() *NoopDispatcher { return &NoopDispatcher{} }

func (d *NoopDispatcher) EnqueueGenerateVariants(ctx context.Context, objectKey, contentType string) error {
	return nil
}
