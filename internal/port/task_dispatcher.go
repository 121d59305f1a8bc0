package port

import "context"

// TaskDispatcher enqueues asynchronous tasks for the variant worker.
type TaskDispatcher interface {
	// EnqueueGenerateVariants schedules variant generation for a finalized
	// object. Delivery is at-least-once; the consumer must be idempotent.
	EnqueueGenerateVariants(ctx context.Context, objectKey, contentType string) error
}
