package event

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7/pkg/notification"

	"github.com/templeatlas/media-pipeline-go/internal/logger"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// Notifier is the slice of *minio.Client the listener needs.
type Notifier interface {
	ListenBucketNotification(ctx context.Context, bucketName, prefix, suffix string, events []string) <-chan notification.Info
}

// Listener bridges bucket finalize events to the task queue. MinIO delivers
// ObjectCreated notifications over a long-lived HTTP stream; each one becomes
// a generate-variants task. Delivery is at-least-once, the task handler is
// idempotent, so duplicates are harmless.
type Listener struct {
	notifier Notifier
	bucket   string
	tasks    port.TaskDispatcher
}

func NewListener(notifier Notifier, bucket string, tasks port.TaskDispatcher) *Listener {
	return &Listener{notifier: notifier, bucket: bucket, tasks: tasks}
}

// Run blocks consuming bucket notifications until ctx is cancelled. The
// notification channel is closed by the client on cancellation or on a
// non-retryable stream error.
func (l *Listener) Run(ctx context.Context) error {
	logger.Infof(ctx, "👂 Listening for object-created events on bucket %q...", l.bucket)

	ch := l.notifier.ListenBucketNotification(ctx, l.bucket, "", "", []string{"s3:ObjectCreated:*"})

	for info := range ch {
		if info.Err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("bucket notification stream failed: %w", info.Err)
		}

		for _, record := range info.Records {
			if !eventIsCreate(record.EventName) {
				continue
			}
			key, err := url.QueryUnescape(record.S3.Object.Key)
			if err != nil {
				logger.Warnf(ctx, "⚠️ Skipping event with undecodable key %q: %v", record.S3.Object.Key, err)
				continue
			}
			contentType := record.S3.Object.ContentType

			logger.Debugf(ctx, "Object created: %s (%s)", key, contentType)

			if err := l.tasks.EnqueueGenerateVariants(ctx, key, contentType); err != nil {
				logger.Errorf(ctx, "❌ Failed enqueueing variant generation for %q: %v", key, err)
			}
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("bucket notification stream closed unexpectedly")
}

// eventIsCreate reports whether the record's event name is an object-created
// event. The subscription filter already restricts to these but some servers
// fan out wider event sets.
func eventIsCreate(name string) bool {
	return strings.HasPrefix(name, "s3:ObjectCreated")
}
