package media

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/logger"
	"github.com/templeatlas/media-pipeline-go/internal/port"
)

// ReconcilerConfig bounds the sweep: records stuck in `processing` longer
// than RetriggerAge get their generate-variants task re-enqueued (safe, the
// generator is idempotent); records older than GiveupAge are marked failed.
type ReconcilerConfig struct {
	RetriggerAge time.Duration
	GiveupAge    time.Duration
}

type reconcilerSrv struct {
	repo  port.MediaRepository
	tasks port.TaskDispatcher
	cfg   ReconcilerConfig
	now   func() time.Time
}

// compile-time check: *reconcilerSrv must satisfy port.Reconciler
var _ port.Reconciler = (*reconcilerSrv)(nil)

// NewReconciler constructs the sweep over stuck `processing` records. It
// covers the trigger paths this subsystem cannot observe: a lost finalize
// event or a worker killed mid-run.
func NewReconciler(repo port.MediaRepository, tasks port.TaskDispatcher, cfg ReconcilerConfig) port.Reconciler {
	if cfg.RetriggerAge <= 0 {
		cfg.RetriggerAge = time.Hour
	}
	if cfg.GiveupAge <= 0 {
		cfg.GiveupAge = 24 * time.Hour
	}
	return &reconcilerSrv{repo: repo, tasks: tasks, cfg: cfg, now: time.Now}
}

func (s *reconcilerSrv) ReconcileStuck(ctx context.Context) error {
	now := s.now()
	stuck, err := s.repo.ListProcessingBefore(ctx, now.Add(-s.cfg.RetriggerAge))
	if err != nil {
		return err
	}
	if len(stuck) == 0 {
		logger.Info(ctx, "no stuck media found")
		return nil
	}

	giveupCutoff := now.Add(-s.cfg.GiveupAge)
	for _, m := range stuck {
		if m.CreatedAt.Before(giveupCutoff) {
			logger.Warnf(ctx, "media #%s stuck for over %s, marking failed", m.ID, s.cfg.GiveupAge)
			if err := s.repo.MarkFailed(ctx, m.ID, "variant generation never completed"); err != nil {
				logger.Warnf(ctx, "failed marking media #%s as failed: %v", m.ID, err)
			}
			continue
		}

		logger.Infof(ctx, "re-triggering variant generation for media #%s", m.ID)
		if err := s.tasks.EnqueueGenerateVariants(ctx, m.ObjectKey, m.ContentType); err != nil {
			logger.Warnf(ctx, "failed re-enqueueing media #%s: %v", m.ID, err)
		}
	}
	return nil
}
