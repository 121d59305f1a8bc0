package media

import (
	"context"
	"time"

	"github.com/templeatlas/media-pipeline-go/internal/port"
)

type rateLimiterSrv struct {
	repo    port.MediaRepository
	ceiling int
	window  time.Duration
	now     func() time.Time
}

// compile-time check: *rateLimiterSrv must satisfy port.RateLimiter
var _ port.RateLimiter = (*rateLimiterSrv)(nil)

// NewRateLimiter constructs the soft submission guard. It counts the actor's
// records inside the trailing window on every call; concurrent submissions
// may transiently exceed the ceiling by a small margin, which is acceptable
// for a non-authoritative check.
func NewRateLimiter(repo port.MediaRepository, ceiling int, window time.Duration) port.RateLimiter {
	return &rateLimiterSrv{repo: repo, ceiling: ceiling, window: window, now: time.Now}
}

func (s *rateLimiterSrv) CheckAndAdmit(ctx context.Context, actorID string) error {
	count, err := s.repo.CountOwnedSince(ctx, actorID, s.now().Add(-s.window))
	if err != nil {
		return err
	}
	if count >= s.ceiling {
		return &RateLimitedError{Ceiling: s.ceiling, Window: s.window}
	}
	return nil
}
