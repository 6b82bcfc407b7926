package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sweep physically removes expired sessions once.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.store.ClearExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear expired sessions: %w", err)
	}
	if n > 0 {
		s.opts.logger.Info("expired sessions cleared", zap.Int("count", n))
		s.opts.metrics.SessionEvent("swept")
	}
	return n, nil
}

// StartSweeper runs Sweep every interval until ctx is done. The returned
// channel closes when the loop exits. A non-positive interval disables it.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
					s.opts.logger.Warn("sweep failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}
