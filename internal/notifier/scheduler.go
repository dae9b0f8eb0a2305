package notifier

import (
	"context"
	"time"

	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// Scheduler runs the expiration scan periodically
type Scheduler struct {
	scanner  *Scanner
	interval time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
}

// NewScheduler creates a new scan scheduler
func NewScheduler(scanner *Scanner, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		scanner:  scanner,
		interval: interval,
		logger:   log,
	}
}

// Start starts the scheduler in a background goroutine. The first scan runs
// immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("expiration scan scheduler started")

		s.run(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("expiration scan scheduler stopped")
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := s.scanner.Scan(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled expiration scan failed")
	}
}
