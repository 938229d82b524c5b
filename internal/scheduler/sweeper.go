package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically applies due change-sets
type Sweeper struct {
	trigger  *Trigger
	logger   *zerolog.Logger
	interval time.Duration
	// claims younger than staleAfter belong to a run that may still be going
	staleAfter time.Duration
	stopChan   chan struct{}
}

// NewSweeper creates a new sweeper for due change-sets
func NewSweeper(trigger *Trigger, logger *zerolog.Logger, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		trigger:    trigger,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
		stopChan:   make(chan struct{}),
	}
}

// Start releases sets left claimed by a previous process, runs once, then runs on every
// tick until ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("stale_after", s.staleAfter).
		Msg("Starting change-set sweeper")

	if _, err := s.trigger.changes.RecoverStale(ctx, s.staleAfter); err != nil {
		s.logger.Error().Err(err).Msg("Failed to recover stale change-sets")
	}
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Change-set sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Change-set sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.trigger.RunDue(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to run due change-sets")
		return
	}
	for _, msg := range result.Errors {
		s.logger.Warn().Str("error", msg).Msg("Due change-set not applied")
	}
}
