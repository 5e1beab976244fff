// internal/service/inventory/application/sweeper.go
package application

import (
	"context"
	"errors"
	"time"

	"warehouse/internal/pkg/logger"
	"warehouse/internal/pkg/zookeeper"
)

// SweepLocker serializes sweeping across replicas. A nil locker means this
// instance always sweeps.
type SweepLocker interface {
	TryLock() error
	Unlock() error
}

// ExpirySweeper periodically releases expired reservations and purges
// terminal ones past retention. One sweeper per deployment does the work;
// the others skip their tick when the lock is held elsewhere.
type ExpirySweeper struct {
	service  *InventoryApplicationService
	locker   SweepLocker
	interval time.Duration

	// purge runs on every Nth tick, not every sweep
	purgeEvery int
	tick       int
}

func NewExpirySweeper(service *InventoryApplicationService, locker SweepLocker, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{
		service:    service,
		locker:     locker,
		interval:   interval,
		purgeEvery: 60,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Ctx(ctx).Info().Dur("interval", s.interval).Msg("expiry sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Ctx(ctx).Info().Msg("expiry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	if s.locker != nil {
		if err := s.locker.TryLock(); err != nil {
			if !errors.Is(err, zookeeper.ErrNotAcquired) {
				logger.Ctx(ctx).Warn().Err(err).Msg("sweep lock error, skipping tick")
			}
			return
		}
		defer func() {
			if err := s.locker.Unlock(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	if _, err := s.service.ProcessExpiredReservations(ctx); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("sweep failed")
		return
	}

	s.tick++
	if s.tick%s.purgeEvery == 0 {
		if _, err := s.service.PurgeStaleReservations(ctx); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("purge failed")
		}
	}
}
