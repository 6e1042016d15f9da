// Package scheduler runs the recurring portfolio jobs: the daily
// after-close snapshot and the price history top-up that feeds it.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/service"
)

// Scheduler owns the cron runner and the snapshot job.
type Scheduler struct {
	cron            *cron.Cron
	snapshotService *service.SnapshotService
	priceService    *service.PriceService
	log             zerolog.Logger
}

// New creates a Scheduler that builds a snapshot on the given cron spec.
func New(
	snapshotService *service.SnapshotService,
	priceService *service.PriceService,
	cronSpec string,
	log zerolog.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:            cron.New(),
		snapshotService: snapshotService,
		priceService:    priceService,
		log:             log,
	}

	if _, err := s.cron.AddFunc(cronSpec, s.runDailySnapshot); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running scheduled jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.log.Info().Msg("scheduler started")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runDailySnapshot() {
	ctx := context.Background()
	now := time.Now().UTC()

	// Top up today's closes first so the snapshot values from fresh data.
	if _, err := s.priceService.BackfillHistoricalPrices(ctx, now.AddDate(0, 0, -1), now); err != nil {
		s.log.Warn().Err(err).Msg("scheduled price refresh failed")
	}

	snapshot, err := s.snapshotService.CreateSnapshot(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled snapshot failed")
		return
	}
	if snapshot == nil {
		s.log.Info().Msg("scheduled snapshot skipped, portfolio empty")
		return
	}
	s.log.Info().Float64("totalValue", snapshot.TotalValue).Msg("scheduled snapshot complete")
}
