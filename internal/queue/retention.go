package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/meowfish/shop-api/internal/metrics"
	"github.com/meowfish/shop-api/internal/repository"
	"github.com/robfig/cron/v3"
)

// Sweeper purges sent notification records past the retention window on a
// cron schedule.
type Sweeper struct {
	records   repository.NotificationRepository
	logger    *slog.Logger
	schedule  string
	retention time.Duration
}

func NewSweeper(records repository.NotificationRepository, logger *slog.Logger, schedule string, retention time.Duration) *Sweeper {
	return &Sweeper{
		records:   records,
		logger:    logger.With("component", "retention_sweeper"),
		schedule:  schedule,
		retention: retention,
	}
}

// Start runs the sweeper until ctx is cancelled. The schedule uses standard
// 5-field cron syntax.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() { s.sweep(ctx) })
	if err != nil {
		return err
	}

	c.Start()
	s.logger.Info("retention sweeper started", "schedule", s.schedule, "retention", s.retention)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("retention sweeper shut down")
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)

	purged, err := s.records.PurgeSentBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("purge sent notifications", "error", err)
		return
	}
	if purged > 0 {
		metrics.RetentionPurgedTotal.Add(float64(purged))
		s.logger.Info("purged sent notifications", "count", purged, "cutoff", cutoff)
	}
}
