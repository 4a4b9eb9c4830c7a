package usecase

import (
	"context"
	"log/slog"
	"time"

	"PapersDigest/internal/ports"
	"PapersDigest/pkg/kst"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.Run(ctx, trigger)
	})
}

// Run processes the day before trigger in UTC+9. A started run is not cancelled by ctx.
// Failures are logged only; the pipeline has already pushed the error card.
func (s *Scheduler) Run(ctx context.Context, trigger time.Time) {
	date := kst.Yesterday(trigger)
	s.logger.Info("scheduled run", "date", date)
	if err := s.pipeline.ProcessDay(context.WithoutCancel(ctx), date); err != nil {
		s.logger.Error("scheduled run failed", "date", date, "error", err)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
