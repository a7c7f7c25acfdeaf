package usecase

import (
	"context"
	"time"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

// Scheduler wires the recurring trigger with the report batch use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	assets   []domain.Asset
}

// NewScheduler returns a helper to start/stop recurring batch runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, assets []domain.Asset) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, assets: assets}
}

// Start registers the batch run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		_ = s.pipeline.RunBatch(ctx, s.assets, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
