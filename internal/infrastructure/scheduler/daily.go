package scheduler

import (
	"context"
	"time"

	"SentimentReporter/internal/ports"
)

// DailyScheduler triggers the batch once at startup and then every 24 hours.
// The cron expression is kept in configuration for a future real cron driver.
type DailyScheduler struct {
	spec string
	stop chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler builds a scheduler configured via cron expression string.
func NewDailyScheduler(spec string) *DailyScheduler {
	return &DailyScheduler{spec: spec}
}

// Start begins ticking.
func (s *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *DailyScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
