package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

const defaultJobTimeout = 2 * time.Minute

// Forecaster is the part of outlook.Service the scheduler drives.
type Forecaster interface {
	Forecast(ctx context.Context, req outlook.Request) (outlook.Report, error)
}

// Scheduler runs the configured location's forecast on a cron spec.
type Scheduler struct {
	cron       *cron.Cron
	forecaster Forecaster
	request    outlook.Request
	timeout    time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
}

// New parses spec (five-field cron) in timezone and registers the daily job.
func New(spec, timezone string, forecaster Forecaster, req outlook.Request, logger *slog.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
		loc = parsed
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		forecaster: forecaster,
		request:    req,
		timeout:    defaultJobTimeout,
		logger:     logger.With("component", "scheduler.cron"),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce executes a single scheduled forecast.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	report, err := s.forecaster.Forecast(ctx, s.request)
	if err != nil {
		s.logger.Error("scheduled forecast failed", "error", err)
		return
	}
	s.logger.Info("scheduled forecast complete", "id", report.ID, "location", report.Location.Name, "duration", time.Since(started))
}

// Start begins the cron loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the loop and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Next reports when the job fires next; zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
