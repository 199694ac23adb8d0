package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run so a hung upstream cannot pile up runs.
const jobTimeout = 2 * time.Minute

type SessionEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

type CatalogRefresher interface {
	RefreshCached(ctx context.Context) (int, error)
}

// MaintenanceScheduler runs the periodic housekeeping jobs.
type MaintenanceScheduler struct {
	cron *cron.Cron
	jobs map[string]func(ctx context.Context) error
}

func NewMaintenanceScheduler() *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs: make(map[string]func(ctx context.Context) error),
	}
}

// Add schedules fn under a standard five-field cron spec.
func (s *MaintenanceScheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %s already scheduled", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(name, fn) }); err != nil {
		logger.Error("Failed to add cron job", err, map[string]interface{}{
			"job":  name,
			"spec": spec,
		})
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.jobs[name] = fn

	logger.Info("Cron job scheduled", map[string]interface{}{
		"job":  name,
		"spec": spec,
	})
	return nil
}

// RunNow runs a scheduled job once, outside its schedule.
func (s *MaintenanceScheduler) RunNow(name string) error {
	fn, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	return s.run(name, fn)
}

func (s *MaintenanceScheduler) run(name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		logger.Error("Scheduled job failed", err, map[string]interface{}{
			"job": name,
		})
		return err
	}
	logger.Debug("Scheduled job finished", map[string]interface{}{
		"job":        name,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (s *MaintenanceScheduler) Start() {
	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"jobs": len(s.jobs),
	})
}

func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped", nil)
}

// SessionEvictionJob ends sessions idle for longer than maxIdle.
func SessionEvictionJob(sessions SessionEvictor, maxIdle time.Duration) func(ctx context.Context) error {
	return func(context.Context) error {
		evicted := sessions.EvictIdle(maxIdle)
		logger.Debug("Session eviction ran", map[string]interface{}{
			"evicted": evicted,
		})
		return nil
	}
}

// CatalogRefreshJob re-fetches cached products so stock checks stay current.
func CatalogRefreshJob(catalog CatalogRefresher) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		refreshed, err := catalog.RefreshCached(ctx)
		logger.Info("Catalog refresh ran", map[string]interface{}{
			"refreshed": refreshed,
		})
		return err
	}
}
