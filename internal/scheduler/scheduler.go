// Package scheduler periodically refreshes the catalog snapshot in the
// background so that searches rarely pay for an upstream fetch.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// Refresher reloads the catalog regardless of snapshot age.
type Refresher interface {
	ForceRefresh(ctx context.Context) (catalog.Snapshot, error)
}

// Scheduler wraps robfig/cron and owns the refresh job.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Scheduler that refreshes every interval. Each run is bounded by timeout.
func New(refresher Refresher, interval, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		spec:      "@every " + interval.String(),
		timeout:   timeout,
		logger:    logger,
	}
}

// Start registers the job and starts the scheduler. ctx bounds every future run.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("catalog refresh scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("catalog refresh scheduler stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	snap, err := s.refresher.ForceRefresh(ctx)
	if err != nil {
		// The cache keeps serving the previous snapshot.
		s.logger.Warn("scheduled catalog refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("scheduled catalog refresh done", zap.Int("items", len(snap.Items)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
