package worker

import (
	"context"
	"fmt"
	"time"

	"agriprice-service/internal/application"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SyncRunner is the slice of the reconciler the worker drives.
type SyncRunner interface {
	RunScheduled(ctx context.Context) (application.ReconcileResult, error)
}

// SyncWorker runs the acquisition pipeline on a cron schedule. It is the
// in-process replacement for the external scheduler hitting the trigger
// endpoint.
type SyncWorker struct {
	Runner     SyncRunner
	Spec       string // six-field cron spec, seconds included
	RunOnStart bool
	RunTimeout time.Duration
	Log        *zap.Logger
}

// Start blocks until ctx is canceled.
func (w *SyncWorker) Start(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.RunTimeout <= 0 {
		w.RunTimeout = 2 * time.Minute
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(w.Spec, func() { w.runOnce(ctx, log) }); err != nil {
		return fmt.Errorf("register sync task: %w", err)
	}

	if w.RunOnStart {
		w.runOnce(ctx, log)
	}

	c.Start()
	log.Info("sync_worker.started", zap.String("spec", w.Spec))

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("sync_worker.stopped")
	return nil
}

func (w *SyncWorker) runOnce(ctx context.Context, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, w.RunTimeout)
	defer cancel()

	res, err := w.Runner.RunScheduled(runCtx)
	if err != nil {
		log.Warn("sync_worker.run_failed", zap.Error(err))
		return
	}
	log.Info("sync_worker.run_done",
		zap.Int("created", res.Added()),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
}
