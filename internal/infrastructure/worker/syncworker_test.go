package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"agriprice-service/internal/application"

	"github.com/stretchr/testify/require"
)

type countingRunner struct{ runs atomic.Int32 }

func (r *countingRunner) RunScheduled(context.Context) (application.ReconcileResult, error) {
	r.runs.Add(1)
	return application.ReconcileResult{}, nil
}

func TestSyncWorker_RunOnStart(t *testing.T) {
	runner := &countingRunner{}
	w := &SyncWorker{
		Runner:     runner,
		Spec:       "0 30 6 * * *",
		RunOnStart: true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return runner.runs.Load() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}

func TestSyncWorker_BadSpec(t *testing.T) {
	w := &SyncWorker{Runner: &countingRunner{}, Spec: "not a cron spec"}
	require.Error(t, w.Start(context.Background()))
}

func TestSyncWorker_ScheduledTick(t *testing.T) {
	runner := &countingRunner{}
	w := &SyncWorker{
		Runner: runner,
		Spec:   "* * * * * *", // every second
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return runner.runs.Load() >= 1 },
		3*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}
