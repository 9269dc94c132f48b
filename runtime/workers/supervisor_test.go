package workers

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	runs atomic.Int32
	// panicTimes makes the first n runs panic before finishing cleanly.
	panicTimes int32
}

func (w *countingWorker) Run(ctx context.Context) error {
	n := w.runs.Add(1)
	if n <= w.panicTimes {
		panic("boom")
	}
	return nil
}

func TestSupervisor_RestartsPanickedWorker(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sup := NewSupervisor(log)
	worker := &countingWorker{panicTimes: 2}
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not finish")
	}
	require.Equal(t, int32(3), worker.runs.Load(), "two panics, then one clean run")
}

type blockingWorker struct{ started chan struct{} }

func (w *blockingWorker) Run(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	return nil
}

func TestSupervisor_StopsOnContextCancel(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sup := NewSupervisor(log)
	worker := &blockingWorker{started: make(chan struct{})}
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	<-worker.started
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}
