// Package workers contains the supervised goroutines that drive a
// profile: the periodic pump and the supervisor that keeps it alive.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"toxbridge/contract"
	"toxbridge/errors"
)

const restartDelay = 200 * time.Millisecond

// Supervisor runs workers in their own goroutines, recovers their panics
// and restarts them until the context is canceled. A crashing pump must
// not take the process down with it.
type Supervisor struct {
	Cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *slog.Logger
	workers []contract.Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every registered worker and blocks until all of them have
// finished. Cancellation of ctx stops the children; calling s.Cancel()
// stops only them without touching the parent.
func (s *Supervisor) Run(ctx context.Context) {
	supervised, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer cancel()

	for _, worker := range s.workers {
		s.Start(supervised, worker)
	}
	s.wg.Wait()
}

// Start supervises one worker. A nil return from Run means the worker
// finished on purpose and is never restarted; an error or a recovered
// panic schedules a restart after a short delay.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for ctx.Err() == nil {
			err := runRecovered(ctx, worker)
			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished: %s", name))
				return
			}
			if ctx.Err() != nil {
				break
			}
			s.log.Warn("Worker crashed, restarting", "name", name, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(restartDelay):
			}
		}
		s.log.Info("Worker stopped (context canceled)", "name", name)
	}()
}

func runRecovered(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels the supervised workers without waiting for them.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
