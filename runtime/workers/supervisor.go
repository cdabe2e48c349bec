package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"collab-notes/contract"
	"collab-notes/errors"
)

// Supervisor runs workers in goroutines, recovers panics, and restarts
// crashed workers after a delay. A failure in one worker must not stop
// the supervisor itself.
type Supervisor struct {
	wg              *sync.WaitGroup
	log             *slog.Logger
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

// Start runs a single worker under supervision. If the worker's Run
// panics, the supervisor recovers and restarts it after the configured
// interval; a clean return is final.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

// Wait blocks until every started worker has finished. Cancel the
// context passed to Start to make that happen.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
