// Package worker runs the background maintenance tasks on asynq.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"

	"github.com/nik132-eng/roastit/internal/domain"
)

// TypeMediaSweep is the task type of the orphan media sweep.
const TypeMediaSweep = "media:sweep"

// Sweeper removes uploads that no post references.
type Sweeper interface {
	SweepOrphans(ctx context.Context) (domain.SweepResult, error)
}

// SweepHandler processes media:sweep tasks.
type SweepHandler struct {
	sweeper Sweeper
	timeout time.Duration
}

func NewSweepHandler(sweeper Sweeper, timeout time.Duration) *SweepHandler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &SweepHandler{sweeper: sweeper, timeout: timeout}
}

func (h *SweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if task.Type() != TypeMediaSweep {
		return fmt.Errorf("unexpected task type: %s", task.Type())
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	result, err := h.sweeper.SweepOrphans(ctx)
	if err != nil {
		return errors.Wrap(err, "SweepHandler.ProcessTask")
	}

	slog.InfoContext(
		ctx, "media sweep finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("kept", result.Kept),
		slog.Int("young", result.Young),
		slog.Int("deleted", len(result.Deleted)),
		slog.String("module", "worker"),
	)
	return nil
}

// Worker owns the asynq server processing tasks and the scheduler
// enqueueing the periodic sweep.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	interval  time.Duration
}

func New(redisOpt asynq.RedisClientOpt, handler *SweepHandler, interval time.Duration) *Worker {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 1,
			Queues:      map[string]int{"maintenance": 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(TypeMediaSweep, handler)

	return &Worker{
		server:    server,
		scheduler: asynq.NewScheduler(redisOpt, nil),
		mux:       mux,
		interval:  interval,
	}
}

// CronSpec is the schedule of the sweep task for the given interval.
func CronSpec(interval time.Duration) string {
	return "@every " + interval.String()
}

// NewSweepTask builds the periodic sweep task. A sweep that outlives the
// interval is not enqueued twice.
func NewSweepTask(interval time.Duration) *asynq.Task {
	return asynq.NewTask(
		TypeMediaSweep,
		nil,
		asynq.Queue("maintenance"),
		asynq.MaxRetry(0),
		asynq.Unique(interval),
	)
}

func (w *Worker) Start() error {
	if _, err := w.scheduler.Register(CronSpec(w.interval), NewSweepTask(w.interval)); err != nil {
		return errors.Wrap(err, "Worker.Start: register sweep failed")
	}
	if err := w.scheduler.Start(); err != nil {
		return errors.Wrap(err, "Worker.Start: scheduler failed")
	}
	if err := w.server.Start(w.mux); err != nil {
		w.scheduler.Shutdown()
		return errors.Wrap(err, "Worker.Start: server failed")
	}
	slog.Info("worker started", slog.String("every", w.interval.String()), slog.String("module", "worker"))
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}
