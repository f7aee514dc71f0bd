package jobs

import (
	"context"

	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/pkg/logger"
)

// Task is one complete extraction-plus-reconciliation computation.
type Task func(ctx context.Context) (*reconciler.DocumentPayload, error)

// Runner executes tasks asynchronously, one goroutine per run. Each run
// owns its record sets; the runner never shares state between runs.
type Runner struct {
	store  Store
	logger logger.Logger
}

// NewRunner creates a runner backed by the given store.
func NewRunner(store Store) *Runner {
	return &Runner{
		store:  store,
		logger: logger.GetGlobalLogger().WithComponent("jobs"),
	}
}

// Submit registers a pending run and starts the task in the background.
// The returned run is a detached pending snapshot carrying the ID to
// poll with; status updates land in the store, never on the returned
// handle. The task's context is consulted only between documents, never
// mid-parse.
func (r *Runner) Submit(ctx context.Context, task Task) *Run {
	run := NewRun()
	r.store.Save(run)

	go func() {
		r.store.MarkProcessing(run.ID)
		op := logger.NewOperationLogger("reconciliation_run", r.logger.WithField("run_id", run.ID))

		payload, err := task(ctx)
		if err != nil {
			r.store.MarkFailed(run.ID, err.Error())
			op.Error(err, "Run failed")
			return
		}

		r.store.MarkCompleted(run.ID, payload)
		op.Success("Run completed")
	}()

	return run
}
