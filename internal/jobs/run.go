// Package jobs tracks asynchronous extraction/reconciliation runs. Each
// run is a self-contained computation with its own status handle that a
// caller polls by ID; there is no push notification and no cancellation
// of an in-flight run once started.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"invoice-reconciliation-service/internal/reconciler"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Run is one reconciliation job and its outcome.
type Run struct {
	ID         string                      `json:"id"`
	Status     Status                      `json:"status"`
	Error      string                      `json:"error,omitempty"`
	Payload    *reconciler.DocumentPayload `json:"payload,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	StartedAt  *time.Time                  `json:"started_at,omitempty"`
	FinishedAt *time.Time                  `json:"finished_at,omitempty"`
}

// NewRun creates a pending run with a fresh ID.
func NewRun() *Run {
	return &Run{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Done reports whether the run has reached a terminal state.
func (r *Run) Done() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
