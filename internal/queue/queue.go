// Package queue decouples generation requests from their execution. Two
// implementations share one contract: an in-process queue for single-node
// deployments and a Redis-backed one that survives restarts and feeds
// dedicated worker processes.
package queue

import (
	"context"

	"server/internal/domain"
)

// Status enumerates job lifecycle states as reported to clients.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusNotFound  Status = "notfound"
)

// JobStatus is the externally visible state of one job. Unknown ids report
// StatusNotFound rather than an error: expired history and never-existed are
// indistinguishable. Failed jobs carry the failure inside Result.Error.
type JobStatus struct {
	ID     string                   `json:"id"`
	Status Status                   `json:"status"`
	Result *domain.GenerationResult `json:"result,omitempty"`
}

// RunFunc executes one generation request to completion.
type RunFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)

// Queue accepts generation jobs and answers status polls.
type Queue interface {
	Enqueue(ctx context.Context, req domain.GenerationRequest) (string, error)
	Status(ctx context.Context, id string) (JobStatus, error)
}
