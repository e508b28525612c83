package domain

import (
	"fmt"
	"time"
)

// BatchStatus enumerates batch lifecycle states. Transitions are monotonic:
// processing moves to exactly one terminal state and never back.
type BatchStatus string

const (
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// Batch is the bookkeeping record for one generation request, tracking status
// across its produced artifacts. It is owned by a single worker invocation for
// its lifetime and read-only afterward.
type Batch struct {
	ID        string         `json:"id"`
	Prompt    string         `json:"prompt"`
	Model     *string        `json:"model"`
	Type      string         `json:"type"`
	Params    map[string]any `json:"params"`
	Count     int            `json:"count"`
	CreatedBy *int64         `json:"created_by_user_id"`
	AgentID   *string        `json:"agent_id"`
	Status    BatchStatus    `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewBatchID derives a batch identifier from the current time, matching the
// ids produced by the ingestion pipeline.
func NewBatchID(now time.Time) string {
	return fmt.Sprintf("bat-%d", now.UnixMilli())
}
