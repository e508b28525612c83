package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// BatchRepositoryPG persists generation bookkeeping records.
type BatchRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewBatchRepository creates a batch repository backed by PostgreSQL.
func NewBatchRepository(sql infra.SQLExecutor) *BatchRepositoryPG {
	return &BatchRepositoryPG{sql: sql}
}

// Record upserts a batch row keyed by its time-derived id.
func (r *BatchRepositoryPG) Record(ctx context.Context, b *domain.Batch) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertBatch,
		b.ID, b.Prompt, b.Model, b.Type, encodeJSONMap(b.Params),
		b.Count, b.CreatedBy, b.AgentID, b.Status,
	)
	return err
}

// UpdateStatus moves a batch to a new status. A non-nil errMsg is folded into
// the params payload together with the failure timestamp.
func (r *BatchRepositoryPG) UpdateStatus(ctx context.Context, batchID string, status domain.BatchStatus, errMsg *string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateBatchStatus, batchID, status, errMsg)
	return err
}

var _ domain.BatchRepository = (*BatchRepositoryPG)(nil)
