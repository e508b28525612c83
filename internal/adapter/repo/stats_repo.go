package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// StatsRepositoryPG computes rating aggregates for dashboards.
type StatsRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewStatsRepository creates a stats repository backed by PostgreSQL.
func NewStatsRepository(sql infra.SQLExecutor) *StatsRepositoryPG {
	return &StatsRepositoryPG{sql: sql}
}

// GetStats returns corpus-wide totals plus the five best and worst rated
// content records.
func (r *StatsRepositoryPG) GetStats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.sql.QueryRow(ctx, sqlinline.QStatsTotals).
		Scan(&stats.TotalContent, &stats.TotalRatings, &stats.RatedDistinct); err != nil {
		return nil, err
	}
	stats.PendingGlobal = stats.TotalContent - stats.RatedDistinct
	if stats.PendingGlobal < 0 {
		stats.PendingGlobal = 0
	}

	var err error
	if stats.Top, err = r.rankedContent(ctx, sqlinline.QTopContent); err != nil {
		return nil, err
	}
	if stats.Worst, err = r.rankedContent(ctx, sqlinline.QWorstContent); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *StatsRepositoryPG) rankedContent(ctx context.Context, query string) ([]domain.Content, error) {
	rows, err := r.sql.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if _, err := hydrateContent(ctx, r.sql, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// GetSummaryCounts scopes progress counters to one rater, identified by
// session or account.
func (r *StatsRepositoryPG) GetSummaryCounts(ctx context.Context, sessionID *string, userID *int64) (*domain.SummaryCounts, error) {
	var counts domain.SummaryCounts
	if err := r.sql.QueryRow(ctx, sqlinline.QCountContent).Scan(&counts.Total); err != nil {
		return nil, err
	}
	if err := r.sql.QueryRow(ctx, sqlinline.QSummaryRated, sessionID, userID).Scan(&counts.Rated); err != nil {
		return nil, err
	}
	counts.Pending = counts.Total - counts.Rated
	if counts.Pending < 0 {
		counts.Pending = 0
	}
	return &counts, nil
}

var _ domain.StatsRepository = (*StatsRepositoryPG)(nil)
