package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// RatingRepositoryPG records votes and keeps the derived score columns on
// content current.
type RatingRepositoryPG struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

// NewRatingRepository creates a rating repository backed by PostgreSQL.
func NewRatingRepository(sql infra.SQLExecutor, logger infra.Logger) *RatingRepositoryPG {
	return &RatingRepositoryPG{sql: sql, logger: logger}
}

// RecordRating appends a vote and recomputes the content's score.
func (r *RatingRepositoryPG) RecordRating(ctx context.Context, rating domain.Rating) error {
	if !domain.ValidRatingValue(rating.Rating) {
		return domain.ErrInvalidRating
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertRating,
		rating.ContentID, rating.UserID, rating.SessionID, rating.Rating, rating.Comment,
	); err != nil {
		return err
	}
	return r.RecomputeScore(ctx, rating.ContentID)
}

// RecomputeScore refreshes score_mean/score_count for one content row. The
// stored procedure is preferred; without it the aggregate is computed here by
// re-reading every rating, which is O(n) per vote.
func (r *RatingRepositoryPG) RecomputeScore(ctx context.Context, contentID int64) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QCallRecomputeScore, contentID); err == nil {
		return nil
	} else {
		r.logger.Debug().Err(err).Int64("content_id", contentID).Msg("recompute_score unavailable, using client-side aggregate")
	}

	rows, err := r.sql.Query(ctx, sqlinline.QSelectRatingValues, contentID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var sum, count int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		sum += v
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	mean := 0.0
	if count > 0 {
		mean = float64(sum) / float64(count)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QUpdateContentScore, contentID, mean, count)
	return err
}

var _ domain.RatingRepository = (*RatingRepositoryPG)(nil)
