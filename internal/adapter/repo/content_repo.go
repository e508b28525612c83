package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// ContentRepositoryPG implements domain.ContentRepository with a
// schema-tolerant write path: the full insert/update is attempted first and
// retried with only the guaranteed base columns when the deployed schema
// rejects an optional one.
type ContentRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewContentRepository creates a content repository backed by PostgreSQL.
func NewContentRepository(sql infra.SQLExecutor) *ContentRepositoryPG {
	return &ContentRepositoryPG{sql: sql}
}

// CreateContent inserts a content row and its assets, then returns the
// hydrated record.
func (r *ContentRepositoryPG) CreateContent(ctx context.Context, in domain.ContentInput) (*domain.Content, error) {
	meta := encodeJSONMap(in.Metadata)
	params := encodeJSONMap(in.GenerationParams)

	var id int64
	err := r.sql.QueryRow(ctx, sqlinline.QInsertContentFull,
		in.Type, in.Title, in.Description, in.TextBody, meta,
		in.Prompt, in.OriginalPrompt, in.EnhancedPrompt,
		in.Model, in.BatchID, in.AgentID, params,
	).Scan(&id)
	if err != nil {
		if !IsMissingColumn(err) {
			return nil, err
		}
		// Trade provenance columns for write success on older schemas.
		if err := r.sql.QueryRow(ctx, sqlinline.QInsertContentBase,
			in.Type, in.Title, in.Description, in.TextBody, meta,
		).Scan(&id); err != nil {
			return nil, err
		}
	}

	if err := r.replaceAssets(ctx, id, in.Assets, false); err != nil {
		return nil, err
	}
	return r.GetContentByID(ctx, id)
}

// UpdateContent rewrites a content row and replaces its assets wholesale when
// the input carries any.
func (r *ContentRepositoryPG) UpdateContent(ctx context.Context, id int64, in domain.ContentInput) (*domain.Content, error) {
	meta := encodeJSONMap(in.Metadata)
	params := encodeJSONMap(in.GenerationParams)

	var updatedID int64
	err := r.sql.QueryRow(ctx, sqlinline.QUpdateContentFull,
		id, in.Type, in.Title, in.Description, in.TextBody, meta,
		in.Prompt, in.OriginalPrompt, in.EnhancedPrompt,
		in.Model, in.BatchID, in.AgentID, params,
	).Scan(&updatedID)
	if err != nil {
		if !IsMissingColumn(err) {
			return nil, err
		}
		if err := r.sql.QueryRow(ctx, sqlinline.QUpdateContentBase,
			id, in.Type, in.Title, in.Description, in.TextBody, meta,
		).Scan(&updatedID); err != nil {
			return nil, err
		}
	}

	if in.Assets != nil {
		if err := r.replaceAssets(ctx, id, in.Assets, true); err != nil {
			return nil, err
		}
	}
	return r.GetContentByID(ctx, id)
}

// DeleteContent removes a content row. Asset rows follow via the store's
// foreign key cascade.
func (r *ContentRepositoryPG) DeleteContent(ctx context.Context, id int64) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteContent, id)
	return err
}

// GetContentByID fetches one content record with its ordered assets.
func (r *ContentRepositoryPG) GetContentByID(ctx context.Context, id int64) (*domain.Content, error) {
	c, err := scanContent(r.sql.QueryRow(ctx, sqlinline.QSelectContentByID, id))
	if err != nil {
		return nil, err
	}
	return hydrateContent(ctx, r.sql, c)
}

// ListContent returns a page of content ordered newest first.
func (r *ContentRepositoryPG) ListContent(ctx context.Context, page, limit int) ([]domain.Content, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListContent, limit, (page-1)*limit)
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

// CountContent returns the exact number of content rows.
func (r *ContentRepositoryPG) CountContent(ctx context.Context) (int64, error) {
	var count int64
	if err := r.sql.QueryRow(ctx, sqlinline.QCountContent).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetNextContent returns the next content the rater has not voted on yet, or
// ErrNotFound when the feed is exhausted.
func (r *ContentRepositoryPG) GetNextContent(ctx context.Context, filter domain.NextContentFilter) (*domain.Content, error) {
	types := filter.Types
	if len(types) == 0 {
		types = []string{
			domain.ContentTypeImage,
			domain.ContentTypeVideo,
			domain.ContentTypeAudio,
			domain.ContentTypeText,
			domain.ContentTypeCombo,
		}
	}
	query := sqlinline.QSelectNextContentDesc
	if filter.Ascending {
		query = sqlinline.QSelectNextContent
	}
	c, err := scanContent(r.sql.QueryRow(ctx, query, types, filter.SessionID, filter.UserID))
	if err != nil {
		return nil, err
	}
	return hydrateContent(ctx, r.sql, c)
}

func (r *ContentRepositoryPG) replaceAssets(ctx context.Context, contentID int64, assets []domain.AssetInput, clear bool) error {
	if clear {
		if _, err := r.sql.Exec(ctx, sqlinline.QDeleteAssetsByContent, contentID); err != nil {
			return err
		}
	}
	for _, a := range assets {
		if _, err := r.sql.Exec(ctx, sqlinline.QInsertAsset,
			contentID, a.URL, a.MIME, a.Width, a.Height, a.Duration, a.SizeBytes, a.PosterURL, a.Ord,
		); err != nil {
			return err
		}
	}
	return nil
}

var _ domain.ContentRepository = (*ContentRepositoryPG)(nil)
