package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// Optional content columns that older deployments may not carry. The write
// path drops all of them together when the error points at any one.
var optionalContentColumns = []string{
	"prompt",
	"model",
	"batch_id",
	"generation_params",
	"original_prompt",
	"enhanced_prompt",
	"agent_id",
}

// IsMissingColumn classifies a persistence error as a schema mismatch on one
// of the optional content columns. It matches the Postgres undefined_column
// code and, for non-pg errors, falls back to message inspection.
func IsMissingColumn(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42703" {
		return true
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "column") {
		return false
	}
	for _, col := range optionalContentColumns {
		if strings.Contains(msg, col) {
			return true
		}
	}
	return false
}

func scanContent(row pgx.Row) (*domain.Content, error) {
	var (
		c          domain.Content
		metaRaw    []byte
		paramsRaw  []byte
		scoreCount int
	)
	if err := row.Scan(
		&c.ID,
		&c.Type,
		&c.Title,
		&c.Description,
		&c.TextBody,
		&metaRaw,
		&c.Prompt,
		&c.OriginalPrompt,
		&c.EnhancedPrompt,
		&c.Model,
		&c.BatchID,
		&c.AgentID,
		&paramsRaw,
		&c.ScoreMean,
		&scoreCount,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.ScoreCount = scoreCount
	c.Metadata = decodeJSONMap(metaRaw)
	c.GenerationParams = decodeJSONMap(paramsRaw)
	return &c, nil
}

func loadAssets(ctx context.Context, sql infra.SQLExecutor, contentID int64) ([]domain.Asset, error) {
	rows, err := sql.Query(ctx, sqlinline.QSelectAssetsByContent, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.ContentID, &a.URL, &a.MIME, &a.Width, &a.Height, &a.Duration, &a.SizeBytes, &a.PosterURL, &a.Ord); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func hydrateContent(ctx context.Context, sql infra.SQLExecutor, c *domain.Content) (*domain.Content, error) {
	assets, err := loadAssets(ctx, sql, c.ID)
	if err != nil {
		return nil, err
	}
	c.Assets = assets
	if len(assets) > 0 {
		c.URL = assets[0].URL
	}
	return c, nil
}

func decodeJSONMap(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func encodeJSONMap(m map[string]any) []byte {
	if m == nil {
		m = map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
