package repo

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// AgentRepositoryPG persists enhancement agents and their append-only memory
// trail.
type AgentRepositoryPG struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

// NewAgentRepository creates an agent repository backed by PostgreSQL.
func NewAgentRepository(sql infra.SQLExecutor, logger infra.Logger) *AgentRepositoryPG {
	return &AgentRepositoryPG{sql: sql, logger: logger}
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var (
		a      domain.Agent
		cfgRaw []byte
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.SystemPrompt, &a.Model, &cfgRaw, &a.IsActive, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(cfgRaw) > 0 {
		_ = json.Unmarshal(cfgRaw, &a.Config)
	}
	return &a, nil
}

// GetByID fetches one agent or domain.ErrNotFound.
func (r *AgentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	return scanAgent(r.sql.QueryRow(ctx, sqlinline.QSelectAgentByID, id))
}

// FirstActiveByType returns the oldest active agent for a content type.
func (r *AgentRepositoryPG) FirstActiveByType(ctx context.Context, contentType string) (*domain.Agent, error) {
	return scanAgent(r.sql.QueryRow(ctx, sqlinline.QSelectFirstActiveAgentByType, contentType))
}

// ListActive returns every active agent ordered by type.
func (r *AgentRepositoryPG) ListActive(ctx context.Context) ([]domain.Agent, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListActiveAgents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// Insights summarizes an agent's memory trail. The stored function is
// preferred; without it the summary is derived from the 50 most recent
// memories.
func (r *AgentRepositoryPG) Insights(ctx context.Context, agentID string) (*domain.AgentInsights, error) {
	var ins domain.AgentInsights
	err := r.sql.QueryRow(ctx, sqlinline.QAgentInsights, agentID).Scan(
		&ins.TotalMemories, &ins.LikedCount, &ins.DislikedCount,
		&ins.CommonLikedPatterns, &ins.CommonDislikedPatterns,
	)
	if err == nil {
		return &ins, nil
	}
	r.logger.Debug().Err(err).Str("agent_id", agentID).Msg("get_agent_insights unavailable, summarizing recent memories")

	memories, err := r.ListMemories(ctx, agentID, 50, 0)
	if err != nil {
		return nil, err
	}
	return summarizeMemories(memories), nil
}

func summarizeMemories(memories []domain.AgentMemory) *domain.AgentInsights {
	ins := &domain.AgentInsights{TotalMemories: len(memories)}
	liked := map[string]int{}
	disliked := map[string]int{}
	for _, m := range memories {
		if m.Rating > 0 {
			ins.LikedCount++
		} else if m.Rating < 0 {
			ins.DislikedCount++
		}
		for _, p := range m.Analysis.LikedElements {
			liked[p]++
		}
		for _, p := range m.Analysis.DislikedElements {
			disliked[p]++
		}
	}
	ins.CommonLikedPatterns = topPatterns(liked, 5)
	ins.CommonDislikedPatterns = topPatterns(disliked, 5)
	return ins
}

func topPatterns(counts map[string]int, limit int) []string {
	patterns := make([]string, 0, len(counts))
	for p := range counts {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if counts[patterns[i]] != counts[patterns[j]] {
			return counts[patterns[i]] > counts[patterns[j]]
		}
		return patterns[i] < patterns[j]
	})
	if len(patterns) > limit {
		patterns = patterns[:limit]
	}
	return patterns
}

// AppendMemory records one enhancement outcome.
func (r *AgentRepositoryPG) AppendMemory(ctx context.Context, m domain.AgentMemory) error {
	analysis, err := json.Marshal(m.Analysis)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertAgentMemory,
		m.AgentID, m.ContentID, m.OriginalPrompt, m.EnhancedPrompt, m.Rating, analysis,
	)
	return err
}

// ListMemories returns an agent's memories newest first.
func (r *AgentRepositoryPG) ListMemories(ctx context.Context, agentID string, limit, offset int) ([]domain.AgentMemory, error) {
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectAgentMemories, agentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []domain.AgentMemory
	for rows.Next() {
		var (
			m           domain.AgentMemory
			analysisRaw []byte
		)
		if err := rows.Scan(&m.ID, &m.AgentID, &m.ContentID, &m.OriginalPrompt, &m.EnhancedPrompt, &m.Rating, &analysisRaw, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(analysisRaw) > 0 {
			_ = json.Unmarshal(analysisRaw, &m.Analysis)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

var _ domain.AgentRepository = (*AgentRepositoryPG)(nil)
