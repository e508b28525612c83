package domain

import "context"

// ContentRepository is the schema-tolerant persistence surface for content and
// its assets. Writes retry without optional columns when the target schema
// does not carry them.
type ContentRepository interface {
	CreateContent(ctx context.Context, in ContentInput) (*Content, error)
	UpdateContent(ctx context.Context, id int64, in ContentInput) (*Content, error)
	DeleteContent(ctx context.Context, id int64) error
	GetContentByID(ctx context.Context, id int64) (*Content, error)
	ListContent(ctx context.Context, page, limit int) ([]Content, error)
	CountContent(ctx context.Context) (int64, error)
	GetNextContent(ctx context.Context, filter NextContentFilter) (*Content, error)
}

// RatingRepository records votes and keeps derived scores current.
type RatingRepository interface {
	RecordRating(ctx context.Context, r Rating) error
	RecomputeScore(ctx context.Context, contentID int64) error
}

// BatchRepository persists generation bookkeeping records.
type BatchRepository interface {
	Record(ctx context.Context, b *Batch) error
	UpdateStatus(ctx context.Context, batchID string, status BatchStatus, errMsg *string) error
}

// AgentRepository serves agent personas and their learning trail.
type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*Agent, error)
	FirstActiveByType(ctx context.Context, contentType string) (*Agent, error)
	ListActive(ctx context.Context) ([]Agent, error)
	Insights(ctx context.Context, agentID string) (*AgentInsights, error)
	AppendMemory(ctx context.Context, m AgentMemory) error
	ListMemories(ctx context.Context, agentID string, limit, offset int) ([]AgentMemory, error)
}

// UserRepository looks up operator accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

// SessionRepository upserts anonymous rater sessions.
type SessionRepository interface {
	Touch(ctx context.Context, sessionID string, country *string) error
}

// StatsRepository aggregates rating activity.
type StatsRepository interface {
	GetStats(ctx context.Context) (*Stats, error)
	GetSummaryCounts(ctx context.Context, sessionID *string, userID *int64) (*SummaryCounts, error)
}
