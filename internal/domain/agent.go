package domain

import "time"

// AgentConfig carries per-agent sampling configuration stored as JSONB.
type AgentConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Agent is a configured prompt-rewriting persona specialized per content type.
type Agent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	SystemPrompt string      `json:"system_prompt"`
	Model        string      `json:"model"`
	Config       AgentConfig `json:"config"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
}

// MemoryAnalysis is the structured outcome classification attached to one
// agent memory.
type MemoryAnalysis struct {
	LikedElements    []string `json:"liked_elements"`
	DislikedElements []string `json:"disliked_elements"`
	TechniquesUsed   []string `json:"techniques_used"`
	ImprovementNotes string   `json:"improvement_notes"`
}

// AgentMemory is one persisted enhancement outcome. Memories are append-only;
// the learning loop never mutates or deletes them.
type AgentMemory struct {
	ID             int64          `json:"id"`
	AgentID        string         `json:"agent_id"`
	ContentID      int64          `json:"content_id"`
	OriginalPrompt string         `json:"original_prompt"`
	EnhancedPrompt string         `json:"enhanced_prompt"`
	Rating         int            `json:"rating"`
	Analysis       MemoryAnalysis `json:"analysis"`
	CreatedAt      time.Time      `json:"created_at"`
}

// AgentInsights summarizes an agent's memory trail for prompt-context
// injection.
type AgentInsights struct {
	TotalMemories          int      `json:"total_memories"`
	LikedCount             int      `json:"liked_count"`
	DislikedCount          int      `json:"disliked_count"`
	CommonLikedPatterns    []string `json:"common_liked_patterns"`
	CommonDislikedPatterns []string `json:"common_disliked_patterns"`
}
