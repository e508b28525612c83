package domain

// MaxGenerationCount caps the number of provider invocations in one job.
const MaxGenerationCount = 500

// GenerationRequest is the immutable payload describing one generation job.
// Extra provider parameters travel in Params untouched.
type GenerationRequest struct {
	Prompt          string         `json:"prompt"`
	Type            string         `json:"type"`
	Model           string         `json:"model,omitempty"`
	Count           int            `json:"count"`
	Params          map[string]any `json:"params,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds,omitempty"`
	UserID          *int64         `json:"user_id,omitempty"`
	AgentID         string         `json:"agent_id,omitempty"`
	UseAgent        bool           `json:"use_agent"`
}

// EffectiveCount clamps the requested artifact count into [1, MaxGenerationCount].
func (r GenerationRequest) EffectiveCount() int {
	n := r.Count
	if n < 1 {
		n = 1
	}
	if n > MaxGenerationCount {
		n = MaxGenerationCount
	}
	return n
}

// GenerationResult is returned by the worker and surfaced through job status.
// Failed jobs report only Error; the partial result stays internal.
type GenerationResult struct {
	Outputs        []string `json:"outputs,omitempty"`
	BatchID        string   `json:"batch_id,omitempty"`
	AgentUsed      *string  `json:"agent_used,omitempty"`
	OriginalPrompt string   `json:"original_prompt,omitempty"`
	EnhancedPrompt string   `json:"enhanced_prompt,omitempty"`
	Error          string   `json:"error,omitempty"`
}
