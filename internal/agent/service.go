// Package agent implements prompt enhancement with per-agent learning from
// rating feedback.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/llm"
)

const (
	defaultModel       = "gpt-4o"
	defaultTemperature = 0.7
	defaultMaxTokens   = 300

	analysisSystemPrompt = "You are an expert at analyzing prompt engineering effectiveness."
)

// ContentStore is the slice of the content repository the feedback loop needs.
type ContentStore interface {
	GetContentByID(ctx context.Context, id int64) (*domain.Content, error)
}

// Enhancement is the outcome of one enhancement attempt. Enhance never fails
// outright: a degraded attempt carries the original prompt and the cause in
// Err.
type Enhancement struct {
	EnhancedPrompt string   `json:"enhanced_prompt"`
	AgentID        *string  `json:"agent_id"`
	AgentName      string   `json:"agent_name,omitempty"`
	Techniques     []string `json:"techniques"`
	Err            error    `json:"-"`
}

// Service wires agents, their memories and the LLM into the enhancement and
// feedback flows.
type Service struct {
	Agents       domain.AgentRepository
	Content      ContentStore
	LLM          llm.Completer
	Logger       infra.Logger
	DefaultModel string
}

func (s *Service) model(agentModel string) string {
	if agentModel != "" {
		return agentModel
	}
	if s.DefaultModel != "" {
		return s.DefaultModel
	}
	return defaultModel
}

// Enhance rewrites a prompt through the selected agent. With no agent
// available, or on any downstream failure, the original prompt passes through
// unchanged.
func (s *Service) Enhance(ctx context.Context, prompt, contentType, agentID string) Enhancement {
	passthrough := Enhancement{EnhancedPrompt: prompt, Techniques: []string{}}

	ag, err := s.pickAgent(ctx, contentType, agentID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			passthrough.Err = err
			s.Logger.Warn().Err(err).Str("agent_id", agentID).Msg("agent lookup failed, passing prompt through")
		}
		return passthrough
	}

	messages := []llm.Message{{Role: "system", Content: ag.SystemPrompt}}
	if learning := s.learningContext(ctx, ag.ID); learning != "" {
		messages = append(messages, llm.Message{Role: "system", Content: learning})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	temperature := ag.Config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := ag.Config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	enhanced, err := s.LLM.Complete(ctx, llm.CompletionRequest{
		Model:       s.model(ag.Model),
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		passthrough.Err = err
		passthrough.AgentID = &ag.ID
		passthrough.AgentName = ag.Name
		s.Logger.Warn().Err(err).Str("agent", ag.Name).Msg("enhancement failed, passing prompt through")
		return passthrough
	}

	return Enhancement{
		EnhancedPrompt: enhanced,
		AgentID:        &ag.ID,
		AgentName:      ag.Name,
		Techniques:     ExtractTechniques(prompt, enhanced),
	}
}

func (s *Service) pickAgent(ctx context.Context, contentType, agentID string) (*domain.Agent, error) {
	if agentID != "" {
		return s.Agents.GetByID(ctx, agentID)
	}
	return s.Agents.FirstActiveByType(ctx, contentType)
}

func (s *Service) learningContext(ctx context.Context, agentID string) string {
	ins, err := s.Agents.Insights(ctx, agentID)
	if err != nil {
		s.Logger.Debug().Err(err).Str("agent_id", agentID).Msg("insights unavailable")
		return ""
	}
	return buildLearningContext(ins)
}

// AnalyzeRatingFeedback turns one rating into an agent memory. Errors are
// logged, never returned: a broken learning loop must not affect rating.
func (s *Service) AnalyzeRatingFeedback(ctx context.Context, contentID int64, rating int) {
	content, err := s.Content.GetContentByID(ctx, contentID)
	if err != nil {
		s.Logger.Warn().Err(err).Int64("content_id", contentID).Msg("feedback: content load failed")
		return
	}
	if content.AgentID == nil || *content.AgentID == "" {
		return
	}
	ag, err := s.Agents.GetByID(ctx, *content.AgentID)
	if err != nil {
		s.Logger.Warn().Err(err).Str("agent_id", *content.AgentID).Msg("feedback: agent load failed")
		return
	}

	original := deref(content.OriginalPrompt)
	enhanced := deref(content.EnhancedPrompt)
	if enhanced == "" {
		enhanced = deref(content.Prompt)
	}

	analysis := s.classifyOutcome(ctx, ag, original, enhanced, rating)
	memory := domain.AgentMemory{
		AgentID:        ag.ID,
		ContentID:      contentID,
		OriginalPrompt: original,
		EnhancedPrompt: enhanced,
		Rating:         rating,
		Analysis:       analysis,
	}
	if err := s.Agents.AppendMemory(ctx, memory); err != nil {
		s.Logger.Warn().Err(err).Str("agent", ag.Name).Msg("feedback: memory append failed")
		return
	}
	s.Logger.Info().Str("agent", ag.Name).Int64("content_id", contentID).Int("rating", rating).Msg("feedback recorded")
}

func (s *Service) classifyOutcome(ctx context.Context, ag *domain.Agent, original, enhanced string, rating int) domain.MemoryAnalysis {
	prompt := fmt.Sprintf(
		"A prompt enhancement received a rating of %d (positive means liked, negative means disliked).\n\n"+
			"Original prompt: %s\n\nEnhanced prompt: %s\n\n"+
			"Respond with a JSON object with keys: liked_elements (array of strings), "+
			"disliked_elements (array of strings), techniques_used (array of strings), "+
			"improvement_notes (string).",
		rating, original, enhanced,
	)
	reply, err := s.LLM.Complete(ctx, llm.CompletionRequest{
		Model: s.model(ag.Model),
		Messages: []llm.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:  0.3,
		MaxTokens:    500,
		JSONResponse: true,
	})
	if err == nil {
		var analysis domain.MemoryAnalysis
		if jsonErr := json.Unmarshal([]byte(reply), &analysis); jsonErr == nil {
			return analysis
		}
		err = errors.New("analysis reply was not valid JSON")
	}
	s.Logger.Debug().Err(err).Msg("feedback: falling back to heuristic analysis")

	analysis := domain.MemoryAnalysis{
		LikedElements:    []string{},
		DislikedElements: []string{},
		TechniquesUsed:   ExtractTechniques(original, enhanced),
		ImprovementNotes: "Automatic analysis failed",
	}
	if rating > 0 {
		analysis.LikedElements = []string{"effective enhancement"}
	} else if rating < 0 {
		analysis.DislikedElements = []string{"ineffective enhancement"}
	}
	return analysis
}

// GenerateVariants asks the type's agent for several alternative phrasings of
// a prompt.
func (s *Service) GenerateVariants(ctx context.Context, prompt, contentType, agentID string, count int) ([]string, error) {
	if count < 1 {
		count = 3
	}
	if count > 5 {
		count = 5
	}
	ag, err := s.pickAgent(ctx, contentType, agentID)
	if err != nil {
		return nil, err
	}

	request := fmt.Sprintf(
		"Produce %d distinct variants of the following prompt. "+
			"Respond with a JSON object: {\"variants\": [\"...\"]}.\n\nPrompt: %s",
		count, prompt,
	)
	reply, err := s.LLM.Complete(ctx, llm.CompletionRequest{
		Model: s.model(ag.Model),
		Messages: []llm.Message{
			{Role: "system", Content: ag.SystemPrompt},
			{Role: "user", Content: request},
		},
		Temperature:  0.9,
		MaxTokens:    600,
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Variants []string `json:"variants"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("variants reply was not valid JSON: %w", err)
	}
	var variants []string
	for _, v := range parsed.Variants {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			variants = append(variants, trimmed)
		}
	}
	if len(variants) == 0 {
		return nil, errors.New("no variants produced")
	}
	if len(variants) > count {
		variants = variants[:count]
	}
	return variants, nil
}

// ActiveAgents lists the agents available for enhancement.
func (s *Service) ActiveAgents(ctx context.Context) ([]domain.Agent, error) {
	return s.Agents.ListActive(ctx)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
