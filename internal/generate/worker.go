// Package generate runs generation requests end to end: prompt enhancement,
// provider invocation, metadata probing and persistence.
package generate

import (
	"context"
	"fmt"
	"math"
	"time"

	"server/internal/agent"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/metadata"
	"server/internal/providers/replicate"
	"server/internal/registry"
)

// PromptEnhancer rewrites prompts through an agent.
type PromptEnhancer interface {
	Enhance(ctx context.Context, prompt, contentType, agentID string) agent.Enhancement
}

// ModelRunner executes one model invocation and returns its raw output.
type ModelRunner interface {
	Run(ctx context.Context, model string, input map[string]any) (any, error)
}

// MetadataProber derives technical attributes for one asset URL.
type MetadataProber interface {
	Extract(ctx context.Context, url, contentType string) metadata.AssetMeta
}

// ContentStore is the slice of the content repository the worker writes to.
type ContentStore interface {
	CreateContent(ctx context.Context, in domain.ContentInput) (*domain.Content, error)
}

// Worker executes generation requests. Invocations run sequentially; a
// provider failure stops the batch but keeps everything persisted so far.
type Worker struct {
	Enhancer PromptEnhancer
	Runner   ModelRunner
	Prober   MetadataProber
	Content  ContentStore
	Batches  domain.BatchRepository
	Logger   infra.Logger

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

const titlePromptLimit = 50

const videoFPS = 25.0

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Run executes one generation request and returns the produced asset URLs.
func (w *Worker) Run(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	now := w.now()
	batchID := domain.NewBatchID(now)
	spec := registry.Resolve(req.Model, req.Type)

	finalPrompt := req.Prompt
	var enh agent.Enhancement
	if req.UseAgent {
		enh = w.Enhancer.Enhance(ctx, req.Prompt, spec.Type, req.AgentID)
		finalPrompt = enh.EnhancedPrompt
		if enh.Err != nil {
			w.Logger.Warn().Err(enh.Err).Str("batch_id", batchID).Msg("enhancement degraded, using original prompt")
		}
	}

	input := spec.BuildInput(finalPrompt, req.Params)
	genParams := registry.BuildGenerationParams(spec, input, now)
	techniques := enh.Techniques
	if techniques == nil {
		techniques = []string{}
	}
	genParams["agent_techniques"] = techniques

	count := req.EffectiveCount()
	result := &domain.GenerationResult{
		BatchID:        batchID,
		AgentUsed:      enh.AgentID,
		OriginalPrompt: req.Prompt,
		EnhancedPrompt: finalPrompt,
	}

	batch := &domain.Batch{
		ID:        batchID,
		Prompt:    finalPrompt,
		Model:     &spec.Model,
		Type:      spec.Type,
		Params:    genParams,
		Count:     count,
		CreatedBy: req.UserID,
		AgentID:   enh.AgentID,
		Status:    domain.BatchStatusProcessing,
	}
	if err := w.Batches.Record(ctx, batch); err != nil {
		w.Logger.Warn().Err(err).Str("batch_id", batchID).Msg("batch record failed")
	}

	description := registry.Describe(spec, finalPrompt, input)
	title := spec.Name + " - " + truncatePrompt(finalPrompt)

	contentMeta := map[string]any{
		"model_config":    input,
		"replicate_model": spec.Model,
		"content_type":    spec.Type,
		"generated_at":    now.UTC().Format(time.RFC3339),
		"batchId":         batchID,
		"agent_used":      enh.AgentID != nil,
	}

	for i := 0; i < count; i++ {
		output, err := w.Runner.Run(ctx, spec.Model, input)
		if err != nil {
			w.failBatch(ctx, batchID, err)
			return result, fmt.Errorf("generation %d/%d: %w", i+1, count, err)
		}

		urls := replicate.ExtractURLs(output)
		if len(urls) == 0 {
			w.Logger.Warn().Str("batch_id", batchID).Int("invocation", i+1).Msg("no usable output urls")
			continue
		}

		// One content row per produced artifact, each carrying a single asset.
		for _, url := range urls {
			meta := w.Prober.Extract(ctx, url, spec.Type)
			w.applyDurationOverride(&meta, spec.Type, input, req.DurationSeconds)

			created, err := w.Content.CreateContent(ctx, domain.ContentInput{
				Type:             spec.Type,
				Title:            &title,
				Description:      &description,
				Prompt:           &finalPrompt,
				OriginalPrompt:   &req.Prompt,
				EnhancedPrompt:   &finalPrompt,
				Model:            &spec.Model,
				BatchID:          &batchID,
				AgentID:          enh.AgentID,
				GenerationParams: genParams,
				Metadata:         contentMeta,
				Assets: []domain.AssetInput{{
					URL:       url,
					MIME:      &meta.MIME,
					Width:     meta.Width,
					Height:    meta.Height,
					Duration:  meta.Duration,
					SizeBytes: meta.SizeBytes,
					Ord:       0,
				}},
			})
			if err != nil {
				w.failBatch(ctx, batchID, err)
				return result, fmt.Errorf("persist generation %d/%d: %w", i+1, count, err)
			}

			result.Outputs = append(result.Outputs, url)
			w.Logger.Info().Str("batch_id", batchID).Int64("content_id", created.ID).Str("url", url).Msg("content created")
		}
	}

	if err := w.Batches.UpdateStatus(ctx, batchID, domain.BatchStatusCompleted, nil); err != nil {
		w.Logger.Warn().Err(err).Str("batch_id", batchID).Msg("batch completion update failed")
	}
	return result, nil
}

func (w *Worker) failBatch(ctx context.Context, batchID string, cause error) {
	msg := cause.Error()
	if err := w.Batches.UpdateStatus(ctx, batchID, domain.BatchStatusFailed, &msg); err != nil {
		w.Logger.Warn().Err(err).Str("batch_id", batchID).Msg("batch failure update failed")
	}
}

// applyDurationOverride replaces probed durations with ones derived from the
// generation input, which is the only authoritative source for synthesized
// media.
func (w *Worker) applyDurationOverride(meta *metadata.AssetMeta, contentType string, input map[string]any, requested *float64) {
	switch contentType {
	case domain.ContentTypeVideo:
		if frames, ok := numberParam(input, "num_frames"); ok && frames > 0 {
			d := math.Round(frames/videoFPS*10) / 10
			meta.Duration = &d
		}
	case domain.ContentTypeAudio:
		if d, ok := numberParam(input, "duration"); ok && d > 0 {
			meta.Duration = &d
		} else if requested != nil && *requested > 0 {
			meta.Duration = requested
		}
	}
}

func numberParam(input map[string]any, key string) (float64, bool) {
	switch v := input[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}

// DisabledRunner stands in when no provider token is configured. Jobs fail
// with a clear message instead of the server refusing to boot.
type DisabledRunner struct{}

func (DisabledRunner) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	return nil, fmt.Errorf("generation provider is not configured: %w", domain.ErrProviderFailure)
}

var _ ModelRunner = DisabledRunner{}

func truncatePrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= titlePromptLimit {
		return prompt
	}
	return string(runes[:titlePromptLimit]) + "..."
}
