package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/agent"
	"server/internal/domain"
	"server/internal/metadata"
)

type fakeEnhancer struct {
	enhancement agent.Enhancement
	calls       int
}

func (f *fakeEnhancer) Enhance(ctx context.Context, prompt, contentType, agentID string) agent.Enhancement {
	f.calls++
	if f.enhancement.EnhancedPrompt == "" {
		return agent.Enhancement{EnhancedPrompt: prompt, Techniques: []string{}}
	}
	return f.enhancement
}

type fakeRunner struct {
	outputs []any
	errs    []error
	calls   int
	models  []string
}

func (f *fakeRunner) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	i := f.calls
	f.calls++
	f.models = append(f.models, model)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.outputs) {
		return f.outputs[i], nil
	}
	return nil, nil
}

type fakeProber struct{}

func (fakeProber) Extract(ctx context.Context, url, contentType string) metadata.AssetMeta {
	return metadata.FallbackFor(contentType)
}

type fakeContentStore struct {
	created []domain.ContentInput
	err     error
}

func (f *fakeContentStore) CreateContent(ctx context.Context, in domain.ContentInput) (*domain.Content, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &domain.Content{ID: int64(len(f.created))}, nil
}

type fakeBatchRepo struct {
	recorded *domain.Batch
	statuses []domain.BatchStatus
	lastErr  *string
}

func (f *fakeBatchRepo) Record(ctx context.Context, b *domain.Batch) error {
	f.recorded = b
	return nil
}

func (f *fakeBatchRepo) UpdateStatus(ctx context.Context, batchID string, status domain.BatchStatus, errMsg *string) error {
	f.statuses = append(f.statuses, status)
	f.lastErr = errMsg
	return nil
}

func newWorker(runner *fakeRunner, content *fakeContentStore, batches *fakeBatchRepo) *Worker {
	return &Worker{
		Enhancer: &fakeEnhancer{},
		Runner:   runner,
		Prober:   fakeProber{},
		Content:  content,
		Batches:  batches,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRunHappyPath(t *testing.T) {
	runner := &fakeRunner{outputs: []any{
		"https://cdn.test/a.png",
		[]any{"https://cdn.test/b.png"},
	}}
	content := &fakeContentStore{}
	batches := &fakeBatchRepo{}
	w := newWorker(runner, content, batches)

	result, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a red fox",
		Type:   domain.ContentTypeImage,
		Model:  "flux-schnell",
		Count:  2,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(content.created) != 2 {
		t.Fatalf("contents = %d, want 2", len(content.created))
	}
	for _, c := range content.created {
		if len(c.Assets) != 1 {
			t.Errorf("assets = %d, want 1", len(c.Assets))
		}
		if c.Type != domain.ContentTypeImage {
			t.Errorf("type = %q", c.Type)
		}
		if c.Title == nil || !strings.HasPrefix(*c.Title, "Flux Schnell - a red fox") {
			t.Errorf("title = %v", c.Title)
		}
		if c.BatchID == nil || *c.BatchID != result.BatchID {
			t.Errorf("batch id = %v, want %q", c.BatchID, result.BatchID)
		}
		if c.Metadata["replicate_model"] != "black-forest-labs/flux-schnell" {
			t.Errorf("metadata = %v", c.Metadata)
		}
	}

	if len(result.Outputs) != 2 {
		t.Errorf("outputs = %v", result.Outputs)
	}
	if !strings.HasPrefix(result.BatchID, "bat-") {
		t.Errorf("batch id = %q", result.BatchID)
	}
	if batches.recorded == nil || batches.recorded.Status != domain.BatchStatusProcessing {
		t.Errorf("batch record = %+v", batches.recorded)
	}
	if len(batches.statuses) != 1 || batches.statuses[0] != domain.BatchStatusCompleted {
		t.Errorf("statuses = %v", batches.statuses)
	}
}

func TestRunCreatesOneContentPerURL(t *testing.T) {
	runner := &fakeRunner{outputs: []any{
		[]any{"https://cdn.test/a.png", "https://cdn.test/b.png"},
	}}
	content := &fakeContentStore{}
	batches := &fakeBatchRepo{}
	w := newWorker(runner, content, batches)

	result, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a red fox",
		Type:   domain.ContentTypeImage,
		Count:  1,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(content.created) != 2 {
		t.Fatalf("contents = %d, want 2 (one per produced URL)", len(content.created))
	}
	for i, c := range content.created {
		if len(c.Assets) != 1 {
			t.Fatalf("content %d assets = %d, want exactly 1", i, len(c.Assets))
		}
		if c.Assets[0].Ord != 0 {
			t.Errorf("content %d asset ord = %d, want 0", i, c.Assets[0].Ord)
		}
	}
	if content.created[0].Assets[0].URL != "https://cdn.test/a.png" ||
		content.created[1].Assets[0].URL != "https://cdn.test/b.png" {
		t.Errorf("asset urls = %q, %q", content.created[0].Assets[0].URL, content.created[1].Assets[0].URL)
	}
	if len(result.Outputs) != 2 {
		t.Errorf("outputs = %v", result.Outputs)
	}
}

func TestRunRecordsEnhancementProvenance(t *testing.T) {
	agentID := "a1"
	runner := &fakeRunner{outputs: []any{"https://cdn.test/a.png"}}
	content := &fakeContentStore{}
	batches := &fakeBatchRepo{}
	w := newWorker(runner, content, batches)
	w.Enhancer = &fakeEnhancer{enhancement: agent.Enhancement{
		EnhancedPrompt: "a majestic red fox at golden hour",
		AgentID:        &agentID,
		AgentName:      "Image Stylist",
		Techniques:     []string{"lighting_details"},
	}}

	_, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt:   "a red fox",
		Type:     domain.ContentTypeImage,
		Count:    1,
		UseAgent: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if batches.recorded == nil || batches.recorded.Prompt != "a majestic red fox at golden hour" {
		t.Errorf("batch prompt = %+v, want the enhanced prompt", batches.recorded)
	}
	c := content.created[0]
	if c.Metadata["agent_used"] != true {
		t.Errorf("agent_used = %v, want true", c.Metadata["agent_used"])
	}
	got, ok := c.GenerationParams["agent_techniques"].([]string)
	if !ok || len(got) != 1 || got[0] != "lighting_details" {
		t.Errorf("agent_techniques = %v", c.GenerationParams["agent_techniques"])
	}
}

func TestRunWithoutAgentStampsEmptyTechniques(t *testing.T) {
	runner := &fakeRunner{outputs: []any{"https://cdn.test/a.png"}}
	content := &fakeContentStore{}
	w := newWorker(runner, content, &fakeBatchRepo{})

	_, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a red fox",
		Type:   domain.ContentTypeImage,
		Count:  1,
	})
	if err != nil {
		t.Fatal(err)
	}

	c := content.created[0]
	if c.Metadata["agent_used"] != false {
		t.Errorf("agent_used = %v, want false", c.Metadata["agent_used"])
	}
	got, ok := c.GenerationParams["agent_techniques"].([]string)
	if !ok || len(got) != 0 {
		t.Errorf("agent_techniques = %v, want empty list", c.GenerationParams["agent_techniques"])
	}
}

func TestRunProviderFailureKeepsEarlierContent(t *testing.T) {
	boom := errors.New("model exploded")
	runner := &fakeRunner{
		outputs: []any{"https://cdn.test/a.png", nil, nil},
		errs:    []error{nil, boom, nil},
	}
	content := &fakeContentStore{}
	batches := &fakeBatchRepo{}
	w := newWorker(runner, content, batches)

	result, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a red fox",
		Type:   domain.ContentTypeImage,
		Count:  3,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	if len(content.created) != 1 {
		t.Errorf("contents = %d, want 1", len(content.created))
	}
	if runner.calls != 2 {
		t.Errorf("runner calls = %d, want 2", runner.calls)
	}
	if len(result.Outputs) != 1 {
		t.Errorf("outputs = %v", result.Outputs)
	}
	if len(batches.statuses) != 1 || batches.statuses[0] != domain.BatchStatusFailed {
		t.Errorf("statuses = %v", batches.statuses)
	}
	if batches.lastErr == nil || !strings.Contains(*batches.lastErr, "model exploded") {
		t.Errorf("batch error = %v", batches.lastErr)
	}
}

func TestRunSkipsInvocationsWithoutUsableURLs(t *testing.T) {
	runner := &fakeRunner{outputs: []any{"[object Object]"}}
	content := &fakeContentStore{}
	batches := &fakeBatchRepo{}
	w := newWorker(runner, content, batches)

	result, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a red fox",
		Type:   domain.ContentTypeImage,
		Count:  1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(content.created) != 0 {
		t.Errorf("contents = %d, want 0", len(content.created))
	}
	if len(result.Outputs) != 0 {
		t.Errorf("outputs = %v", result.Outputs)
	}
	if len(batches.statuses) != 1 || batches.statuses[0] != domain.BatchStatusCompleted {
		t.Errorf("statuses = %v", batches.statuses)
	}
}

func TestRunVideoDurationDerivedFromFrames(t *testing.T) {
	runner := &fakeRunner{outputs: []any{"https://cdn.test/clip.mp4"}}
	content := &fakeContentStore{}
	w := newWorker(runner, content, &fakeBatchRepo{})

	_, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a storm",
		Type:   domain.ContentTypeVideo,
		Count:  1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(content.created) != 1 || len(content.created[0].Assets) != 1 {
		t.Fatalf("created = %+v", content.created)
	}
	d := content.created[0].Assets[0].Duration
	if d == nil || *d != 4.8 {
		t.Errorf("duration = %v, want 4.8 for 121 frames at 25 fps", d)
	}
}

func TestRunTruncatesLongPromptInTitle(t *testing.T) {
	runner := &fakeRunner{outputs: []any{"https://cdn.test/a.png"}}
	content := &fakeContentStore{}
	w := newWorker(runner, content, &fakeBatchRepo{})

	long := strings.Repeat("fox ", 30)
	_, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: long,
		Type:   domain.ContentTypeImage,
		Count:  1,
	})
	if err != nil {
		t.Fatal(err)
	}
	title := *content.created[0].Title
	if !strings.HasSuffix(title, "...") {
		t.Errorf("title %q not truncated", title)
	}
	if got := len([]rune(strings.TrimPrefix(title, "Seedream 4 - "))); got != 53 {
		t.Errorf("truncated prompt length = %d, want 53", got)
	}
}

func TestRunPersistFailureFailsBatch(t *testing.T) {
	runner := &fakeRunner{outputs: []any{"https://cdn.test/a.png"}}
	content := &fakeContentStore{err: errors.New("insert denied")}
	batches := &fakeBatchRepo{}
	w := newWorker(runner, content, batches)

	_, err := w.Run(context.Background(), domain.GenerationRequest{
		Prompt: "a fox",
		Type:   domain.ContentTypeImage,
		Count:  1,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(batches.statuses) != 1 || batches.statuses[0] != domain.BatchStatusFailed {
		t.Errorf("statuses = %v", batches.statuses)
	}
}
