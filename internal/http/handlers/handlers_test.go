package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/agent"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/llm"
	"server/internal/queue"
	"server/internal/registry"
)

type fakeContentRepo struct {
	next    *domain.Content
	nextErr error
}

func (f *fakeContentRepo) CreateContent(ctx context.Context, in domain.ContentInput) (*domain.Content, error) {
	return &domain.Content{ID: 1, Type: in.Type}, nil
}

func (f *fakeContentRepo) UpdateContent(ctx context.Context, id int64, in domain.ContentInput) (*domain.Content, error) {
	return &domain.Content{ID: id, Type: in.Type}, nil
}

func (f *fakeContentRepo) DeleteContent(ctx context.Context, id int64) error { return nil }

func (f *fakeContentRepo) GetContentByID(ctx context.Context, id int64) (*domain.Content, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeContentRepo) ListContent(ctx context.Context, page, limit int) ([]domain.Content, error) {
	return nil, nil
}

func (f *fakeContentRepo) CountContent(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeContentRepo) GetNextContent(ctx context.Context, filter domain.NextContentFilter) (*domain.Content, error) {
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return f.next, nil
}

type fakeRatingRepo struct {
	recorded []domain.Rating
	err      error
}

func (f *fakeRatingRepo) RecordRating(ctx context.Context, r domain.Rating) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, r)
	return nil
}

func (f *fakeRatingRepo) RecomputeScore(ctx context.Context, contentID int64) error { return nil }

type fakeSessionRepo struct {
	touched []string
}

func (f *fakeSessionRepo) Touch(ctx context.Context, sessionID string, country *string) error {
	f.touched = append(f.touched, sessionID)
	return nil
}

type fakeAgentRepo struct{}

func (fakeAgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	return nil, domain.ErrNotFound
}

func (fakeAgentRepo) FirstActiveByType(ctx context.Context, t string) (*domain.Agent, error) {
	return nil, domain.ErrNotFound
}

func (fakeAgentRepo) ListActive(ctx context.Context) ([]domain.Agent, error) { return nil, nil }

func (fakeAgentRepo) Insights(ctx context.Context, agentID string) (*domain.AgentInsights, error) {
	return &domain.AgentInsights{}, nil
}

func (fakeAgentRepo) AppendMemory(ctx context.Context, m domain.AgentMemory) error { return nil }

func (fakeAgentRepo) ListMemories(ctx context.Context, agentID string, limit, offset int) ([]domain.AgentMemory, error) {
	return nil, nil
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	return "enhanced", nil
}

type fakeQueue struct {
	enqueued []domain.GenerationRequest
	status   queue.JobStatus
}

func (f *fakeQueue) Enqueue(ctx context.Context, req domain.GenerationRequest) (string, error) {
	f.enqueued = append(f.enqueued, req)
	return "job-1", nil
}

func (f *fakeQueue) Status(ctx context.Context, id string) (queue.JobStatus, error) {
	return f.status, nil
}

func newTestApp() (*App, *fakeRatingRepo, *fakeSessionRepo, *fakeQueue) {
	ratings := &fakeRatingRepo{}
	sessions := &fakeSessionRepo{}
	q := &fakeQueue{}
	app := &App{
		Cfg:      &infra.Config{JWTSecret: "secret", RateLimitPerMin: 30},
		Logger:   zerolog.Nop(),
		Content:  &fakeContentRepo{nextErr: domain.ErrNotFound},
		Ratings:  ratings,
		Agents:   fakeAgentRepo{},
		Sessions: sessions,
		Queue:    q,
		AgentSvc: &agent.Service{
			Agents:  fakeAgentRepo{},
			Content: &fakeContentRepo{},
			LLM:     fakeCompleter{},
			Logger:  zerolog.Nop(),
		},
		Catalog: registry.Catalog,
	}
	return app, ratings, sessions, q
}

func TestRateRejectsInvalidDirection(t *testing.T) {
	app, ratings, _, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/rate", strings.NewReader(`{"content_id":5,"rating":0}`))
	req.Header.Set("X-Session-Id", "s1")
	rec := httptest.NewRecorder()
	app.Rate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(ratings.recorded) != 0 {
		t.Errorf("ratings recorded = %d", len(ratings.recorded))
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "invalid_rating" {
		t.Errorf("error code = %q", body["error"])
	}
}

func TestRateRequiresIdentity(t *testing.T) {
	app, _, _, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/rate", strings.NewReader(`{"content_id":5,"rating":1}`))
	rec := httptest.NewRecorder()
	app.Rate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateRecordsVoteAndTouchesSession(t *testing.T) {
	app, ratings, sessions, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/rate", strings.NewReader(`{"content_id":5,"rating":-2}`))
	req.Header.Set("X-Session-Id", "s1")
	rec := httptest.NewRecorder()
	app.Rate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(ratings.recorded) != 1 {
		t.Fatalf("ratings recorded = %d", len(ratings.recorded))
	}
	r := ratings.recorded[0]
	if r.ContentID != 5 || r.Rating != -2 || r.SessionID == nil || *r.SessionID != "s1" {
		t.Errorf("rating = %+v", r)
	}
	if len(sessions.touched) != 1 || sessions.touched[0] != "s1" {
		t.Errorf("sessions touched = %v", sessions.touched)
	}
}

func TestGenerateQueuesJob(t *testing.T) {
	app, _, _, q := newTestApp()

	body := `{"prompt":"a fox","type":"image","model":"flux-schnell","count":2,"use_agent":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(q.enqueued) != 1 {
		t.Fatalf("enqueued = %d", len(q.enqueued))
	}
	job := q.enqueued[0]
	if job.Prompt != "a fox" || job.Model != "flux-schnell" || job.Count != 2 || !job.UseAgent {
		t.Errorf("job = %+v", job)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["job_id"] != "job-1" || resp["status"] != "queued" {
		t.Errorf("response = %v", resp)
	}
}

func TestGenerateAgentDefaultsOn(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"prompt":"a fox"}`, true},
		{`{"prompt":"a fox","use_agent":true}`, true},
		{`{"prompt":"a fox","use_agent":false}`, false},
	}
	for _, tc := range cases {
		app, _, _, q := newTestApp()
		req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		app.Generate(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("body %s: status = %d", tc.body, rec.Code)
		}
		if len(q.enqueued) != 1 || q.enqueued[0].UseAgent != tc.want {
			t.Errorf("body %s: use_agent = %v, want %v", tc.body, q.enqueued[0].UseAgent, tc.want)
		}
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	app, _, _, q := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"type":"image"}`))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(q.enqueued) != 0 {
		t.Errorf("enqueued = %d", len(q.enqueued))
	}
}

func TestNextContentExhaustedFeed(t *testing.T) {
	app, _, _, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/next-content", nil)
	req.Header.Set("X-Session-Id", "s1")
	rec := httptest.NewRecorder()
	app.NextContent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["done"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestModelsCatalog(t *testing.T) {
	app, _, _, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	app.Models(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Models []registry.CatalogEntry `json:"models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Models) != 6 {
		t.Errorf("models = %d, want 6", len(body.Models))
	}
}

func TestEnhancePromptWithoutAgentPassesThrough(t *testing.T) {
	app, _, _, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/agents/enhance", strings.NewReader(`{"prompt":"a fox","type":"image"}`))
	rec := httptest.NewRecorder()
	app.EnhancePrompt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["enhanced_prompt"] != "a fox" {
		t.Errorf("body = %v", body)
	}
}
