package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

func waitForTerminal(t *testing.T, q Queue, id string) JobStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := q.Status(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if status.Status == StatusCompleted || status.Status == StatusFailed {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return JobStatus{}
}

func TestMemoryQueueUnknownJob(t *testing.T) {
	q := NewMemoryQueue(func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		return nil, nil
	}, zerolog.Nop())

	status, err := q.Status(context.Background(), "no-such-job")
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != StatusNotFound {
		t.Errorf("status = %q, want %q", status.Status, StatusNotFound)
	}
}

func TestMemoryQueueCompletedJob(t *testing.T) {
	q := NewMemoryQueue(func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		return &domain.GenerationResult{
			Outputs: []string{"https://cdn.test/a.png"},
			BatchID: "bat-1",
		}, nil
	}, zerolog.Nop())

	id, err := q.Enqueue(context.Background(), domain.GenerationRequest{Prompt: "a fox"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty job id")
	}

	status := waitForTerminal(t, q, id)
	if status.Status != StatusCompleted {
		t.Errorf("status = %q", status.Status)
	}
	if status.Result == nil || status.Result.BatchID != "bat-1" {
		t.Errorf("result = %+v", status.Result)
	}
}

func TestMemoryQueueFailedJob(t *testing.T) {
	q := NewMemoryQueue(func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		partial := &domain.GenerationResult{Outputs: []string{"https://cdn.test/partial.png"}}
		return partial, errors.New("provider down")
	}, zerolog.Nop())

	id, err := q.Enqueue(context.Background(), domain.GenerationRequest{Prompt: "a fox"})
	if err != nil {
		t.Fatal(err)
	}

	status := waitForTerminal(t, q, id)
	if status.Status != StatusFailed {
		t.Errorf("status = %q", status.Status)
	}
	if status.Result == nil || status.Result.Error != "provider down" {
		t.Errorf("result = %+v, want error inside result", status.Result)
	}
	if status.Result != nil && len(status.Result.Outputs) != 0 {
		t.Errorf("outputs = %v, want none on failure", status.Result.Outputs)
	}
}

func TestMemoryQueueIDsAreUnique(t *testing.T) {
	q := NewMemoryQueue(func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		return &domain.GenerationResult{}, nil
	}, zerolog.Nop())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := q.Enqueue(context.Background(), domain.GenerationRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate job id %q", id)
		}
		seen[id] = true
	}
}
