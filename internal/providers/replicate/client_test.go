package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"server/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body any) *http.Response {
	raw, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(raw))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestRunVersionedModelUsesPredictionsEndpoint(t *testing.T) {
	var gotPath, gotVersion string
	client, err := NewClient(Options{
		APIToken: "tok",
		BaseURL:  "https://api.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			var req predictionRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			gotVersion = req.Version
			return jsonResponse(http.StatusCreated, prediction{
				ID:     "p1",
				Status: "succeeded",
				Output: []any{"https://cdn.test/a.mp3"},
			}), nil
		})},
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := client.Run(context.Background(), "meta/musicgen:abc123", map[string]any{"prompt": "jazz"})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v1/predictions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotVersion != "abc123" {
		t.Errorf("version = %q", gotVersion)
	}
	urls := ExtractURLs(out)
	if len(urls) != 1 || urls[0] != "https://cdn.test/a.mp3" {
		t.Errorf("output = %v", urls)
	}
}

func TestRunUnversionedModelUsesModelEndpoint(t *testing.T) {
	var gotPath string
	client, err := NewClient(Options{
		APIToken: "tok",
		BaseURL:  "https://api.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			return jsonResponse(http.StatusCreated, prediction{
				ID:     "p2",
				Status: "succeeded",
				Output: "https://cdn.test/a.png",
			}), nil
		})},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Run(context.Background(), "bytedance/seedream-4", map[string]any{"prompt": "x"}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v1/models/bytedance/seedream-4/predictions" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestRunPollsUntilTerminal(t *testing.T) {
	calls := 0
	client, err := NewClient(Options{
		APIToken:     "tok",
		BaseURL:      "https://api.test",
		PollInterval: time.Millisecond,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return jsonResponse(http.StatusCreated, prediction{ID: "p3", Status: "processing"}), nil
			}
			return jsonResponse(http.StatusOK, prediction{
				ID:     "p3",
				Status: "succeeded",
				Output: "https://cdn.test/done.mp4",
			}), nil
		})},
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := client.Run(context.Background(), "lightricks/ltx-video", map[string]any{"prompt": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if calls < 2 {
		t.Errorf("expected at least one poll, got %d calls", calls)
	}
	if out != "https://cdn.test/done.mp4" {
		t.Errorf("output = %v", out)
	}
}

func TestRunFailedPrediction(t *testing.T) {
	client, err := NewClient(Options{
		APIToken: "tok",
		BaseURL:  "https://api.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusCreated, prediction{
				ID:     "p4",
				Status: "failed",
				Error:  "NSFW content detected",
			}), nil
		})},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Run(context.Background(), "flux-schnell", map[string]any{"prompt": "x"})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want provider failure", err)
	}
	if !strings.Contains(err.Error(), "NSFW content detected") {
		t.Errorf("error %q does not carry the provider message", err)
	}
}
