// Package replicate runs model predictions against the Replicate HTTP API.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

type Options struct {
	APIToken     string
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
}

// Client drives a prediction to a terminal state and returns its raw output.
type Client struct {
	apiToken     string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
}

const (
	defaultBaseURL      = "https://api.replicate.com"
	defaultTimeout      = 120 * time.Second
	defaultPollInterval = 2 * time.Second
)

type predictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

type prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  any    `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIToken) == "" {
		return nil, errors.New("replicate api token is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Client{
		apiToken:     strings.TrimSpace(opts.APIToken),
		baseURL:      baseURL,
		client:       client,
		pollInterval: pollInterval,
	}, nil
}

// Run creates a prediction for the model and blocks until it reaches a
// terminal state. Versioned identifiers ("owner/name:hash") go through the
// generic predictions endpoint, unversioned ones through the model-scoped one.
func (c *Client) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	endpoint := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, model)
	body := predictionRequest{Input: input}
	if i := strings.LastIndex(model, ":"); i >= 0 {
		endpoint = c.baseURL + "/v1/predictions"
		body.Version = model[i+1:]
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Prefer", "wait")

	pred, err := c.doPrediction(req)
	if err != nil {
		return nil, err
	}
	return c.wait(ctx, pred)
}

func (c *Client) wait(ctx context.Context, pred *prediction) (any, error) {
	for {
		switch pred.Status {
		case "succeeded":
			return pred.Output, nil
		case "failed", "canceled":
			return nil, fmt.Errorf("prediction %s %s: %v: %w", pred.ID, pred.Status, pred.Error, domain.ErrProviderFailure)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		pollURL := pred.URLs.Get
		if pollURL == "" {
			pollURL = fmt.Sprintf("%s/v1/predictions/%s", c.baseURL, pred.ID)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
		pred, err = c.doPrediction(req)
		if err != nil {
			return nil, err
		}
	}
}

func (c *Client) doPrediction(req *http.Request) (*prediction, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate status %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}
	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("replicate response: %w", err)
	}
	return &pred, nil
}
