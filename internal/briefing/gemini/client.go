// Package gemini provides a Generator backed by the Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airlens/airlens/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// ProviderName identifies this generator.
	ProviderName = "gemini"
)

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model is the generation model (defaults to DefaultModel).
	Model string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 30s; generation is
	// slower than data lookups).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Gemini API text generation client.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new Gemini client.
func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the generator name.
func (c *Client) Name() string {
	return ProviderName
}

// API request/response types (generateContent shapes).

type generateRequest struct {
	Contents []contentBody `json:"contents"`
}

type contentBody struct {
	Parts []partBody `json:"parts"`
}

type partBody struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content contentBody `json:"content"`
	} `json:"candidates"`
}

// Generate produces narrative text for a prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, string, error) {
	body := generateRequest{
		Contents: []contentBody{{Parts: []partBody{{Text: prompt}}}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d from generate endpoint", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	for _, candidate := range result.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		break // first candidate only
	}

	return text.String(), c.model, nil
}
