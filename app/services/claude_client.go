package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/appestoicismo/newsllater/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultClaudeBaseURL    = "https://api.anthropic.com"
	defaultClaudeModel      = "claude-sonnet-4-20250514"
	defaultClaudeAPIVersion = "2023-06-01"
	defaultClaudeMaxTokens  = 4000
	defaultClaudeTimeout    = 120 * time.Second
)

var (
	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_provider_request_duration_seconds",
			Help:    "Latency of generation provider calls",
			Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120, 180},
		},
		[]string{"outcome"},
	)

	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_provider_requests_total",
			Help: "Generation provider calls by outcome",
		},
		[]string{"outcome"},
	)
)

// GenerationClient produces newsletter text from a fully rendered prompt
type GenerationClient interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// ProviderError means the provider answered with a rejection
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("claude api error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError means the provider could not be reached or the call timed out
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("claude api unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClaudeClient calls the Anthropic Messages API
type ClaudeClient struct {
	BaseURL     string
	Model       string
	APIVersion  string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// NewClaudeClient creates a client from configuration, filling unset values with defaults
func NewClaudeClient(cfg config.ClaudeConfig) *ClaudeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClaudeTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultClaudeBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultClaudeAPIVersion
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}
	return &ClaudeClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Model:       model,
		APIVersion:  version,
		MaxTokens:   maxTokens,
		Temperature: cfg.Temperature,
		HTTPClient:  &http.Client{Timeout: timeout},
		Timeout:     timeout,
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessagesReq struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeMessagesResp struct {
	Content []claudeContentBlock `json:"content"`
}

type claudeErrorResp struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs a single Messages API call. Non-2xx answers become
// *ProviderError and network failures become *TransportError.
func (c *ClaudeClient) Generate(ctx context.Context, apiKey, prompt string) (text string, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		var pe *ProviderError
		var te *TransportError
		switch {
		case errors.As(err, &pe):
			outcome = "provider_error"
		case errors.As(err, &te):
			outcome = "transport_error"
		case err != nil:
			outcome = "error"
		}
		providerRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		providerRequestsTotal.WithLabelValues(outcome).Inc()
	}()

	body, err := json.Marshal(claudeMessagesReq{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode claude request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build claude request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", c.APIVersion)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var apiErr claudeErrorResp
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out claudeMessagesResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	for _, block := range out.Content {
		if block.Type == "text" || block.Type == "" {
			return block.Text, nil
		}
	}
	return "", &ProviderError{StatusCode: resp.StatusCode, Message: "empty response"}
}
