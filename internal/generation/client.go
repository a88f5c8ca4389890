// Package generation calls the OpenRouter chat completion endpoint.
package generation

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

	"github.com/contractui/api/internal/contract"
	"github.com/contractui/api/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/contractui/api/internal/generation")

const (
	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 180 * time.Second
	// DefaultMaxTokens is the completion budget when a request sets none
	DefaultMaxTokens = 1600

	maxBodyBytes = 1 << 20
)

// ErrMissingCredential is returned before any network call when no API key is configured
var ErrMissingCredential = errors.New("OPENROUTER_API_KEY manquant: configurez la clé API")

// UpstreamError reports a failed or unusable response from the endpoint.
// StatusCode is 0 when no response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("OpenRouter injoignable: %v", e.Err)
	case e.Body != "" && e.Err != nil:
		return fmt.Sprintf("OpenRouter %d: %v: %s", e.StatusCode, e.Err, e.Body)
	case e.Body != "":
		return fmt.Sprintf("OpenRouter %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("OpenRouter %d: %v", e.StatusCode, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options configures a Client
type Options struct {
	URL     string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
	// HTTPClient replaces the default client; its Timeout is left untouched
	HTTPClient *http.Client
}

// Client issues one synchronous completion request per Generate call.
// It never retries.
type Client struct {
	url     string
	apiKey  string
	referer string
	title   string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client from opts
func New(opts Options, logger *zap.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		url:     opts.URL,
		apiKey:  strings.TrimSpace(opts.APIKey),
		referer: opts.Referer,
		title:   opts.Title,
		http:    httpClient,
		logger:  logger,
	}
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	Stream      bool         `json:"stream"`
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

// Generate sends req and returns the trimmed text of the first choice.
// Failures are ErrMissingCredential or *UpstreamError.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "generation.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("generation.model", req.ModelID),
		attribute.Int("generation.prompt_len", len(req.Prompt)),
	)

	if c.apiKey == "" {
		span.SetStatus(codes.Error, "missing credential")
		return "", ErrMissingCredential
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("generation.output_len", len(text)))
	return text, nil
}

func (c *Client) complete(ctx context.Context, req models.GenerationRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	payload, err := json.Marshal(apiRequest{
		Model: req.ModelID,
		Messages: []apiMessage{
			{Role: "system", Content: contract.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: models.ClampTemperature(req.Temperature),
		MaxTokens:   maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("completion request failed", zap.String("model", req.ModelID), zap.Error(err))
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("completion endpoint returned error",
			zap.String("model", req.ModelID),
			zap.Int("status", resp.StatusCode),
		)
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: diagnostic(body)}
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: diagnostic(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Error) > 0 && string(parsed.Error) != "null" {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: diagnostic(parsed.Error)}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: diagnostic(body), Err: errors.New("empty choices in response")}
	}

	content := parsed.Choices[0].Message.Content
	if content == nil || strings.TrimSpace(*content) == "" {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Err: errors.New("empty completion")}
	}
	return strings.TrimSpace(*content), nil
}

// diagnostic compacts a JSON payload, or returns trimmed text when the
// payload is not JSON.
func diagnostic(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err == nil {
		return buf.String()
	}
	return strings.TrimSpace(string(body))
}
