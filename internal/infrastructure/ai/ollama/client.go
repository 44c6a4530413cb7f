// Package ollama provides the Ollama generator for local inference
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// ProviderName identifies this generator in logs and metrics
const ProviderName = "ollama"

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 512

// Client implements the Generator interface using the Ollama chat API
type Client struct {
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.Generator = (*Client)(nil)

// NewClient creates a new Ollama client. The gateway owns call deadlines,
// so the HTTP client carries no timeout of its own.
func NewClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger.Info("Ollama client initialized",
		zap.String("base_url", cfg.OllamaHost),
		zap.String("model", cfg.OllamaModel))

	return &Client{
		baseURL:     strings.TrimRight(cfg.OllamaHost, "/"),
		model:       cfg.OllamaModel,
		temperature: cfg.Temperature,
		client:      httpClient,
		logger:      logger.Named("ollama-client"),
	}
}

// Ollama API structures
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   any                    `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ChatResponse struct {
	Model         string      `json:"model"`
	Message       ChatMessage `json:"message"`
	Done          bool        `json:"done"`
	DoneReason    string      `json:"done_reason,omitempty"`
	TotalDuration int64       `json:"total_duration,omitempty"`
	EvalCount     int         `json:"eval_count,omitempty"`
	EvalDuration  int64       `json:"eval_duration,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// Generate performs one non-streaming chat completion. JSON payloads pass
// their schema as the structured output format.
func (c *Client) Generate(ctx context.Context, payload generation.Payload) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: payload.System},
			{Role: "user", Content: payload.User},
		},
		Stream: false,
		Options: map[string]interface{}{
			"temperature": c.temperature,
		},
	}
	if payload.Format == generation.FormatJSON {
		if payload.Schema != nil {
			reqBody.Format = payload.Schema.JSONSchema()
		} else {
			reqBody.Format = "json"
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &generation.ServiceError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &generation.ServiceError{Provider: ProviderName, StatusCode: resp.StatusCode, Message: "malformed response envelope", Cause: err}
	}

	if !chatResp.Done {
		return "", &generation.ServiceError{Provider: ProviderName, StatusCode: resp.StatusCode, Message: "incomplete response"}
	}

	c.logger.Debug("Ollama chat completion successful",
		zap.String("model", chatResp.Model),
		zap.String("done_reason", chatResp.DoneReason),
		zap.Int64("eval_duration", chatResp.EvalDuration),
		zap.Int("eval_count", chatResp.EvalCount))

	return chatResp.Message.Content, nil
}

// HealthCheck verifies the Ollama service is available
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}

	return nil
}

func errorMessage(body []byte) string {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if msg == "" {
		msg = "empty error response"
	}
	return msg
}
