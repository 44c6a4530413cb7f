// Package gemini provides the Google Gemini generator
package gemini

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// ProviderName identifies this generator in logs and metrics
const ProviderName = "gemini"

// Client implements the Generator interface on the Gemini API
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

var _ outbound.Generator = (*Client)(nil)

// NewClient creates a Gemini client authenticated with an API key
func NewClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if cfg.GeminiAPIKey == "" && len(opts) == 0 {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.GeminiAPIKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(cfg.GeminiAPIKey)}, opts...)
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))

	return &Client{
		client:      client,
		model:       cfg.GeminiModel,
		temperature: float32(cfg.Temperature),
		logger:      logger.Named("gemini-client"),
	}, nil
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// Generate issues one GenerateContent call
func (c *Client) Generate(ctx context.Context, payload generation.Payload) (string, error) {
	model := c.client.GenerativeModel(c.model)
	configure(model, payload, c.temperature)

	return c.result(model.GenerateContent(ctx, genai.Text(payload.User)))
}

// result extracts the reply text. A blocked prompt yields no text so the
// gateway reports it as empty output.
func (c *Client) result(resp *genai.GenerateContentResponse, err error) (string, error) {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		c.logger.Warn("Gemini blocked the prompt",
			zap.String("model", c.model),
			zap.String("block_reason", blockReason(blocked)))
		return "", nil
	}
	if err != nil {
		return "", mapError(err)
	}

	text, finish := responseText(resp)
	c.logger.Debug("Gemini generation completed",
		zap.String("model", c.model),
		zap.String("finish_reason", finish),
		zap.Int("bytes", len(text)))

	return text, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.client.Close()
}

func configure(model *genai.GenerativeModel, payload generation.Payload, temperature float32) {
	model.SetTemperature(temperature)
	if payload.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(payload.System)}}
	}

	switch payload.Format {
	case generation.FormatJSON:
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toSchema(payload.Schema)
	default:
		model.ResponseMIMEType = "text/plain"
	}
}

// toSchema translates the neutral schema. Gemini has no item count bounds,
// so MinItems and MaxItems are left to the validator.
func toSchema(s *generation.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toType(s.Type),
		Description: s.Description,
		Enum:        append([]string(nil), s.Enum...),
		Required:    append([]string(nil), s.Required...),
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toSchema(p)
		}
	}
	if len(out.Enum) > 0 {
		out.Format = "enum"
	}
	return out
}

func toType(t generation.SchemaType) genai.Type {
	switch t {
	case generation.TypeObject:
		return genai.TypeObject
	case generation.TypeArray:
		return genai.TypeArray
	case generation.TypeNumber:
		return genai.TypeNumber
	case generation.TypeInteger:
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ""
	}
	cand := resp.Candidates[0]
	finish := cand.FinishReason.String()
	if cand.Content == nil {
		return "", finish
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), finish
}

// mapError turns API refusals into service errors; transport errors pass through
func mapError(err error) error {
	var (
		gErr   *googleapi.Error
		apiErr *apierror.APIError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &gErr):
		return &generation.ServiceError{Provider: ProviderName, StatusCode: gErr.Code, Message: gErr.Message, Cause: err}
	case errors.As(err, &apiErr):
		code := apiErr.HTTPCode()
		if code < 0 {
			code = 0
		}
		msg := apiErr.Reason()
		if st := apiErr.GRPCStatus(); st != nil && st.Message() != "" {
			msg = st.Message()
		}
		if msg == "" {
			msg = apiErr.Error()
		}
		return &generation.ServiceError{Provider: ProviderName, StatusCode: code, Message: msg, Cause: err}
	default:
		return err
	}
}

func blockReason(b *genai.BlockedError) string {
	var reasons []string
	if b.PromptFeedback != nil {
		reasons = append(reasons, b.PromptFeedback.BlockReason.String())
	}
	if b.Candidate != nil {
		reasons = append(reasons, b.Candidate.FinishReason.String())
	}
	if len(reasons) == 0 {
		return "unspecified"
	}
	sort.Strings(reasons)
	return strings.Join(reasons, ",")
}
