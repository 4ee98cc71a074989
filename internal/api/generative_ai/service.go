package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-day-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-day-planner/config"
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

const defaultModel = "gemini-2.0-flash"

var (
	ErrMissingAPIKey = errors.New("gemini api key is not configured")
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)

type AIClient struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

func NewAIClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*AIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &AIClient{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

func (ai *AIClient) Model() string { return ai.model }

// GenerateContent sends a single prompt. A nil config uses the configured temperature.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent")
	defer span.End()

	start := time.Now()
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), ai.withDefaults(cfg))
	text, err := responseText(result, err)
	ai.record(ctx, "generate", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Gemini generate failed")
		return "", err
	}
	return text, nil
}

// GenerateJSON is GenerateContent asking the model for a JSON body.
func (ai *AIClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	cfg := ai.withDefaults(nil)
	cfg.ResponseMIMEType = "application/json"
	return ai.GenerateContent(ctx, prompt, cfg)
}

// ChatOnce replays history under the system instruction and sends message as the next user turn.
func (ai *AIClient) ChatOnce(ctx context.Context, system string, history []types.ChatMessage, message string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "ChatOnce")
	defer span.End()
	span.SetAttributes(attribute.Int("history.length", len(history)))

	cfg := ai.withDefaults(nil)
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	chat, err := ai.client.Chats.Create(ctx, ai.model, cfg, toHistory(history))
	if err != nil {
		err = fmt.Errorf("failed to create chat: %w", err)
		ai.record(ctx, "chat", start, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Gemini chat create failed")
		return "", err
	}

	text, err := responseText(chat.SendMessage(ctx, genai.Part{Text: message}))
	ai.record(ctx, "chat", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Gemini chat failed")
		return "", err
	}
	return text, nil
}

func (ai *AIClient) withDefaults(cfg *genai.GenerateContentConfig) *genai.GenerateContentConfig {
	if cfg == nil {
		cfg = &genai.GenerateContentConfig{}
	}
	if cfg.Temperature == nil && ai.temperature > 0 {
		cfg.Temperature = genai.Ptr(ai.temperature)
	}
	return cfg
}

func (ai *AIClient) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		ai.logger.WarnContext(ctx, "LLM call failed", slog.String("operation", operation), slog.Any("error", err))
	}
	attrs := metric.WithAttributes(attribute.String("operation", operation), attribute.String("status", status))
	m := metrics.Get()
	m.LLMRequestsTotal.Add(ctx, 1, attrs)
	m.LLMRequestDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
}

func responseText(resp *genai.GenerateContentResponse, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// toHistory maps stored roles onto Gemini's: assistant turns become model turns.
func toHistory(messages []types.ChatMessage) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(m.Content, role))
	}
	return history
}
