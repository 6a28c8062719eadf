// Package llm fronts the Gemini provider with role-specialized prompt
// workers and owns intent parsing, structured extraction and response
// generation for the concierge.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/trailwise-ai/trailwise/app/observability/metrics"
)

const defaultModel = "gemini-2.0-flash"

// Role tags one of the five prompt workers. Response-type to role is a pure
// function (roleFor).
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RolePlanner     Role = "planner"
	RoleGuide       Role = "guide"
	RoleSafety      Role = "safety"
	RoleResearcher  Role = "researcher"
)

// worker carries a role's system instruction and sampling temperature. All
// workers share the same model.
type worker struct {
	instruction string
	temperature float32
}

var workers = map[Role]worker{
	RoleCoordinator: {
		instruction: "You are an intent parser for a national park trip assistant. You only ever output a single JSON object, with no prose before or after it.",
		temperature: 0.1,
	},
	RolePlanner: {
		instruction: "You are an experienced national park trip planner. You build day-by-day itineraries in clean markdown, grounded strictly in the data context you are given. Preserve every markdown link from the context.",
		temperature: 0.8,
	},
	RoleGuide: {
		instruction: "You are a friendly, knowledgeable park ranger. Answer in warm, concise markdown grounded strictly in the data context. Preserve markdown links and never invent trails, alerts or facilities.",
		temperature: 0.6,
	},
	RoleSafety: {
		instruction: "You are a park safety officer. Assess conditions soberly from the data context, lead with the overall verdict, and list concrete reasons. Do not speculate beyond the data.",
		temperature: 0.3,
	},
	RoleResearcher: {
		instruction: "You are a meticulous researcher who reports trail reviews verbatim. Follow the requested per-review format exactly and never paraphrase or invent review content.",
		temperature: 0.2,
	},
}

// Generator abstracts the model call so services can be tested with mocks.
type Generator interface {
	Generate(ctx context.Context, role Role, prompt string) (string, error)
}

// AIClient is the production Generator over the Gemini SDK.
type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewAIClient creates the Gemini-backed generator. The API key comes from
// GOOGLE_GEMINI_API_KEY.
func NewAIClient(ctx context.Context, model string, logger *slog.Logger) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &AIClient{client: client, model: model, logger: logger}, nil
}

// Generate runs one prompt through the worker for the given role.
func (ai *AIClient) Generate(ctx context.Context, role Role, prompt string) (string, error) {
	ctx, span := otel.Tracer("LLMService").Start(ctx, "Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.role", string(role)),
		attribute.Int("prompt.length", len(prompt)),
	)

	start := time.Now()
	defer func() {
		m := metrics.Get()
		attrs := metric.WithAttributes(attribute.String("role", string(role)))
		m.LLMCallsTotal.Add(ctx, 1, attrs)
		m.LLMDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	w, ok := workers[role]
	if !ok {
		w = workers[RoleGuide]
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](w.temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: w.instruction}},
		},
	}

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("generating content (%s): %w", role, err)
	}

	txt := result.Text()
	if txt == "" {
		err := fmt.Errorf("no valid content from model (%s)", role)
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty response")
		return "", err
	}
	span.SetAttributes(attribute.Int("response.length", len(txt)))
	span.SetStatus(codes.Ok, "generated")
	return txt, nil
}

// Service wraps a Generator with the concierge's parsing, extraction and
// generation logic.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService creates the LLM service over any Generator.
func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{generator: generator, logger: logger}
}
