// ABOUTME: OpenAI client for query embeddings and booking plan generation
// ABOUTME: Embeddings are requested at 1024 dimensions; plans come back via JSON-mode chat completion
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/models"
	"github.com/tripcortex/trip-cortex/internal/util"
)

const (
	// DefaultChatModel is the default model for plan generation
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.LargeEmbedding3
)

// EmbeddingProvider turns text into a fixed-dimension vector.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Planner turns a booking request plus retrieved policy grounding into a
// structured booking plan.
type Planner interface {
	GeneratePlan(ctx context.Context, request string, grounding []models.PolicyChunkResult) (*models.BookingPlan, error)
}

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Dimensions     int
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// DefaultClientConfig returns the default client configuration
func DefaultClientConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Dimensions:     models.EmbeddingDimension,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
		RequestTimeout: time.Second * 30,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimensions     int
	maxRetries     int
	retryDelay     time.Duration
	requestTimeout time.Duration
}

// NewOpenAIClient creates a new OpenAI client with default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultClientConfig(apiKey))
}

// NewOpenAIClientFromConfig creates a client from the application config
func NewOpenAIClientFromConfig(cfg *config.Config) (*OpenAIClient, error) {
	cc := DefaultClientConfig(cfg.OpenAIKey)
	if cfg.ChatModel != "" {
		cc.ChatModel = cfg.ChatModel
	}
	if cfg.EmbeddingModel != "" {
		cc.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
	}
	cc.Dimensions = cfg.VectorDimension
	cc.MaxRetries = cfg.MaxRetries
	cc.RetryDelay = cfg.RetryDelay
	cc.RequestTimeout = cfg.Timeout
	return NewOpenAIClientWithConfig(cc)
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(cfg *ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIClient{
		client:         openai.NewClient(cfg.APIKey),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     cfg.Dimensions,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

// GenerateEmbedding generates an embedding vector at the configured
// dimension count. The model is asked for exactly that many dimensions, so
// the result matches the stored chunk vectors without truncation.
func (c *OpenAIClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)

		resp, err := c.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input:      []string{text},
			Model:      c.embeddingModel,
			Dimensions: c.dimensions,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if len(resp.Data) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}

		cancel()
		return embedding64, nil
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr)
}

// GeneratePlan asks the chat model to produce a structured booking plan for
// the request, grounded in the retrieved policy chunks. The response is
// forced into JSON mode and decoded into a BookingPlan.
func (c *OpenAIClient) GeneratePlan(ctx context.Context, request string, grounding []models.PolicyChunkResult) (*models.BookingPlan, error) {
	userPrompt := buildPlanPrompt(request, grounding)

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)

		resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: planSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: 0.2,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if len(resp.Choices) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		var plan models.BookingPlan
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &plan); err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: failed to parse plan JSON: %w", attempt+1, err)
			continue
		}

		cancel()
		return &plan, nil
	}

	return nil, fmt.Errorf("failed to generate plan after %d attempts: %w", c.maxRetries+1, lastErr)
}

const planSystemPrompt = `You are a corporate travel planning assistant. Given an employee's booking request and excerpts from the company travel policy, produce a booking plan as a JSON object with these fields:

- intent: one of "flight_booking", "flight_search", "policy_query"
- confidence: 0.0 to 1.0, how certain you are about the extracted parameters
- parameters: {origin, destination, departure_date (YYYY-MM-DD), return_date (YYYY-MM-DD or omit for one-way), cabin_class (economy|premium_economy|business|first), time_preference, passenger_count}
- policy_constraints: {max_budget_usd, preferred_vendors, advance_booking_days_required, advance_booking_met, requires_approval, approval_reason}
- policy_sources: array of {chunk_id, section_title, page, similarity_score} for every policy excerpt you relied on
- reasoning_summary: one or two sentences explaining the plan
- warnings: array of strings for anything the traveler should know

Derive policy_constraints strictly from the provided policy excerpts. If the excerpts do not cover a constraint, be conservative: set requires_approval to true and explain why in approval_reason. Use IATA airport codes. Return ONLY the JSON object.`

// buildPlanPrompt renders the request and its policy grounding for the model
func buildPlanPrompt(request string, grounding []models.PolicyChunkResult) string {
	prompt := fmt.Sprintf("BOOKING REQUEST:\n%s\n\nPOLICY EXCERPTS:\n", request)
	if len(grounding) == 0 {
		return prompt + "(none found)\n"
	}
	for _, g := range grounding {
		prompt += fmt.Sprintf("[chunk_id=%s section=%q page=%d similarity=%.2f]\n%s\n\n",
			g.ID, g.SectionTitle, g.SourcePage, g.Similarity, g.ContentText)
	}
	return prompt
}
