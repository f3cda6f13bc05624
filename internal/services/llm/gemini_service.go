package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiService implements the LLMService interface using the Google
// Gemini API. It provides embeddings and vision descriptions.
type GeminiService struct {
	config     *common.GeminiConfig
	embedModel string
	dimension  int
	logger     arbor.ILogger
	client     *genai.Client
	timeout    time.Duration
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*GeminiService)(nil)

// NewGeminiService creates a new Gemini LLM service instance
func NewGeminiService(config *common.GeminiConfig, embedding *common.EmbeddingConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini service (set via MEMORIA_GEMINI_API_KEY or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:     config,
		embedModel: embedding.Model,
		dimension:  embedding.Dimension,
		logger:     logger,
		client:     client,
		timeout:    timeout,
	}

	logger.Info().
		Str("embed_model", embedding.Model).
		Str("vision_model", config.Model).
		Int("embed_dimension", embedding.Dimension).
		Dur("timeout", timeout).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// Embed generates a fixed-dimension embedding vector for the given text.
// The provider is told the output dimensionality and fails per request
// rather than silently truncating.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	resp, err := s.client.Models.EmbedContent(timeoutCtx, s.embedModel,
		genai.Text(text),
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(s.dimension)),
		})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("Gemini API returned empty embedding")
	}

	embedding := resp.Embeddings[0].Values
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("Gemini API returned %d-dimension embedding, expected %d", len(embedding), s.dimension)
	}

	s.logger.Debug().
		Int("text_length", len(text)).
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// DescribeImage asks the vision model to describe the image at the URL.
// The URL must be publicly reachable.
func (s *GeminiService) DescribeImage(ctx context.Context, imageURL, instruction string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image URL cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromURI(imageURL, "image/*"),
		}, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini vision call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini vision API")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty text in Gemini vision response")
	}

	return text, nil
}

// HealthCheck exercises the embedding model with a minimal probe
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	embedding, err := s.Embed(healthCheckCtx, "health check probe")
	if err != nil {
		return fmt.Errorf("embedding probe failed: %w", err)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding probe returned empty vector")
	}

	return nil
}

// GetMode returns the provider mode
func (s *GeminiService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeGemini
}

// Close releases the client
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}
