package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// Router composes the configured providers behind one LLMService:
// embeddings always go to Gemini, vision goes to Claude when an
// Anthropic key is configured and falls back to Gemini otherwise.
type Router struct {
	embedProvider  interfaces.LLMService
	visionProvider interfaces.LLMService
	logger         arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*Router)(nil)

// NewRouter builds the provider router from configuration
func NewRouter(config *common.Config, logger arbor.ILogger) (*Router, error) {
	gemini, err := NewGeminiService(&config.Gemini, &config.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini provider: %w", err)
	}

	router := &Router{
		embedProvider:  gemini,
		visionProvider: gemini,
		logger:         logger,
	}

	if config.Claude.APIKey != "" {
		claude, err := NewClaudeService(&config.Claude, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Claude provider unavailable, using Gemini for vision")
		} else {
			router.visionProvider = claude
		}
	}

	logger.Info().
		Str("embed_provider", string(router.embedProvider.GetMode())).
		Str("vision_provider", string(router.visionProvider.GetMode())).
		Msg("LLM provider router initialized")

	return router, nil
}

// Embed generates an embedding via the embed provider
func (r *Router) Embed(ctx context.Context, text string) ([]float32, error) {
	return r.embedProvider.Embed(ctx, text)
}

// DescribeImage describes an image via the vision provider
func (r *Router) DescribeImage(ctx context.Context, imageURL, instruction string) (string, error) {
	return r.visionProvider.DescribeImage(ctx, imageURL, instruction)
}

// HealthCheck probes the embed provider, which every pipeline depends on
func (r *Router) HealthCheck(ctx context.Context) error {
	return r.embedProvider.HealthCheck(ctx)
}

// GetMode returns the embed provider's mode
func (r *Router) GetMode() interfaces.LLMMode {
	return r.embedProvider.GetMode()
}
