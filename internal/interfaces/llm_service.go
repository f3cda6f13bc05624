package interfaces

import (
	"context"
)

// LLMMode identifies which provider backs the LLM service
type LLMMode string

const (
	// LLMModeGemini uses Google Gemini API
	LLMModeGemini LLMMode = "gemini"
	// LLMModeClaude uses Anthropic Claude API
	LLMModeClaude LLMMode = "claude"
)

// LLMService abstracts the external model providers. Embed must be told
// an input cap by the caller and fails per request rather than silently
// truncating; DescribeImage takes a publicly reachable URL.
type LLMService interface {
	// Embed generates a fixed-length embedding vector for the text
	Embed(ctx context.Context, text string) ([]float32, error)

	// DescribeImage asks a vision-capable model to describe the image at
	// the given URL, following the instruction.
	DescribeImage(ctx context.Context, imageURL, instruction string) (string, error)

	// HealthCheck probes the provider
	HealthCheck(ctx context.Context) error

	// GetMode returns which provider backs this service
	GetMode() LLMMode
}
