package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// VisionInstruction is the fixed instruction sent to the vision model
const VisionInstruction = "Describe all visible text and salient visual content in this image."

// imageStrategy delegates to a vision-capable model. A vision failure
// produces a deterministic placeholder instead of an error so ingestion
// can still complete with a degraded chunk.
type imageStrategy struct {
	llmService interfaces.LLMService
	logger     arbor.ILogger
}

func newImageStrategy(llmService interfaces.LLMService, logger arbor.ILogger) *imageStrategy {
	return &imageStrategy{
		llmService: llmService,
		logger:     logger,
	}
}

func (i *imageStrategy) supports(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

func (i *imageStrategy) extract(ctx context.Context, data []byte, sourceURL string) (string, error) {
	if sourceURL == "" {
		i.logger.Warn().Msg("Image upload has no reachable URL, using placeholder description")
		return imagePlaceholder("no accessible URL"), nil
	}

	description, err := i.llmService.DescribeImage(ctx, sourceURL, VisionInstruction)
	if err != nil {
		i.logger.Warn().
			Err(err).
			Str("source_url", sourceURL).
			Msg("Vision description failed, using placeholder")
		return imagePlaceholder("description unavailable"), nil
	}

	return description, nil
}

// imagePlaceholder is deterministic and user-legible so a degraded
// image chunk is still searchable and explainable.
func imagePlaceholder(reason string) string {
	return fmt.Sprintf("[Image content could not be analyzed: %s]", reason)
}
