// -----------------------------------------------------------------------
// Content Extractor Service - Convert raw uploads into plain text
// Dispatches per media family: plain text, structured markup, PDF, image
// -----------------------------------------------------------------------

package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// MinMeaningfulChars is the minimum number of non-whitespace characters
// required for an extraction to count as successful.
const MinMeaningfulChars = 10

// ErrUnsupportedMediaType is returned for media types no strategy handles
type ErrUnsupportedMediaType struct {
	MediaType string
}

func (e *ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("unsupported media type: %s", e.MediaType)
}

// strategy is one media-family extraction implementation
type strategy interface {
	extract(ctx context.Context, data []byte, sourceURL string) (string, error)
	supports(mediaType string) bool
}

// Service dispatches extraction to a per-media-family strategy
type Service struct {
	strategies []strategy
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ContentExtractor = (*Service)(nil)

// NewService creates the content extractor with all supported strategies
func NewService(llmService interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		strategies: []strategy{
			newTextStrategy(),
			newMarkupStrategy(logger),
			newPDFStrategy(logger),
			newImageStrategy(llmService, logger),
		},
		logger: logger,
	}
}

// Extract converts the raw bytes into plain text. Fewer than
// MinMeaningfulChars meaningful characters is treated as a failure so
// downstream chunking never runs on empty content.
func (s *Service) Extract(ctx context.Context, data []byte, mediaType, sourceURL string) (string, error) {
	normalized := normalizeMediaType(mediaType)

	for _, strat := range s.strategies {
		if !strat.supports(normalized) {
			continue
		}

		text, err := strat.extract(ctx, data, sourceURL)
		if err != nil {
			return "", fmt.Errorf("extraction failed for %s: %w", normalized, err)
		}

		if meaningfulChars(text) < MinMeaningfulChars {
			return "", fmt.Errorf("extraction produced no meaningful text for %s", normalized)
		}

		s.logger.Debug().
			Str("media_type", normalized).
			Int("text_length", len(text)).
			Msg("Content extracted")

		return text, nil
	}

	return "", &ErrUnsupportedMediaType{MediaType: mediaType}
}

// Supports reports whether any strategy handles the media type
func (s *Service) Supports(mediaType string) bool {
	normalized := normalizeMediaType(mediaType)
	for _, strat := range s.strategies {
		if strat.supports(normalized) {
			return true
		}
	}
	return false
}

// normalizeMediaType lowercases and strips parameters like charset
func normalizeMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	return mt
}

// meaningfulChars counts non-whitespace characters
func meaningfulChars(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// textStrategy decodes plain text payloads as UTF-8
type textStrategy struct{}

func newTextStrategy() *textStrategy {
	return &textStrategy{}
}

func (t *textStrategy) supports(mediaType string) bool {
	switch mediaType {
	case "text/plain", "text/markdown", "text/csv":
		return true
	}
	return false
}

func (t *textStrategy) extract(ctx context.Context, data []byte, sourceURL string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("payload is not valid UTF-8")
	}
	return string(data), nil
}
