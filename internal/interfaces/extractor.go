package interfaces

import (
	"context"
)

// ContentExtractor converts a raw byte buffer plus declared media type
// into plain text. Paginated extractors emit inline "Page N:" delimiters
// so downstream chunking can recover page numbers.
type ContentExtractor interface {
	// Extract returns the extracted text. sourceURL is only required for
	// media types that delegate to a vision model.
	Extract(ctx context.Context, data []byte, mediaType, sourceURL string) (string, error)

	// Supports reports whether the extractor handles the media type
	Supports(mediaType string) bool
}
