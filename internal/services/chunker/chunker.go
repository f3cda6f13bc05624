package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
)

// CharsPerToken is the approximation used to derive character budgets
// from token budgets.
const CharsPerToken = 4

var (
	pageDelimiter    = regexp.MustCompile(`(?m)^Page (\d+):\s*`)
	sentenceSplitter = regexp.MustCompile(`(?U)[^.!?]+[.!?]+|[^.!?]+$`)
)

// Chunk is one bounded segment of extracted text with its position
type Chunk struct {
	Content string
	Page    int // 1-based; 1 for unpaginated sources
	Ordinal int // Global across the document, contiguous from 0
}

// Service splits extracted text into bounded-size chunks on sentence
// boundaries, preserving page numbers from inline "Page N:" delimiters.
// Chunking is deterministic: identical input and budget always produce
// identical boundaries.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new chunker
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// MaxCharsForTokens derives the character budget from a token budget
func MaxCharsForTokens(tokenBudget int) int {
	return tokenBudget * CharsPerToken
}

// Chunk splits text into ordered chunks of at most maxChars characters.
// The cap is soft: a single sentence longer than maxChars is emitted
// whole, never truncated mid-sentence.
func (s *Service) Chunk(text string, maxChars int) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = MaxCharsForTokens(1000)
	}

	pages := splitPages(text)

	chunks := make([]Chunk, 0, len(pages))
	ordinal := 0
	for _, page := range pages {
		content := strings.TrimSpace(page.text)
		if content == "" {
			continue
		}

		if len(content) <= maxChars {
			chunks = append(chunks, Chunk{Content: content, Page: page.number, Ordinal: ordinal})
			ordinal++
			continue
		}

		for _, segment := range splitSentences(content, maxChars) {
			chunks = append(chunks, Chunk{Content: segment, Page: page.number, Ordinal: ordinal})
			ordinal++
		}
	}

	return chunks
}

type pageText struct {
	number int
	text   string
}

// splitPages splits on inline "Page N:" delimiters. Text without
// delimiters is a single page 1.
func splitPages(text string) []pageText {
	matches := pageDelimiter.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []pageText{{number: 1, text: text}}
	}

	pages := make([]pageText, 0, len(matches)+1)

	// Text before the first delimiter belongs to page 1
	if lead := strings.TrimSpace(text[:matches[0][0]]); lead != "" {
		pages = append(pages, pageText{number: 1, text: lead})
	}

	for i, m := range matches {
		number, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			number = i + 1
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		pages = append(pages, pageText{number: number, text: text[m[1]:end]})
	}

	return pages
}

// splitSentences greedily accumulates sentences into segments of at
// most maxChars. An oversized single sentence becomes its own segment.
func splitSentences(text string, maxChars int) []string {
	sentences := sentenceSplitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		return []string{text}
	}

	segments := make([]string, 0)
	var current strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		candidate := len(sentence)
		if current.Len() > 0 {
			candidate += current.Len() + 1
		}

		if candidate > maxChars && current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		segments = append(segments, current.String())
	}

	return segments
}
