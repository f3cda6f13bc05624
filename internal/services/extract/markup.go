package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

var whitespaceCollapser = regexp.MustCompile(`[ \t]+`)

// markupStrategy strips structured markup (HTML and word-processor
// XML-ish payloads) down to text. Lossy best-effort, not a full
// document-format parser.
type markupStrategy struct {
	logger arbor.ILogger
}

func newMarkupStrategy(logger arbor.ILogger) *markupStrategy {
	return &markupStrategy{logger: logger}
}

func (m *markupStrategy) supports(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml", "application/xml", "text/xml":
		return true
	}
	// Word-processor payloads are handled as markup to strip
	if strings.HasPrefix(mediaType, "application/vnd.openxmlformats-officedocument") {
		return true
	}
	if mediaType == "application/msword" || mediaType == "application/rtf" {
		return true
	}
	return false
}

func (m *markupStrategy) extract(ctx context.Context, data []byte, sourceURL string) (string, error) {
	// Try markdown conversion first; it preserves structure better
	// than raw tag stripping.
	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(string(data))
	if err == nil && strings.TrimSpace(converted) != "" {
		return collapseWhitespace(converted), nil
	}

	if err != nil {
		m.logger.Debug().Err(err).Msg("Markdown conversion failed, stripping tags")
	}

	// Fallback: strip tags with goquery
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	doc.Find("script, style").Remove()
	text := doc.Text()

	return collapseWhitespace(text), nil
}

// collapseWhitespace collapses runs of spaces/tabs and trims blank lines
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceCollapser.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
