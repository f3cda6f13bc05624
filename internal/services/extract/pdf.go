package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
)

// pdfStrategy extracts text page-by-page using pdfcpu, emitting inline
// "Page N:" delimiters so the chunker can recover page numbers. Any page
// failure is fatal to the whole document's extraction step.
type pdfStrategy struct {
	logger  arbor.ILogger
	tempDir string
}

func newPDFStrategy(logger arbor.ILogger) *pdfStrategy {
	tempDir := filepath.Join(os.TempDir(), "memoria-pdf")
	os.MkdirAll(tempDir, 0755)

	return &pdfStrategy{
		logger:  logger,
		tempDir: tempDir,
	}
}

func (p *pdfStrategy) supports(mediaType string) bool {
	return mediaType == "application/pdf"
}

func (p *pdfStrategy) extract(ctx context.Context, data []byte, sourceURL string) (string, error) {
	// pdfcpu works on files, so stage each payload in its own temp dir.
	// Concurrent extractions must never share staging paths.
	workDir, err := os.MkdirTemp(p.tempDir, "extract_")
	if err != nil {
		return "", fmt.Errorf("failed to create PDF staging dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	tempFile := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(workDir, "pages")
	os.MkdirAll(outDir, 0755)

	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	// No partial-page recovery: an unreadable page fails the document
	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok || strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("no text extracted from page %d of %d", pageNum, pageCount)
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("Page %d:\n", pageNum))
		builder.WriteString(text)
	}

	p.logger.Debug().
		Int("page_count", pageCount).
		Int("text_length", builder.Len()).
		Msg("Extracted PDF text")

	return builder.String(), nil
}
