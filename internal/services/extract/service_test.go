package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestService() *Service {
	return NewService(nil, arbor.NewLogger())
}

func TestExtract_PlainText(t *testing.T) {
	svc := newTestService()

	text, err := svc.Extract(context.Background(), []byte("Plain text document content."), "text/plain", "")
	require.NoError(t, err)
	assert.Equal(t, "Plain text document content.", text)
}

func TestExtract_MediaTypeParameters(t *testing.T) {
	svc := newTestService()

	// Charset parameters and casing are normalized away
	text, err := svc.Extract(context.Background(), []byte("Content with charset param."), "Text/Plain; charset=utf-8", "")
	require.NoError(t, err)
	assert.Equal(t, "Content with charset param.", text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	svc := newTestService()

	_, err := svc.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "text/plain", "")
	assert.Error(t, err)
}

func TestExtract_UnsupportedMediaType(t *testing.T) {
	svc := newTestService()

	_, err := svc.Extract(context.Background(), []byte("data"), "application/octet-stream", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported media type")
}

func TestExtract_TooLittleMeaningfulText(t *testing.T) {
	svc := newTestService()

	_, err := svc.Extract(context.Background(), []byte("  a b \n\n  "), "text/plain", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "no meaningful text")
}

func TestExtract_HTML(t *testing.T) {
	svc := newTestService()

	html := `<html><head><style>body{color:red}</style></head><body><h1>Title</h1><p>Paragraph with enough content.</p></body></html>`
	text, err := svc.Extract(context.Background(), []byte(html), "text/html", "")
	require.NoError(t, err)
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Paragraph with enough content.")
	assert.NotContains(t, text, "color:red")
}

func TestExtract_ImageWithoutURL(t *testing.T) {
	svc := newTestService()

	// No reachable URL means the vision model is never consulted; a
	// deterministic placeholder keeps ingestion alive.
	text, err := svc.Extract(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, "image/png", "")
	require.NoError(t, err)
	assert.Contains(t, text, "could not be analyzed")
}

func TestSupports(t *testing.T) {
	svc := newTestService()

	assert.True(t, svc.Supports("text/plain"))
	assert.True(t, svc.Supports("text/markdown"))
	assert.True(t, svc.Supports("text/html"))
	assert.True(t, svc.Supports("application/pdf"))
	assert.True(t, svc.Supports("image/png"))
	assert.True(t, svc.Supports("TEXT/PLAIN; charset=utf-8"))
	assert.False(t, svc.Supports("application/octet-stream"))
	assert.False(t, svc.Supports("video/mp4"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "one two\nthree", collapseWhitespace("one\t\t two  \n\n   \n three "))
	assert.Equal(t, "", collapseWhitespace("  \n\t\n  "))
}
