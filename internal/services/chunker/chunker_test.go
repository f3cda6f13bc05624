package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger())
}

func TestChunk_EmptyText(t *testing.T) {
	svc := newTestService()

	assert.Nil(t, svc.Chunk("", 4000))
	assert.Nil(t, svc.Chunk("   \n\t  ", 4000))
}

func TestChunk_SmallTextSingleChunk(t *testing.T) {
	svc := newTestService()

	chunks := svc.Chunk("This is a short document.", 4000)

	require.Len(t, chunks, 1)
	assert.Equal(t, "This is a short document.", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Ordinal)
}

func TestChunk_SplitsOnSentenceBoundaries(t *testing.T) {
	svc := newTestService()

	text := "First sentence here. Second sentence here. Third sentence here."
	chunks := svc.Chunk(text, 45)

	require.Len(t, chunks, 2)
	assert.Equal(t, "First sentence here. Second sentence here.", chunks[0].Content)
	assert.Equal(t, "Third sentence here.", chunks[1].Content)
}

func TestChunk_OrdinalsContiguousFromZero(t *testing.T) {
	svc := newTestService()

	text := strings.Repeat("A fairly ordinary sentence that fills space. ", 40)
	chunks := svc.Chunk(text, 200)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.LessOrEqual(t, len(chunk.Content), 200)
	}
}

func TestChunk_OversizedSentenceEmittedWhole(t *testing.T) {
	svc := newTestService()

	long := strings.Repeat("word ", 100) + "end."
	chunks := svc.Chunk(long, 50)

	require.Len(t, chunks, 1)
	assert.Greater(t, len(chunks[0].Content), 50)
	assert.Contains(t, chunks[0].Content, "end.")
}

func TestChunk_PageDelimiters(t *testing.T) {
	svc := newTestService()

	text := "Page 1:\nContent of the first page.\n\nPage 2:\nContent of the second page."
	chunks := svc.Chunk(text, 4000)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Content of the first page.", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, "Content of the second page.", chunks[1].Content)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, 1, chunks[1].Ordinal)
}

func TestChunk_OrdinalsGlobalAcrossPages(t *testing.T) {
	svc := newTestService()

	page1 := strings.Repeat("Sentence on page one goes here. ", 20)
	page2 := strings.Repeat("Sentence on page two goes here. ", 20)
	text := "Page 1:\n" + page1 + "\n\nPage 2:\n" + page2

	chunks := svc.Chunk(text, 200)

	require.Greater(t, len(chunks), 2)
	seenPage2 := false
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		if chunk.Page == 2 {
			seenPage2 = true
		}
		if seenPage2 {
			assert.Equal(t, 2, chunk.Page)
		}
	}
	assert.True(t, seenPage2)
}

func TestChunk_Deterministic(t *testing.T) {
	svc := newTestService()

	text := "Page 1:\n" + strings.Repeat("Some repeatable sentence content. ", 50)

	first := svc.Chunk(text, 300)
	second := svc.Chunk(text, 300)

	assert.Equal(t, first, second)
}

func TestMaxCharsForTokens(t *testing.T) {
	assert.Equal(t, 4000, MaxCharsForTokens(1000))
	assert.Equal(t, 2000, MaxCharsForTokens(500))
}
