package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
	"github.com/ternarybob/memoria/internal/services/chunker"
	"github.com/ternarybob/memoria/internal/services/events"
	"github.com/ternarybob/memoria/internal/storage/badger"
)

const (
	testWait = 2 * time.Second
	testTick = 10 * time.Millisecond
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, mediaType, sourceURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return string(data), nil
}

func (f *fakeExtractor) Supports(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/")
}

type fakeEmbedder struct {
	mu       sync.Mutex
	batches  int
	failure  bool
	degraded bool
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (f *fakeEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return f.GenerateEmbedding(ctx, query)
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) (*interfaces.BatchResult, error) {
	f.mu.Lock()
	f.batches++
	f.mu.Unlock()

	if f.failure {
		return nil, fmt.Errorf("provider unavailable")
	}

	result := &interfaces.BatchResult{
		Vectors:  make([][]float32, len(texts)),
		Degraded: make([]bool, len(texts)),
	}
	for i := range texts {
		if f.degraded {
			result.Vectors[i] = make([]float32, 4)
			result.Degraded[i] = true
		} else {
			result.Vectors[i] = []float32{1, 0, 0, 0}
		}
	}
	return result, nil
}

func (f *fakeEmbedder) Dimension() int { return 4 }

func (f *fakeEmbedder) IsAvailable(ctx context.Context) bool { return !f.failure }

type testEnv struct {
	orchestrator interfaces.IngestionService
	storage      interfaces.StorageManager
	extractor    *fakeExtractor
	embedder     *fakeEmbedder
	events       interfaces.EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := arbor.NewLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{
		Path: t.TempDir() + "/badger",
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	cfg := common.DefaultConfig()
	cfg.Embedding.BatchSize = 2
	cfg.Embedding.BatchDelay = "1ms"

	extractor := &fakeExtractor{}
	embedder := &fakeEmbedder{}
	eventService := events.NewService(logger)

	orchestrator := NewOrchestrator(
		storage,
		extractor,
		chunker.NewService(logger),
		embedder,
		eventService,
		cfg,
		logger,
	)

	return &testEnv{
		orchestrator: orchestrator,
		storage:      storage,
		extractor:    extractor,
		embedder:     embedder,
		events:       eventService,
	}
}

func createDoc(t *testing.T, env *testEnv, content string) *models.Document {
	t.Helper()

	doc, err := env.orchestrator.CreateDocument(context.Background(), &interfaces.CreateDocumentRequest{
		UserID:    "user-1",
		FileName:  "notes.txt",
		MediaType: "text/plain",
		Data:      []byte(content),
	})
	require.NoError(t, err)
	return doc
}

func TestCreateDocument(t *testing.T) {
	env := newTestEnv(t)

	doc := createDoc(t, env, "Some document content to ingest.")

	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, models.StatusPending, doc.Status)
	assert.Equal(t, int64(len("Some document content to ingest.")), doc.SizeBytes)

	// Raw payload is durable before processing starts
	data, err := env.storage.Blobs().Download(doc.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "Some document content to ingest.", string(data))
}

func TestCreateDocument_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orchestrator.CreateDocument(ctx, &interfaces.CreateDocumentRequest{
		FileName:  "notes.txt",
		MediaType: "text/plain",
		Data:      []byte("content"),
	})
	assert.Error(t, err, "missing user id")

	_, err = env.orchestrator.CreateDocument(ctx, &interfaces.CreateDocumentRequest{
		UserID:    "user-1",
		FileName:  "archive.zip",
		MediaType: "application/zip",
		Data:      []byte("content"),
	})
	assert.Error(t, err, "unsupported media type")

	_, err = env.orchestrator.CreateDocument(ctx, &interfaces.CreateDocumentRequest{
		UserID:    "user-1",
		FileName:  "notes.txt",
		MediaType: "text/plain",
	})
	assert.Error(t, err, "empty payload")
}

func TestProcessDocument_Completes(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, strings.Repeat("A sentence of document text. ", 300))

	err := env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)

	stored, err := env.orchestrator.GetDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Empty(t, stored.LastError)

	chunks, err := env.storage.Documents().GetChunks(doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, stored.ChunkCount, len(chunks))

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, "user-1", chunk.UserID)
		assert.Len(t, chunk.Embedding, 4)
		assert.False(t, chunk.Degraded)
		assert.Greater(t, chunk.TokenEstimate, 0)
	}

	assert.Greater(t, env.embedder.batches, 1, "multi-chunk document should take several batches")
}

func TestProcessDocument_ExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, "content")
	env.extractor.err = fmt.Errorf("corrupt payload")

	err := env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1")
	require.Error(t, err)

	stored, err := env.orchestrator.GetDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Contains(t, stored.LastError, "corrupt payload")
}

func TestProcessDocument_EmbeddingFailure(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, "Plenty of text that extracts fine.")
	env.embedder.failure = true

	err := env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1")
	require.Error(t, err)

	stored, err := env.orchestrator.GetDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.NotEmpty(t, stored.LastError)
}

func TestProcessDocument_DegradedEmbeddingsStillComplete(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, "Text whose embedding provider is flaky today.")
	env.embedder.degraded = true

	err := env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)

	stored, err := env.orchestrator.GetDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	chunks, err := env.storage.Documents().GetChunks(doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, chunk.Degraded)
		assert.True(t, common.IsZeroVector(chunk.Embedding))
	}
}

func TestProcessDocument_IllegalSecondRun(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, "Some document content.")

	require.NoError(t, env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1"))

	// Completed is terminal
	err := env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1")
	assert.Error(t, err)
}

func TestProcessDocument_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, "Some document content.")

	err := env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-2")
	assert.Error(t, err)

	_, err = env.orchestrator.GetDocument(context.Background(), doc.ID, "user-2")
	assert.Error(t, err)
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, "Some document content to delete.")
	require.NoError(t, env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1"))

	err := env.orchestrator.DeleteDocument(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)

	// Gone from polling and from retrieval
	_, err = env.orchestrator.GetDocument(context.Background(), doc.ID, "user-1")
	assert.Error(t, err)

	chunks, err := env.storage.Documents().GetChunks(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Idempotence is not promised: a second delete reports not found
	err = env.orchestrator.DeleteDocument(context.Background(), doc.ID, "user-1")
	assert.Error(t, err)
}

func TestProcessDocument_ProgressEvents(t *testing.T) {
	env := newTestEnv(t)
	doc := createDoc(t, env, strings.Repeat("A sentence of document text. ", 300))

	var mu sync.Mutex
	var seen []interfaces.EventType
	record := func(ctx context.Context, event interfaces.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, event.Type)
		return nil
	}
	require.NoError(t, env.events.Subscribe(interfaces.EventDocumentProcessing, record))
	require.NoError(t, env.events.Subscribe(interfaces.EventDocumentProgress, record))
	require.NoError(t, env.events.Subscribe(interfaces.EventDocumentCompleted, record))

	require.NoError(t, env.orchestrator.ProcessDocument(context.Background(), doc.ID, "user-1"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		hasProcessing := false
		hasProgress := false
		hasCompleted := false
		for _, et := range seen {
			switch et {
			case interfaces.EventDocumentProcessing:
				hasProcessing = true
			case interfaces.EventDocumentProgress:
				hasProgress = true
			case interfaces.EventDocumentCompleted:
				hasCompleted = true
			}
		}
		return hasProcessing && hasProgress && hasCompleted
	}, testWait, testTick)
}
