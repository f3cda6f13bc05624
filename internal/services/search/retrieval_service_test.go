package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
	"github.com/ternarybob/memoria/internal/storage/badger"
)

// fakeEmbedder maps known query strings to fixed vectors
type fakeEmbedder struct {
	vectors     map[string][]float32
	unavailable bool
	failEmbed   bool
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.failEmbed {
		return nil, fmt.Errorf("provider error")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1, 0}, nil
}

func (f *fakeEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return f.GenerateEmbedding(ctx, query)
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) (*interfaces.BatchResult, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeEmbedder) Dimension() int { return 4 }

func (f *fakeEmbedder) IsAvailable(ctx context.Context) bool { return !f.unavailable }

type testEnv struct {
	service  interfaces.RetrievalService
	storage  interfaces.StorageManager
	embedder *fakeEmbedder
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
	cfg.Search.DefaultThreshold = 0.7
	cfg.Search.DefaultLimit = 10
	cfg.Search.MaxLimit = 100

	embedder := &fakeEmbedder{vectors: map[string][]float32{}}

	return &testEnv{
		service:  NewService(storage, embedder, cfg, logger),
		storage:  storage,
		embedder: embedder,
	}
}

func seedMemory(t *testing.T, env *testEnv, userID, title, body string, embedding []float32) *models.Memory {
	t.Helper()

	mem := &models.Memory{
		ID:        common.NewMemoryID(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Category:  "note",
		Embedding: embedding,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, env.storage.Memories().SaveMemory(mem))
	return mem
}

func seedMessage(t *testing.T, env *testEnv, userID, sessionID, content string, embedding []float32) *models.Message {
	t.Helper()

	msg := &models.Message{
		ID:        common.NewMessageID(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      "user",
		Content:   content,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.storage.Sessions().AppendMessage(msg))
	return msg
}

func TestSearch_RequiresUserID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Search(context.Background(), &models.SearchScope{}, &models.SearchQuery{Text: "query"})
	assert.Error(t, err)

	_, err = env.service.Search(context.Background(), nil, &models.SearchQuery{Text: "query"})
	assert.Error(t, err)
}

func TestSearch_EmptyQueryReturnsNoSignal(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.unavailable = true

	seedMemory(t, env, "user-1", "A memory", "Body.", []float32{1, 0, 0, 0})

	// No text and no vector is an empty result set, never an error and
	// never a match-everything scan
	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{SearchMemories: true})

	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeNone, results.SearchType)
	assert.Empty(t, results.Memories)
	assert.Equal(t, 0, results.Total)

	results, err = env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"}, &models.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeNone, results.SearchType)
}

func TestSearch_VectorMemories(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["travel plans"] = []float32{1, 0, 0, 0}

	match := seedMemory(t, env, "user-1", "Trip to Lisbon", "Flight booked for June.", []float32{0.9, 0.1, 0, 0})
	seedMemory(t, env, "user-1", "Grocery list", "Buy milk and eggs.", []float32{0, 0, 0, 1})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "travel plans", SearchMemories: true})

	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeVector, results.SearchType)
	require.Len(t, results.Memories, 1)
	assert.Equal(t, match.ID, results.Memories[0].Memory.ID)
	require.NotNil(t, results.Memories[0].Similarity)
	assert.Greater(t, *results.Memories[0].Similarity, 0.7)
	assert.Equal(t, 1, results.Total)
}

func TestSearch_DefaultsToMemoriesOnly(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["anything"] = []float32{1, 0, 0, 0}

	seedMemory(t, env, "user-1", "A memory", "Matching body.", []float32{1, 0, 0, 0})
	seedMessage(t, env, "user-1", "ses-1", "Matching message.", []float32{1, 0, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "anything"})

	require.NoError(t, err)
	assert.Len(t, results.Memories, 1)
	assert.Empty(t, results.Messages)
}

func TestSearch_ListsNeverMerged(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["query"] = []float32{1, 0, 0, 0}

	seedMemory(t, env, "user-1", "Memory hit", "Body.", []float32{1, 0, 0, 0})
	seedMessage(t, env, "user-1", "ses-1", "Message hit.", []float32{0.95, 0.05, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "query", SearchMemories: true, SearchMessages: true})

	require.NoError(t, err)
	assert.Len(t, results.Memories, 1)
	assert.Len(t, results.Messages, 1)
	assert.Equal(t, 2, results.Total)
}

func TestSearch_OwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["query"] = []float32{1, 0, 0, 0}

	seedMemory(t, env, "user-2", "Someone else's memory", "Private.", []float32{1, 0, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "query", SearchMemories: true})

	require.NoError(t, err)
	assert.Empty(t, results.Memories)
	assert.Equal(t, 0, results.Total)
}

func TestSearch_ThresholdGating(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["query"] = []float32{1, 0, 0, 0}

	seedMemory(t, env, "user-1", "Weak match", "Barely related.", []float32{0.3, 0.9, 0.3, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "query", SearchMemories: true, Threshold: 0.95})

	require.NoError(t, err)
	assert.Empty(t, results.Memories)
}

func TestSearch_TextFallbackWhenEmbeddingUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.unavailable = true

	seedMemory(t, env, "user-1", "Project kickoff", "Planning the Lisbon launch.", []float32{1, 0, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "lisbon", SearchMemories: true})

	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeText, results.SearchType)
	require.Len(t, results.Memories, 1)
	assert.Nil(t, results.Memories[0].Similarity, "lexical hits carry no score")
}

func TestSearch_TextFallbackWhenEmbedFails(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.failEmbed = true

	seedMemory(t, env, "user-1", "Notes", "Contains the word quartz.", []float32{1, 0, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "quartz", SearchMemories: true})

	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeText, results.SearchType)
	assert.Len(t, results.Memories, 1)
}

func TestSearch_ZeroVectorQueryHasNoSignal(t *testing.T) {
	env := newTestEnv(t)

	seedMemory(t, env, "user-1", "A memory", "Body.", []float32{1, 0, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Vector: []float32{0, 0, 0, 0}, SearchMemories: true})

	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeNone, results.SearchType)
	assert.Equal(t, 0, results.Total)
}

func TestSearch_EmptyResultsAreNotAnError(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["query"] = []float32{1, 0, 0, 0}

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1"},
		&models.SearchQuery{Text: "query", SearchMemories: true, SearchMessages: true, SearchChunks: true})

	require.NoError(t, err)
	assert.Equal(t, 0, results.Total)
}

func TestSearch_SessionScopeNarrowsMessages(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.vectors["query"] = []float32{1, 0, 0, 0}

	seedMessage(t, env, "user-1", "ses-1", "In scope.", []float32{1, 0, 0, 0})
	seedMessage(t, env, "user-1", "ses-2", "Out of scope.", []float32{1, 0, 0, 0})

	results, err := env.service.Search(context.Background(),
		&models.SearchScope{UserID: "user-1", SessionID: "ses-1"},
		&models.SearchQuery{Text: "query", SearchMessages: true})

	require.NoError(t, err)
	require.Len(t, results.Messages, 1)
	assert.Equal(t, "In scope.", results.Messages[0].Message.Content)
}
