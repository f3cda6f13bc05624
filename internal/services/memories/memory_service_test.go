package memories

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/storage/badger"
)

type fakeEmbedder struct {
	failEmbed bool
	lastText  string
	calls     int
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	f.lastText = text
	if f.failEmbed {
		return nil, fmt.Errorf("provider error")
	}
	return []float32{float32(len(text)), 1, 0, 0}, nil
}

func (f *fakeEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return f.GenerateEmbedding(ctx, query)
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) (*interfaces.BatchResult, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeEmbedder) Dimension() int { return 4 }

func (f *fakeEmbedder) IsAvailable(ctx context.Context) bool { return true }

type testEnv struct {
	service  interfaces.MemoryService
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

	embedder := &fakeEmbedder{}

	return &testEnv{
		service:  NewService(storage, embedder, logger),
		storage:  storage,
		embedder: embedder,
	}
}

func TestCreateMemory(t *testing.T) {
	env := newTestEnv(t)

	mem, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID:     "user-1",
		Title:      "Preferred airline",
		Body:       "Always books TAP for Lisbon trips.",
		Category:   "preference",
		Confidence: 0.8,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, mem.ID)
	assert.Len(t, mem.Embedding, 4)
	assert.Contains(t, env.embedder.lastText, "Preferred airline")
	assert.Contains(t, env.embedder.lastText, "TAP")
}

func TestCreateMemory_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID: "user-1",
		Title:  "No body",
	})
	assert.Error(t, err)

	_, err = env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID:     "user-1",
		Title:      "Title",
		Body:       "Body",
		Confidence: 2,
	})
	assert.Error(t, err, "confidence above 1")
}

func TestCreateMemory_EmbedFailureDegradesToZeroVector(t *testing.T) {
	env := newTestEnv(t)
	env.embedder.failEmbed = true

	mem, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID: "user-1",
		Title:  "Title",
		Body:   "Body",
	})

	require.NoError(t, err)
	require.Len(t, mem.Embedding, 4)
	assert.True(t, common.IsZeroVector(mem.Embedding))
}

func TestUpdateMemory_BodyChangeRegeneratesEmbedding(t *testing.T) {
	env := newTestEnv(t)

	mem, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID: "user-1",
		Title:  "Title",
		Body:   "Original body.",
	})
	require.NoError(t, err)
	callsAfterCreate := env.embedder.calls

	updated, err := env.service.UpdateMemory(context.Background(), mem.ID, &interfaces.UpdateMemoryRequest{
		UserID: "user-1",
		Body:   "Rewritten body with new facts.",
	})
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate+1, env.embedder.calls)
	assert.NotEqual(t, mem.Embedding, updated.Embedding)
	assert.Contains(t, env.embedder.lastText, "Rewritten body")
}

func TestUpdateMemory_MetadataOnlyKeepsEmbedding(t *testing.T) {
	env := newTestEnv(t)

	mem, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID: "user-1",
		Title:  "Title",
		Body:   "Body.",
	})
	require.NoError(t, err)
	callsAfterCreate := env.embedder.calls

	confidence := 0.5
	updated, err := env.service.UpdateMemory(context.Background(), mem.ID, &interfaces.UpdateMemoryRequest{
		UserID:     "user-1",
		Category:   "fact",
		Confidence: &confidence,
	})
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate, env.embedder.calls, "no re-embed without a text change")
	assert.Equal(t, mem.Embedding, updated.Embedding)
	assert.Equal(t, "fact", updated.Category)
	assert.Equal(t, 0.5, updated.Confidence)
}

func TestMemoryOwnership(t *testing.T) {
	env := newTestEnv(t)

	mem, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID: "user-1",
		Title:  "Title",
		Body:   "Body.",
	})
	require.NoError(t, err)

	_, err = env.service.GetMemory(context.Background(), mem.ID, "user-2")
	assert.Error(t, err)

	err = env.service.DeleteMemory(context.Background(), mem.ID, "user-2")
	assert.Error(t, err)

	_, err = env.service.UpdateMemory(context.Background(), mem.ID, &interfaces.UpdateMemoryRequest{
		UserID: "user-2",
		Body:   "Hijacked.",
	})
	assert.Error(t, err)
}

func TestListMemories_ByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, c := range []string{"preference", "preference", "fact"} {
		_, err := env.service.CreateMemory(ctx, &interfaces.CreateMemoryRequest{
			UserID:   "user-1",
			Title:    "Title",
			Body:     "Body.",
			Category: c,
		})
		require.NoError(t, err)
	}

	all, err := env.service.ListMemories(ctx, "user-1", "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	prefs, err := env.service.ListMemories(ctx, "user-1", "preference", 0, 0)
	require.NoError(t, err)
	assert.Len(t, prefs, 2)
}

func TestDeleteMemory(t *testing.T) {
	env := newTestEnv(t)

	mem, err := env.service.CreateMemory(context.Background(), &interfaces.CreateMemoryRequest{
		UserID: "user-1",
		Title:  "Title",
		Body:   "Body.",
	})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteMemory(context.Background(), mem.ID, "user-1"))

	_, err = env.service.GetMemory(context.Background(), mem.ID, "user-1")
	assert.Error(t, err)
}
