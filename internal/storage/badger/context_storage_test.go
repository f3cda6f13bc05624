package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/models"
)

func testContext(userID, sessionID string, version int) *models.ShortTermContext {
	return &models.ShortTermContext{
		ID:        common.NewContextID(),
		UserID:    userID,
		SessionID: sessionID,
		Version:   version,
		Summary:   "summary",
	}
}

func TestSaveContext_Validation(t *testing.T) {
	store := newTestManager(t).Contexts()

	assert.Error(t, store.SaveContext(&models.ShortTermContext{UserID: "user-1", SessionID: "ses-1"}))
	assert.Error(t, store.SaveContext(&models.ShortTermContext{ID: common.NewContextID()}))
}

func TestGetCurrentContext(t *testing.T) {
	store := newTestManager(t).Contexts()

	// No context yet returns nil without an error
	current, err := store.GetCurrentContext("user-1", "ses-1")
	require.NoError(t, err)
	assert.Nil(t, current)

	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 1)))
	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 2)))
	require.NoError(t, store.SaveContext(testContext("user-1", "ses-2", 5)))

	current, err = store.GetCurrentContext("user-1", "ses-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 2, current.Version)
}

func TestGetContextHistory_NewestFirst(t *testing.T) {
	store := newTestManager(t).Contexts()

	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 1)))
	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 3)))
	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 2)))

	history, err := store.GetContextHistory("user-1", "ses-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 3, history[0].Version)
	assert.Equal(t, 2, history[1].Version)
	assert.Equal(t, 1, history[2].Version)
}

func TestTouchContext(t *testing.T) {
	store := newTestManager(t).Contexts()

	ctx := testContext("user-1", "ses-1", 1)
	require.NoError(t, store.SaveContext(ctx))

	accessed := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, store.TouchContext(ctx.ID, accessed))

	current, err := store.GetCurrentContext("user-1", "ses-1")
	require.NoError(t, err)
	assert.WithinDuration(t, accessed, current.LastAccessedAt, time.Millisecond)
	assert.Equal(t, "summary", current.Summary)

	assert.Error(t, store.TouchContext("ctx_missing", accessed))
}

func TestDeleteContextsForSession(t *testing.T) {
	store := newTestManager(t).Contexts()

	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 1)))
	require.NoError(t, store.SaveContext(testContext("user-1", "ses-1", 2)))
	require.NoError(t, store.SaveContext(testContext("user-1", "ses-2", 1)))

	require.NoError(t, store.DeleteContextsForSession("ses-1"))

	history, err := store.GetContextHistory("user-1", "ses-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	other, err := store.GetContextHistory("user-1", "ses-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
