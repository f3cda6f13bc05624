package badger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/models"
)

func testSession(userID string) *models.Session {
	return &models.Session{
		ID:     common.NewSessionID(),
		UserID: userID,
		Active: true,
	}
}

func testMessage(sessionID, userID, content string, createdAt time.Time) *models.Message {
	return &models.Message{
		ID:        common.NewMessageID(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      "user",
		Content:   content,
		CreatedAt: createdAt,
	}
}

func TestListActiveSessions_ExcludesSoftDeleted(t *testing.T) {
	store := newTestManager(t).Sessions()

	live := testSession("user-1")
	deleted := testSession("user-1")
	require.NoError(t, store.SaveSession(live))
	require.NoError(t, store.SaveSession(deleted))
	require.NoError(t, store.SaveSession(testSession("user-2")))
	require.NoError(t, store.SoftDeleteSession(deleted.ID))

	sessions, err := store.ListActiveSessions("user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, live.ID, sessions[0].ID)

	// Soft-deleted sessions stay fetchable by ID until the purge
	byID, err := store.GetSession(deleted.ID)
	require.NoError(t, err)
	assert.NotNil(t, byID.DeletedAt)
	assert.False(t, byID.Active)
}

func TestGetMessages_ChronologicalWindow(t *testing.T) {
	store := newTestManager(t).Sessions()

	session := testSession("user-1")
	require.NoError(t, store.SaveSession(session))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		msg := testMessage(session.ID, "user-1", fmt.Sprintf("message %d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.AppendMessage(msg))
	}

	messages, err := store.GetMessages(session.ID, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "message 2", messages[0].Content)
	assert.Equal(t, "message 4", messages[2].Content)

	all, err := store.GetMessages(session.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSimilarMessages(t *testing.T) {
	store := newTestManager(t).Sessions()

	session := testSession("user-1")
	require.NoError(t, store.SaveSession(session))

	match := testMessage(session.ID, "user-1", "match", time.Now())
	match.Embedding = []float32{1, 0, 0}
	far := testMessage(session.ID, "user-1", "far", time.Now())
	far.Embedding = []float32{0, 1, 0}
	noEmbedding := testMessage(session.ID, "user-1", "no embedding", time.Now())
	require.NoError(t, store.AppendMessage(match))
	require.NoError(t, store.AppendMessage(far))
	require.NoError(t, store.AppendMessage(noEmbedding))

	results, err := store.SimilarMessages("user-1", "", []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "match", results[0].Message.Content)

	// Session scope excludes other sessions
	results, err = store.SimilarMessages("user-1", "ses_other", []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTextSearchMessages(t *testing.T) {
	store := newTestManager(t).Sessions()

	session := testSession("user-1")
	require.NoError(t, store.SaveSession(session))
	require.NoError(t, store.AppendMessage(testMessage(session.ID, "user-1", "Booked flights to Lisbon", time.Now())))
	require.NoError(t, store.AppendMessage(testMessage(session.ID, "user-1", "Unrelated", time.Now())))

	results, err := store.TextSearchMessages("user-1", "", "lisbon", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Booked flights to Lisbon", results[0].Content)

	results, err = store.TextSearchMessages("user-1", "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPurgeSession(t *testing.T) {
	store := newTestManager(t).Sessions()

	session := testSession("user-1")
	require.NoError(t, store.SaveSession(session))
	require.NoError(t, store.AppendMessage(testMessage(session.ID, "user-1", "hello", time.Now())))
	require.NoError(t, store.SoftDeleteSession(session.ID))

	expired, err := store.SessionsDeletedBefore(time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)

	require.NoError(t, store.PurgeSession(session.ID))

	_, err = store.GetSession(session.ID)
	assert.Error(t, err)
	messages, err := store.GetMessages(session.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Purge of an already-purged session is a no-op
	assert.NoError(t, store.PurgeSession(session.ID))
}
