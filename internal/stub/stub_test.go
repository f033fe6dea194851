package stub

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviatorhq/aviator-chat/internal/api"
	"github.com/aviatorhq/aviator-chat/internal/session"
)

func newTestBackend(t *testing.T) (*api.Client, *Store) {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SeedDemoUsers())

	server := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(server.Close)

	return api.NewClient(server.URL, 5*time.Second), store
}

func TestLoginRoundTrip(t *testing.T) {
	client, _ := newTestBackend(t)

	resp, err := client.Login(context.Background(), "kamala", "admin")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "kamala", resp.User.Username)
	assert.Equal(t, api.UserTypeSupport, resp.User.UserType)

	_, err = client.Login(context.Background(), "kamala", "wrong")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestChatFlowEndToEnd(t *testing.T) {
	client, _ := newTestBackend(t)
	coord := session.NewCoordinator(client, session.TypingConfig{})
	ctx := context.Background()

	require.NoError(t, coord.Authenticate(ctx, "kamala", "admin"))
	require.NoError(t, coord.Bootstrap(ctx))
	assert.Empty(t, coord.Snapshot().History)

	require.NoError(t, coord.SendMessage(ctx, "Hello"))

	snap := coord.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "Hi there! How can I help you today?", snap.Messages[1].Content)
	assert.NotEqual(t, session.NewChatID, snap.ChatID)
	assert.True(t, snap.HistoryStale)

	require.NoError(t, coord.RefreshHistory(ctx))
	snap = coord.Snapshot()
	require.Len(t, snap.History, 1)
	assert.Equal(t, "Hello", snap.History[0].Title)
	assert.False(t, snap.HistoryStale)

	// Like the assistant reply, then reopen the chat from history and
	// verify the tag round-tripped through the backend.
	require.NoError(t, coord.SubmitFeedback(ctx, 1, api.FeedbackLiked))
	chatID := snap.ChatID
	coord.NewChat()
	require.NoError(t, coord.SelectHistoryEntry(ctx, chatID))

	snap = coord.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, api.FeedbackLiked, snap.Messages[1].Feedback)

	history, err := client.FeedbackHistory(ctx, "kamala", 1, 10)
	require.NoError(t, err)
	require.Len(t, history.FeedbackHistory, 1)
	assert.Equal(t, api.FeedbackLiked, history.FeedbackHistory[0].FeedbackType)
	assert.Equal(t, "Hello", history.FeedbackHistory[0].UserMessage)
	assert.Equal(t, 1, history.Pagination.TotalItems)
}

func TestChatMessagesUnknownChat(t *testing.T) {
	client, _ := newTestBackend(t)

	_, err := client.ChatMessages(context.Background(), "kamala", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDocumentLifecycle(t *testing.T) {
	client, _ := newTestBackend(t)
	ctx := context.Background()

	up, err := client.UploadDocument(ctx, "handbook.md", strings.NewReader("# Handbook"),
		"crew handbook", "manuals", "active", "public")
	require.NoError(t, err)
	assert.Equal(t, "handbook.md", up.Filename)

	list, err := client.ListDocuments(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Documents, 1)
	doc := list.Documents[0]
	assert.Equal(t, "manuals", doc.Category)
	assert.Equal(t, int64(len("# Handbook")), doc.Size)

	status := "archived"
	_, err = client.UpdateDocument(ctx, doc.ID, api.DocumentUpdate{Status: &status})
	require.NoError(t, err)

	list, err = client.ListDocuments(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "archived", list.Documents[0].Status)
	assert.Equal(t, "crew handbook", list.Documents[0].Description) // untouched by the patch

	_, err = client.DeleteDocument(ctx, doc.ID)
	require.NoError(t, err)

	list, err = client.ListDocuments(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list.Documents)

	_, err = client.DeleteDocument(ctx, doc.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDocumentPagination(t *testing.T) {
	client, store := newTestBackend(t)

	for i := 0; i < 25; i++ {
		_, err := store.InsertDocument(api.Document{
			Filename: fmt.Sprintf("doc-%02d.txt", i),
			Category: "general", Status: "active", Access: "private",
		})
		require.NoError(t, err)
	}

	list, err := client.ListDocuments(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, list.Documents, 10)

	p := list.Pagination
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalItems)
	assert.Equal(t, 10, p.ItemsPerPage)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrevious)

	last, err := client.ListDocuments(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Len(t, last.Documents, 5)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrevious)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		expected           api.Pagination
	}{
		{
			name: "middle page", page: 2, limit: 10, total: 25,
			expected: api.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, HasNext: true, HasPrevious: true},
		},
		{
			name: "single page", page: 1, limit: 10, total: 7,
			expected: api.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 7, ItemsPerPage: 10},
		},
		{
			name: "empty set", page: 1, limit: 10, total: 0,
			expected: api.Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, ItemsPerPage: 10},
		},
		{
			name: "exact fit", page: 2, limit: 5, total: 10,
			expected: api.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 10, ItemsPerPage: 5, HasPrevious: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, paginate(tc.page, tc.limit, tc.total))
		})
	}
}

func TestResponder(t *testing.T) {
	assert.Equal(t, "Hi there! How can I help you today?", respondTo("Hello"))
	assert.Equal(t, "Hi there! How can I help you today?", respondTo("  hi, aviator  "))
	assert.Contains(t, respondTo("What is the baggage limit?"), "baggage limit")
	assert.Contains(t, respondTo("thanks a lot"), "welcome")
	assert.Contains(t, respondTo("just a statement"), "canned response")
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "New chat", titleFor("   "))
	assert.Equal(t, "Short question", titleFor("Short  question"))

	long := titleFor("This is a rather long first message that should be truncated for the title")
	assert.True(t, strings.HasSuffix(long, "…"))
	assert.LessOrEqual(t, len([]rune(long)), maxTitleLen+1)

	// Multibyte input must never be cut mid-character.
	accented := titleFor(strings.Repeat("héllö wörld ", 8))
	assert.True(t, utf8.ValidString(accented))
	assert.True(t, strings.HasSuffix(accented, "…"))
	assert.LessOrEqual(t, len([]rune(accented)), maxTitleLen+1)
}
