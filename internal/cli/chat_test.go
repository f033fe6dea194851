package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviatorhq/aviator-chat/internal/api"
	"github.com/aviatorhq/aviator-chat/internal/session"
)

type scriptedBackend struct {
	history []api.ChatSummary
}

func (b *scriptedBackend) Login(_ context.Context, username, password string) (*api.LoginResponse, error) {
	if password != "admin" {
		return nil, api.ErrUnauthorized
	}
	return &api.LoginResponse{Success: true, User: &api.User{Username: username, UserType: api.UserTypeSupport}}, nil
}

func (b *scriptedBackend) UserHistory(_ context.Context, _ string) ([]api.ChatSummary, error) {
	return b.history, nil
}

func (b *scriptedBackend) ChatMessages(_ context.Context, _, chatID string) ([]api.ChatMessage, error) {
	return []api.ChatMessage{
		{Role: api.RoleUser, Content: "old question"},
		{Role: api.RoleAssistant, Content: "old answer"},
	}, nil
}

func (b *scriptedBackend) SendMessage(_ context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	b.history = append(b.history, api.ChatSummary{ID: "abc123", Title: req.UserInput})
	return &api.ChatResponse{Response: "Hi there", ChatID: "abc123"}, nil
}

func (b *scriptedBackend) SubmitFeedback(_ context.Context, _ api.FeedbackRequest) (*api.FeedbackResponse, error) {
	return &api.FeedbackResponse{Message: "ok", FeedbackID: "fb-1"}, nil
}

func TestChatAppScriptedSession(t *testing.T) {
	input := strings.Join([]string{
		"kamala",
		"wrong", // first attempt rejected
		"kamala",
		"admin",
		"Hello",
		"/history",
		"/like 1",
		"/new",
		"/quit",
	}, "\n") + "\n"

	var out bytes.Buffer
	coord := session.NewCoordinator(&scriptedBackend{}, session.TypingConfig{})
	app := NewChatApp(coord, strings.NewReader(input), &out)

	require.NoError(t, app.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Invalid username or password")
	assert.Contains(t, text, "Welcome kamala (Support)")
	assert.Contains(t, text, "aviator> Hi there")
	assert.Contains(t, text, "Hello") // refreshed history lists the new chat
	assert.Contains(t, text, "Feedback recorded.")
	assert.Contains(t, text, "Started a new chat.")

	snap := coord.Snapshot()
	assert.Equal(t, session.NewChatID, snap.ChatID)
	assert.Empty(t, snap.Messages)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "way too l…", truncate("way too long for ten", 10))
}
