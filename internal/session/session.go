// Package session owns the in-memory client state: the authenticated user,
// the active chat, its message list, and the chat-history summaries. All
// mutation goes through the Coordinator's methods; UI code only ever reads
// snapshots.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/aviatorhq/aviator-chat/internal/api"
)

// NewChatID marks a chat that has not been persisted by the backend yet. It
// is replaced by a real identifier exactly once, after the first successful
// send, and never reverts.
const NewChatID = "new_chat"

const apologyMessage = "I'm sorry, I encountered an error while processing your request."

// User-facing error strings. The taxonomy is flat on purpose: apart from bad
// credentials, every failure collapses to one line in the error banner.
const (
	errInvalidCredentials = "Invalid username or password"
	errLoginFailed        = "Login failed, please try again"
	errInitFailed         = "Failed to initialize session"
	errLoadChatFailed     = "Failed to load chat"
	errSendFailed         = "Failed to send message"
	errFeedbackFailed     = "Failed to submit feedback"
	errHistoryFailed      = "Failed to refresh chat history"
)

// Backend is the slice of the API surface the coordinator depends on.
// *api.Client satisfies it; tests substitute a fake.
type Backend interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	UserHistory(ctx context.Context, username string) ([]api.ChatSummary, error)
	ChatMessages(ctx context.Context, username, chatID string) ([]api.ChatMessage, error)
	SendMessage(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	SubmitFeedback(ctx context.Context, req api.FeedbackRequest) (*api.FeedbackResponse, error)
}

// Snapshot is a point-in-time copy of the coordinator state, safe to read
// without holding any lock.
type Snapshot struct {
	User         *api.User
	ChatID       string
	Messages     []api.ChatMessage
	History      []api.ChatSummary
	HistoryStale bool
	LastError    string
}

// Coordinator is the single source of truth for session and chat state.
type Coordinator struct {
	backend Backend
	typing  TypingConfig
	onChunk func(index int, chunk string)

	// fetchSeq fences overlapping history selections: a response whose
	// token is no longer current is discarded instead of clobbering a
	// newer one.
	fetchSeq atomic.Uint64

	mu           sync.Mutex
	user         *api.User
	chatID       string
	messages     []api.ChatMessage
	history      []api.ChatSummary
	historyStale bool
	lastError    string

	// generation identifies the current message list. It is bumped whenever
	// the list is replaced or reset, so a write targeting an index captured
	// against an earlier list is dropped instead of landing in an unrelated
	// chat. Appends keep the generation: indices stay valid on an
	// append-only list.
	generation uint64
}

func NewCoordinator(backend Backend, typing TypingConfig) *Coordinator {
	return &Coordinator{
		backend: backend,
		typing:  typing,
		chatID:  NewChatID,
	}
}

// OnAssistantChunk registers an observer invoked for each piece of assistant
// text revealed into the placeholder. Used by the CLI to animate output.
func (c *Coordinator) OnAssistantChunk(fn func(index int, chunk string)) {
	c.onChunk = fn
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ChatID:       c.chatID,
		HistoryStale: c.historyStale,
		LastError:    c.lastError,
	}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	snap.Messages = make([]api.ChatMessage, len(c.messages))
	copy(snap.Messages, c.messages)
	snap.History = make([]api.ChatSummary, len(c.history))
	copy(snap.History, c.history)
	return snap
}

// LoggedIn reports whether a user is set.
func (c *Coordinator) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil
}

// ClearError dismisses the error banner.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()
}

// Authenticate delegates credential validation to the backend. On success
// the returned user is stored and any prior error cleared; on failure the
// user stays unset and a user-facing message is recorded. No retry, no local
// password handling.
func (c *Coordinator) Authenticate(ctx context.Context, username, password string) error {
	resp, err := c.backend.Login(ctx, username, password)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if err == api.ErrUnauthorized {
			c.lastError = errInvalidCredentials
		} else {
			c.lastError = errLoginFailed
		}
		return err
	}
	if !resp.Success || resp.User == nil {
		c.lastError = errInvalidCredentials
		return api.ErrUnauthorized
	}

	user := *resp.User
	c.user = &user
	c.lastError = ""
	log.WithFields(log.Fields{"username": user.Username, "user_type": user.UserType}).Debug("Authenticated")
	return nil
}

// Bootstrap loads the chat-history summary list and resets the session to an
// empty new chat. Fails closed: on error the state stays empty apart from a
// generic error message.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	username := c.user.Username
	c.mu.Unlock()

	history, err := c.backend.UserHistory(ctx, username)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.chatID = NewChatID
	c.messages = nil
	c.generation++
	c.historyStale = false
	if err != nil {
		c.history = nil
		c.lastError = errInitFailed
		return err
	}
	c.history = history
	return nil
}

// SelectHistoryEntry replaces the active chat with a persisted one. The
// fetch carries a monotonic token; if another selection started after this
// one, the slower response is dropped.
func (c *Coordinator) SelectHistoryEntry(ctx context.Context, chatID string) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	username := c.user.Username
	c.mu.Unlock()

	token := c.fetchSeq.Add(1)
	messages, err := c.backend.ChatMessages(ctx, username, chatID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.fetchSeq.Load() {
		log.WithField("chat_id", chatID).Debug("Discarding stale history selection")
		return nil
	}
	if err != nil {
		c.lastError = errLoadChatFailed
		return err
	}
	c.chatID = chatID
	c.messages = messages
	c.generation++
	return nil
}

// SendMessage appends the user message and an empty assistant placeholder,
// posts to the backend, then reveals the response into the placeholder.
// Blank or whitespace-only text is a no-op: nothing changes and no request
// is made. The placeholder index is captured under the lock, so a second
// send cannot shift it.
func (c *Coordinator) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	username := c.user.Username
	wasNew := c.chatID == NewChatID

	req := api.ChatRequest{Username: username, UserInput: text}
	if !wasNew {
		req.ChatID = c.chatID
	}

	c.messages = append(c.messages, api.ChatMessage{Role: api.RoleUser, Content: text})
	c.messages = append(c.messages, api.ChatMessage{Role: api.RoleAssistant, Content: ""})
	target := len(c.messages) - 1
	gen := c.generation
	c.mu.Unlock()

	resp, err := c.backend.SendMessage(ctx, req)
	if err != nil {
		c.mu.Lock()
		c.lastError = errSendFailed
		if c.generation == gen {
			c.setContentLocked(target, apologyMessage)
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	// Re-checked under the lock: when two sends overlap on a fresh chat,
	// only the first response may claim the id. The sentinel transitions at
	// most once; the slower response's id is discarded.
	if resp.ChatID != "" && c.chatID == NewChatID && c.generation == gen {
		c.chatID = resp.ChatID
		c.historyStale = true
	}
	c.mu.Unlock()

	c.reveal(ctx, gen, target, resp.Response)
	return nil
}

// SubmitFeedback tags an assistant message as liked or disliked. The tag is
// applied optimistically and reverted to none if the backend rejects it.
// Feedback on a user message, an out-of-range index, or an unpersisted chat
// is an early return with no effect.
func (c *Coordinator) SubmitFeedback(ctx context.Context, index int, feedbackType string) error {
	if feedbackType != api.FeedbackLiked && feedbackType != api.FeedbackDisliked {
		return nil
	}

	c.mu.Lock()
	if c.user == nil || c.chatID == NewChatID || c.chatID == "" {
		c.mu.Unlock()
		return nil
	}
	if index < 0 || index >= len(c.messages) || c.messages[index].Role != api.RoleAssistant {
		c.mu.Unlock()
		return nil
	}

	c.messages[index].Feedback = feedbackType

	req := api.FeedbackRequest{
		Username:         c.user.Username,
		ChatID:           c.chatID,
		MessageIndex:     index / 2, // pair index of the exchange
		AssistantMessage: c.messages[index].Content,
		FeedbackType:     feedbackType,
	}
	if index > 0 && c.messages[index-1].Role == api.RoleUser {
		req.UserMessage = c.messages[index-1].Content
	}
	c.mu.Unlock()

	if _, err := c.backend.SubmitFeedback(ctx, req); err != nil {
		c.mu.Lock()
		if index < len(c.messages) {
			c.messages[index].Feedback = api.FeedbackNone
		}
		c.lastError = errFeedbackFailed
		c.mu.Unlock()
		return err
	}
	return nil
}

// RefreshHistory refetches the summary list, consuming the stale flag set
// when a chat transitioned from unpersisted to persisted.
func (c *Coordinator) RefreshHistory(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	username := c.user.Username
	c.mu.Unlock()

	history, err := c.backend.UserHistory(ctx, username)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.lastError = errHistoryFailed
		return err
	}
	c.history = history
	c.historyStale = false
	return nil
}

// NewChat resets the active chat to the unpersisted sentinel. History is
// left untouched.
func (c *Coordinator) NewChat() {
	c.mu.Lock()
	c.chatID = NewChatID
	c.messages = nil
	c.generation++
	c.mu.Unlock()
}

// Logout discards all state unconditionally, regardless of any in-flight
// request outcome.
func (c *Coordinator) Logout() {
	c.mu.Lock()
	c.user = nil
	c.chatID = NewChatID
	c.messages = nil
	c.history = nil
	c.historyStale = false
	c.lastError = ""
	c.generation++
	c.mu.Unlock()
}

// setContent replaces the content of one message, provided the list has not
// been replaced since gen was captured. Reports whether the write landed.
func (c *Coordinator) setContent(gen uint64, index int, content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.setContentLocked(index, content)
	return true
}

func (c *Coordinator) setContentLocked(index int, content string) {
	if index >= 0 && index < len(c.messages) {
		c.messages[index].Content = content
	}
}
