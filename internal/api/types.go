package api

// User roles as asserted by the backend. The client never derives or
// validates these.
const (
	UserTypeAdmin   = "Admin"
	UserTypeSupport = "Support"
	UserTypeUser    = "User"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Feedback tags. The empty string means no feedback.
const (
	FeedbackLiked    = "liked"
	FeedbackDisliked = "disliked"
	FeedbackNone     = ""
)

// User is the identity returned by the backend on a successful login.
type User struct {
	Username string `json:"username"`
	UserType string `json:"user_type"`
	Email    string `json:"email,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// ChatSummary is a read-only history entry for a persisted chat.
type ChatSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// ChatMessage is a single utterance within a chat, authored either by the
// user or the assistant. Assistant messages may carry a feedback tag.
type ChatMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Feedback string `json:"feedback,omitempty"`
}

// ChatRequest is the payload for POST /chat/. ChatID is omitted for a chat
// that has not been persisted yet; the backend creates one and returns it.
type ChatRequest struct {
	Username  string `json:"username"`
	ChatID    string `json:"chat_id,omitempty"`
	UserInput string `json:"user_input"`
}

type ChatResponse struct {
	Response string `json:"response"`
	ChatID   string `json:"chat_id"`
}

// FeedbackRequest is the payload for POST /chat/feedback. MessageIndex is
// the pair index of the exchange (message list index halved), not the raw
// list position.
type FeedbackRequest struct {
	Username         string `json:"username"`
	ChatID           string `json:"chat_id"`
	MessageIndex     int    `json:"message_index"`
	UserMessage      string `json:"user_message"`
	AssistantMessage string `json:"assistant_message"`
	FeedbackType     string `json:"feedback_type"`
}

type FeedbackResponse struct {
	Message    string `json:"message"`
	FeedbackID string `json:"feedback_id"`
}

// FeedbackEntry is one record in the paginated feedback history.
type FeedbackEntry struct {
	FeedbackID       string `json:"feedback_id"`
	ChatID           string `json:"chat_id"`
	MessageIndex     int    `json:"message_index"`
	UserMessage      string `json:"user_message"`
	AssistantMessage string `json:"assistant_message"`
	FeedbackType     string `json:"feedback_type"`
	Timestamp        string `json:"timestamp"`
}

type FeedbackHistoryResponse struct {
	Username        string          `json:"username"`
	FeedbackHistory []FeedbackEntry `json:"feedback_history"`
	Pagination      Pagination      `json:"pagination"`
}

// Document is a managed file record.
type Document struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Access      string `json:"access"`
	UploadedAt  string `json:"uploaded_at"`
	Size        int64  `json:"size"`
}

type DocumentListResponse struct {
	Documents  []Document `json:"documents"`
	Pagination Pagination `json:"pagination"`
}

// DocumentUpdate is a partial update for PATCH /documents/{id}. Nil fields
// are left untouched.
type DocumentUpdate struct {
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Access      *string `json:"access,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// Pagination is the shared page descriptor returned by every paginated
// endpoint. The client treats it as authoritative.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalItems   int  `json:"total_items"`
	ItemsPerPage int  `json:"items_per_page"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}
