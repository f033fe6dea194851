// Package stub is a local stand-in for the Aviator backend. It serves the
// same HTTP contract the real backend exposes, backed by SQLite, with canned
// assistant responses. It exists for offline development (`aviator stub`)
// and for end-to-end tests; it is not the product backend.
package stub

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/aviatorhq/aviator-chat/internal/api"
)

type Store struct {
	db *sql.DB
}

func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        username TEXT PRIMARY KEY,
        password TEXT NOT NULL,
        user_type TEXT NOT NULL CHECK (user_type IN ('Admin', 'Support', 'User')),
        email TEXT
    );

    CREATE TABLE IF NOT EXISTS chats (
        id TEXT PRIMARY KEY, -- UUID
        username TEXT NOT NULL,
        title TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (username) REFERENCES users (username)
    );

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY, -- UUID
        chat_id TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        feedback TEXT NOT NULL DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (chat_id) REFERENCES chats (id)
    );

    CREATE TABLE IF NOT EXISTS feedback (
        id TEXT PRIMARY KEY, -- UUID
        username TEXT NOT NULL,
        chat_id TEXT NOT NULL,
        message_index INTEGER NOT NULL,
        user_message TEXT NOT NULL,
        assistant_message TEXT NOT NULL,
        feedback_type TEXT NOT NULL CHECK (feedback_type IN ('liked', 'disliked')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS documents (
        id TEXT PRIMARY KEY, -- UUID
        filename TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT 'general',
        status TEXT NOT NULL DEFAULT 'active',
        access TEXT NOT NULL DEFAULT 'private',
        size INTEGER NOT NULL DEFAULT 0,
        uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// SeedDemoUsers inserts one account per role. Passwords are stored in the
// clear; the stub only ever runs locally.
func (s *Store) SeedDemoUsers() error {
	users := []struct {
		username, password, userType, email string
	}{
		{"kamala", "admin", api.UserTypeSupport, "kamala@aviator.local"},
		{"admin", "admin", api.UserTypeAdmin, "admin@aviator.local"},
		{"demo", "demo", api.UserTypeUser, "demo@aviator.local"},
	}
	for _, u := range users {
		_, err := s.db.Exec(
			"INSERT OR IGNORE INTO users (username, password, user_type, email) VALUES (?, ?, ?, ?)",
			u.username, u.password, u.userType, u.email)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.username, err)
		}
	}
	return nil
}

// Authenticate checks credentials and returns the stored user, or nil when
// the pair does not match.
func (s *Store) Authenticate(username, password string) (*api.User, error) {
	var user api.User
	var email sql.NullString
	err := s.db.QueryRow(
		"SELECT username, user_type, email FROM users WHERE username = ? AND password = ?",
		username, password).Scan(&user.Username, &user.UserType, &email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if email.Valid {
		user.Email = email.String
	}
	return &user, nil
}

func (s *Store) CreateChat(username, title string) (string, error) {
	chatID := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO chats (id, username, title, created_at) VALUES (?, ?, ?, ?)",
		chatID, username, title, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert chat: %w", err)
	}
	return chatID, nil
}

// ChatExists reports whether the chat belongs to the user.
func (s *Store) ChatExists(username, chatID string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM chats WHERE id = ? AND username = ?", chatID, username).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query chat: %w", err)
	}
	return true, nil
}

func (s *Store) ListChats(username string) ([]api.ChatSummary, error) {
	rows, err := s.db.Query(
		"SELECT id, title, created_at FROM chats WHERE username = ? ORDER BY created_at DESC", username)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	summaries := []api.ChatSummary{}
	for rows.Next() {
		var summary api.ChatSummary
		var createdAt time.Time
		if err := rows.Scan(&summary.ID, &summary.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		summary.Timestamp = createdAt.UTC().Format(time.RFC3339)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) AppendMessage(chatID, role, content string) error {
	_, err := s.db.Exec(
		"INSERT INTO messages (id, chat_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), chatID, role, content, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *Store) GetMessages(chatID string) ([]api.ChatMessage, error) {
	rows, err := s.db.Query(
		"SELECT role, content, feedback FROM messages WHERE chat_id = ? ORDER BY created_at ASC, rowid ASC", chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []api.ChatMessage{}
	for rows.Next() {
		var msg api.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Feedback); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// InsertFeedback records a feedback entry and tags the matching assistant
// message so it round-trips through GET /history/{username}/{chat_id}.
func (s *Store) InsertFeedback(req api.FeedbackRequest) (string, error) {
	feedbackID := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO feedback (id, username, chat_id, message_index, user_message, assistant_message, feedback_type, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		feedbackID, req.Username, req.ChatID, req.MessageIndex,
		req.UserMessage, req.AssistantMessage, req.FeedbackType, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert feedback: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE messages SET feedback = ? WHERE chat_id = ? AND role = 'assistant' AND content = ?",
		req.FeedbackType, req.ChatID, req.AssistantMessage)
	if err != nil {
		return "", fmt.Errorf("failed to tag message feedback: %w", err)
	}
	return feedbackID, nil
}

func (s *Store) FeedbackPage(username string, page, limit int) ([]api.FeedbackEntry, int, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM feedback WHERE username = ?", username).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, chat_id, message_index, user_message, assistant_message, feedback_type, created_at
         FROM feedback WHERE username = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		username, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	entries := []api.FeedbackEntry{}
	for rows.Next() {
		var entry api.FeedbackEntry
		var createdAt time.Time
		if err := rows.Scan(&entry.FeedbackID, &entry.ChatID, &entry.MessageIndex,
			&entry.UserMessage, &entry.AssistantMessage, &entry.FeedbackType, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		entry.Timestamp = createdAt.UTC().Format(time.RFC3339)
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

func (s *Store) InsertDocument(doc api.Document) (string, error) {
	docID := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO documents (id, filename, description, category, status, access, size, uploaded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		docID, doc.Filename, doc.Description, doc.Category, doc.Status, doc.Access, doc.Size, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return docID, nil
}

func (s *Store) ListDocuments(page, limit int) ([]api.Document, int, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, filename, description, category, status, access, size, uploaded_at
         FROM documents ORDER BY uploaded_at DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []api.Document{}
	for rows.Next() {
		var doc api.Document
		var uploadedAt time.Time
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Description, &doc.Category,
			&doc.Status, &doc.Access, &doc.Size, &uploadedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan document row: %w", err)
		}
		doc.UploadedAt = uploadedAt.UTC().Format(time.RFC3339)
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

// UpdateDocument applies the non-nil fields of a partial update. Returns
// false when the document does not exist.
func (s *Store) UpdateDocument(id string, update api.DocumentUpdate) (bool, error) {
	set := ""
	args := []interface{}{}
	appendField := func(column string, value *string) {
		if value == nil {
			return
		}
		if set != "" {
			set += ", "
		}
		set += column + " = ?"
		args = append(args, *value)
	}
	appendField("description", update.Description)
	appendField("status", update.Status)
	appendField("access", update.Access)
	appendField("category", update.Category)

	if set == "" {
		// Nothing to change; still report whether the row exists.
		var one int
		err := s.db.QueryRow("SELECT 1 FROM documents WHERE id = ?", id).Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}

	args = append(args, id)
	res, err := s.db.Exec("UPDATE documents SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("failed to update document: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *Store) DeleteDocument(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
