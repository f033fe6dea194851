package stub

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/aviatorhq/aviator-chat/internal/api"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		log.WithError(err).WithField("username", req.Username).Error("Failed to authenticate user")
		http.Error(w, "Failed to process login", http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, api.LoginResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	writeJSON(w, http.StatusOK, api.LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
	})
}

func (h *Handler) UserHistoryHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	summaries, err := h.store.ListChats(username)
	if err != nil {
		log.WithError(err).WithField("username", username).Error("Failed to list chats")
		http.Error(w, "Failed to list chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) ChatMessagesHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	chatID := chi.URLParam(r, "chatID")

	exists, err := h.store.ChatExists(username, chatID)
	if err != nil {
		log.WithError(err).Error("Failed to verify chat")
		http.Error(w, "Failed to load chat", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}

	messages, err := h.store.GetMessages(chatID)
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to load messages")
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.UserInput == "" {
		http.Error(w, "Username and user_input are required", http.StatusBadRequest)
		return
	}

	chatID := req.ChatID
	if chatID == "" {
		var err error
		chatID, err = h.store.CreateChat(req.Username, titleFor(req.UserInput))
		if err != nil {
			log.WithError(err).Error("Failed to create chat")
			http.Error(w, "Failed to create chat", http.StatusInternalServerError)
			return
		}
	} else {
		exists, err := h.store.ChatExists(req.Username, chatID)
		if err != nil {
			log.WithError(err).Error("Failed to verify chat")
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
	}

	if err := h.store.AppendMessage(chatID, api.RoleUser, req.UserInput); err != nil {
		log.WithError(err).Error("Failed to store user message")
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	response := respondTo(req.UserInput)
	if err := h.store.AppendMessage(chatID, api.RoleAssistant, response); err != nil {
		log.WithError(err).Error("Failed to store assistant message")
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, api.ChatResponse{Response: response, ChatID: chatID})
}

func (h *Handler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req api.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.ChatID == "" {
		http.Error(w, "Username and chat_id are required", http.StatusBadRequest)
		return
	}
	if req.FeedbackType != api.FeedbackLiked && req.FeedbackType != api.FeedbackDisliked {
		http.Error(w, "feedback_type must be liked or disliked", http.StatusBadRequest)
		return
	}

	feedbackID, err := h.store.InsertFeedback(req)
	if err != nil {
		log.WithError(err).Error("Failed to store feedback")
		http.Error(w, "Failed to store feedback", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, api.FeedbackResponse{
		Message:    "Feedback recorded",
		FeedbackID: feedbackID,
	})
}

func (h *Handler) FeedbackHistoryHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	page, limit := pageParams(r)

	entries, total, err := h.store.FeedbackPage(username, page, limit)
	if err != nil {
		log.WithError(err).WithField("username", username).Error("Failed to load feedback history")
		http.Error(w, "Failed to load feedback history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, api.FeedbackHistoryResponse{
		Username:        username,
		FeedbackHistory: entries,
		Pagination:      paginate(page, limit, total),
	})
}

func (h *Handler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	docs, total, err := h.store.ListDocuments(page, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list documents")
		http.Error(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, api.DocumentListResponse{
		Documents:  docs,
		Pagination: paginate(page, limit, total),
	})
}

func (h *Handler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// The stub keeps metadata only; file bytes are drained for the size.
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	doc := api.Document{
		Filename:    header.Filename,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Status:      r.FormValue("status"),
		Access:      r.FormValue("access"),
		Size:        size,
	}
	if doc.Category == "" {
		doc.Category = "general"
	}
	if doc.Status == "" {
		doc.Status = "active"
	}
	if doc.Access == "" {
		doc.Access = "private"
	}

	if _, err := h.store.InsertDocument(doc); err != nil {
		log.WithError(err).WithField("filename", doc.Filename).Error("Failed to store document")
		http.Error(w, "Failed to store document", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, api.UploadResponse{
		Message:  "Document uploaded",
		Filename: doc.Filename,
	})
}

func (h *Handler) UpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var update api.DocumentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	found, err := h.store.UpdateDocument(docID, update)
	if err != nil {
		log.WithError(err).WithField("doc_id", docID).Error("Failed to update document")
		http.Error(w, "Failed to update document", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Document updated"})
}

func (h *Handler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	found, err := h.store.DeleteDocument(docID)
	if err != nil {
		log.WithError(err).WithField("doc_id", docID).Error("Failed to delete document")
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Document deleted"})
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func paginate(page, limit, total int) api.Pagination {
	totalPages := (total + limit - 1) / limit
	return api.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1,
	}
}
