package stub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the backend contract the client consumes. Paths mirror
// the real backend exactly; StripSlashes makes "/chat/" and "/documents/"
// land on their handlers.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Post("/auth/login", h.LoginHandler)

	r.Get("/history/user_history/{username}", h.UserHistoryHandler)
	r.Get("/history/{username}/{chatID}", h.ChatMessagesHandler)

	r.Post("/chat", h.ChatHandler)
	r.Post("/chat/feedback", h.FeedbackHandler)
	r.Get("/chat/feedback/history/{username}", h.FeedbackHistoryHandler)

	r.Get("/documents", h.ListDocumentsHandler)
	r.Post("/documents/upload", h.UploadDocumentHandler)
	r.Patch("/documents/{docID}", h.UpdateDocumentHandler)
	r.Delete("/documents/{docID}", h.DeleteDocumentHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
