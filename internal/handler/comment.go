package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/service"
)

// CommentHandler serves the endpoints that address comments directly.
// Creation and listing live under the question and answer routes.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger,
	}
}

// HandleDelete removes a comment.
//
// HTTP: DELETE /api/comments/{id} (RequireAuth, author only)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
