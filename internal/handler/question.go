package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/service"
)

// QuestionHandler serves the question CRUD and subscription endpoints.
type QuestionHandler struct {
	questions *service.QuestionService
	comments  *service.CommentService
	logger    *slog.Logger
}

func NewQuestionHandler(questions *service.QuestionService, comments *service.CommentService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		comments:  comments,
		logger:    logger,
	}
}

// HandleCreate posts a new question.
//
// HTTP: POST /api/questions {"title","body"} (RequireAuth)
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	question, err := h.questions.Ask(r.Context(), userID, req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

// HandleList returns questions newest first.
//
// HTTP: GET /api/questions?limit=20&offset=0
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	questions, err := h.questions.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// HandleGet returns one question.
//
// HTTP: GET /api/questions/{id}
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	question, err := h.questions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// HandleDelete removes a question and everything under it.
//
// HTTP: DELETE /api/questions/{id} (RequireAuth, author only)
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.questions.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSubscribe adds the caller to the question's subscriber set.
//
// HTTP: PUT /api/questions/{id}/subscription (RequireAuth)
func (h *QuestionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.questions.Subscribe(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": true})
}

// HandleUnsubscribe removes the caller from the subscriber set.
//
// HTTP: DELETE /api/questions/{id}/subscription (RequireAuth)
func (h *QuestionHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.questions.Unsubscribe(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": false})
}

// HandleSubscription reports whether the caller is subscribed.
//
// HTTP: GET /api/questions/{id}/subscription (RequireAuth)
func (h *QuestionHandler) HandleSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	subscribed, err := h.questions.IsSubscribed(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": subscribed})
}

// HandleListComments returns a question's comments, oldest first.
//
// HTTP: GET /api/questions/{id}/comments
func (h *QuestionHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByCommentable(r.Context(), model.QuestionTarget(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreateComment posts a comment on a question.
//
// HTTP: POST /api/questions/{id}/comments {"body"} (RequireAuth)
func (h *QuestionHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, model.QuestionTarget(chi.URLParam(r, "id")), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
