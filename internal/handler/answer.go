package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/repository"
	"github.com/study-and-research/QnA/internal/service"
)

// AnswerHandler serves answers, acceptance, voting, and answer
// comments.
type AnswerHandler struct {
	answers  *service.AnswerService
	votes    *service.VoteService
	comments *service.CommentService
	logger   *slog.Logger
}

func NewAnswerHandler(
	answers *service.AnswerService,
	votes *service.VoteService,
	comments *service.CommentService,
	logger *slog.Logger,
) *AnswerHandler {
	return &AnswerHandler{
		answers:  answers,
		votes:    votes,
		comments: comments,
		logger:   logger,
	}
}

// HandleCreate posts an answer to a question.
//
// HTTP: POST /api/questions/{id}/answers {"body"} (RequireAuth)
func (h *AnswerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.answers.Create(r.Context(), userID, chi.URLParam(r, "id"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, answer)
}

// HandleListByQuestion returns a question's answers. Accepted-first is
// the default; ?order=newest sorts by recency instead.
//
// HTTP: GET /api/questions/{id}/answers
func (h *AnswerHandler) HandleListByQuestion(w http.ResponseWriter, r *http.Request) {
	order := repository.OrderAcceptedFirst
	if r.URL.Query().Get("order") == "newest" {
		order = repository.OrderNewestFirst
	}

	answers, err := h.answers.ListByQuestion(r.Context(), chi.URLParam(r, "id"), order)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answers)
}

// HandleGet returns one answer with its rating.
//
// HTTP: GET /api/answers/{id}
func (h *AnswerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	answer, err := h.answers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// HandleUpdate edits an answer's body.
//
// HTTP: PATCH /api/answers/{id} {"body"} (RequireAuth, author only)
func (h *AnswerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.answers.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// HandleDelete removes an answer with its votes and comments.
//
// HTTP: DELETE /api/answers/{id} (RequireAuth, author only)
func (h *AnswerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.answers.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAccept marks the answer as its question's accepted one.
//
// HTTP: POST /api/questions/{id}/answers/{answerID}/accept
// (RequireAuth, question author only)
func (h *AnswerHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	answer, err := h.answers.Accept(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "answerID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// HandleVote records an up- or downvote on the answer and returns the
// answer with its refreshed rating.
//
// HTTP: PUT /api/answers/{id}/vote {"value": 1 | -1} (RequireAuth)
func (h *AnswerHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	answerID := chi.URLParam(r, "id")

	var req struct {
		Value int `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var (
		answer *model.Answer
		err    error
	)
	switch req.Value {
	case model.Upvote:
		answer, err = h.votes.Upvote(r.Context(), userID, answerID)
	case model.Downvote:
		answer, err = h.votes.Downvote(r.Context(), userID, answerID)
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "vote value must be 1 or -1",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// HandleRecallVote withdraws the caller's vote on the answer.
//
// HTTP: DELETE /api/answers/{id}/vote (RequireAuth)
func (h *AnswerHandler) HandleRecallVote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	answer, err := h.votes.RecallVote(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// HandleListComments returns an answer's comments, oldest first.
//
// HTTP: GET /api/answers/{id}/comments
func (h *AnswerHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByCommentable(r.Context(), model.AnswerTarget(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreateComment posts a comment on an answer.
//
// HTTP: POST /api/answers/{id}/comments {"body"} (RequireAuth)
func (h *AnswerHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, model.AnswerTarget(chi.URLParam(r, "id")), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
