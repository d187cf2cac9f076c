package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/handler"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/repository/sqlite"
	"github.com/study-and-research/QnA/internal/service"
)

// testApp mounts the answer and question handlers on a real router
// backed by an in-memory database. Authentication is replaced by a
// middleware that injects the user ID from the X-Test-User header, so
// tests exercise routing, JSON codecs, and status mapping without
// minting tokens.
type testApp struct {
	router   chi.Router
	identity *service.IdentityService
	answers  *service.AnswerService
	question *model.Question
	asker    *model.User
	answerer *model.User
}

type noopMailer struct{}

func (noopMailer) Digest(ctx context.Context, user *model.User) error { return nil }
func (noopMailer) NewAnswer(ctx context.Context, user *model.User, answer *model.Answer) error {
	return nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	identity := service.NewIdentityService(db, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger)
	questions := service.NewQuestionService(db, logger)
	answers := service.NewAnswerService(db, noopMailer{}, logger)
	votes := service.NewVoteService(db, db, logger)
	comments := service.NewCommentService(db, logger)

	answerHandler := handler.NewAnswerHandler(answers, votes, comments, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if uid := req.Header.Get("X-Test-User"); uid != "" {
				req = req.WithContext(auth.ContextWithUserID(req.Context(), uid))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/api/questions/{id}/answers", answerHandler.HandleCreate)
	r.Get("/api/questions/{id}/answers", answerHandler.HandleListByQuestion)
	r.Post("/api/questions/{id}/answers/{answerID}/accept", answerHandler.HandleAccept)
	r.Put("/api/answers/{id}/vote", answerHandler.HandleVote)
	r.Delete("/api/answers/{id}/vote", answerHandler.HandleRecallVote)

	app := &testApp{router: r, identity: identity, answers: answers}

	ctx := context.Background()
	askerResult, err := identity.SignUp(ctx, "asker@example.com", "Asker", "password123")
	require.NoError(t, err)
	answererResult, err := identity.SignUp(ctx, "answerer@example.com", "Answerer", "password123")
	require.NoError(t, err)
	app.asker = askerResult.User
	app.answerer = answererResult.User

	app.question, err = questions.Ask(ctx, app.asker.ID, "How do I test handlers?", "")
	require.NoError(t, err)

	return app
}

func (app *testApp) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	return rr
}

func TestAnswerEndpoints_CreateAndList(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, http.MethodPost, "/api/questions/"+app.question.ID+"/answers",
		app.answerer.ID, `{"body":"try httptest"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created model.Answer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "try httptest", created.Body)
	assert.False(t, created.Accepted)

	rr = app.do(t, http.MethodGet, "/api/questions/"+app.question.ID+"/answers", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list []model.Answer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestAnswerEndpoints_VoteLifecycle(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	answer, err := app.answers.Create(ctx, app.answerer.ID, app.question.ID, "vote on me")
	require.NoError(t, err)

	votePath := "/api/answers/" + answer.ID + "/vote"

	// Upvote by the asker.
	rr := app.do(t, http.MethodPut, votePath, app.asker.ID, `{"value":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var voted model.Answer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&voted))
	assert.Equal(t, 1, voted.Rating)

	// A second vote by the same user is a conflict.
	rr = app.do(t, http.MethodPut, votePath, app.asker.ID, `{"value":-1}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Self-vote is forbidden.
	rr = app.do(t, http.MethodPut, votePath, app.answerer.ID, `{"value":1}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Out-of-range values are rejected before touching the service.
	rr = app.do(t, http.MethodPut, votePath, app.asker.ID, `{"value":5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Recall, then recalling again conflicts.
	rr = app.do(t, http.MethodDelete, votePath, app.asker.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var recalled model.Answer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recalled))
	assert.Equal(t, 0, recalled.Rating)

	rr = app.do(t, http.MethodDelete, votePath, app.asker.ID, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAnswerEndpoints_Accept(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	answer, err := app.answers.Create(ctx, app.answerer.ID, app.question.ID, "accept me")
	require.NoError(t, err)

	acceptPath := "/api/questions/" + app.question.ID + "/answers/" + answer.ID + "/accept"

	// Only the question's author may accept.
	rr := app.do(t, http.MethodPost, acceptPath, app.answerer.ID, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.do(t, http.MethodPost, acceptPath, app.asker.ID, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var accepted model.Answer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))
	assert.True(t, accepted.Accepted)
}

func TestAnswerEndpoints_ErrorShape(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, http.MethodPut, "/api/answers/no-such-answer/vote", app.asker.ID, `{"value":1}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	var errResp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	assert.Equal(t, "not_found", errResp.Error)
	assert.NotEmpty(t, errResp.Message)
}
