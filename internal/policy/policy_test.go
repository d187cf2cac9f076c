package policy

import (
	"testing"

	"github.com/study-and-research/QnA/internal/model"
)

func TestSignedIn(t *testing.T) {
	if SignedIn("") {
		t.Error("SignedIn(\"\") should be false")
	}
	if !SignedIn("u-123") {
		t.Error("SignedIn with a user ID should be true")
	}
}

func TestIsAuthor(t *testing.T) {
	answer := &model.Answer{ID: "a-1", UserID: "u-author"}

	if !IsAuthor("u-author", answer) {
		t.Error("IsAuthor should be true for the answer's author")
	}
	if IsAuthor("u-other", answer) {
		t.Error("IsAuthor should be false for a different user")
	}
	if IsAuthor("", answer) {
		t.Error("IsAuthor should be false for an anonymous caller")
	}
}

func TestIsAuthor_Question(t *testing.T) {
	question := &model.Question{ID: "q-1", UserID: "u-asker"}

	if !IsAuthor("u-asker", question) {
		t.Error("IsAuthor should work for questions too")
	}
}
