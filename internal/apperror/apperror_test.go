package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound_IsErrNotFound(t *testing.T) {
	err := NotFound("question", "q-123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should match ErrNotFound via errors.Is")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("NotFound() should not match ErrConflict")
	}
}

func TestNotFound_MessageIncludesResourceAndID(t *testing.T) {
	err := NotFound("answer", "a-42")

	want := "answer not found with id a-42"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationFailed_CarriesField(t *testing.T) {
	err := ValidationFailed("email", "email is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() should match ErrValidation")
	}
	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}

func TestConflict_IsErrConflict(t *testing.T) {
	err := Conflict("you have already voted on this answer")

	if !errors.Is(err, ErrConflict) {
		t.Error("Conflict() should match ErrConflict")
	}
	if err.Error() != "you have already voted on this answer" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestForbidden_IsErrForbidden(t *testing.T) {
	err := Forbidden("only the author can delete this question")

	if !errors.Is(err, ErrForbidden) {
		t.Error("Forbidden() should match ErrForbidden")
	}
}

func TestUnauthenticated_IsErrUnauthenticated(t *testing.T) {
	err := Unauthenticated()

	if !errors.Is(err, ErrUnauthenticated) {
		t.Error("Unauthenticated() should match ErrUnauthenticated")
	}
}

func TestWrapped_SurvivesFmtErrorf(t *testing.T) {
	// Services wrap repository errors with context; errors.Is must still
	// see through to the sentinel.
	inner := NotFound("user", "u-1")
	wrapped := fmt.Errorf("resolving author: %w", inner)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped AppError should still match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should recover the *AppError")
	}
	if appErr.Message != inner.Message {
		t.Errorf("recovered Message = %q, want %q", appErr.Message, inner.Message)
	}
}
