package common

import (
	"errors"
	"testing"
)

func TestValidationError_DeterministicRendering(t *testing.T) {
	e := NewValidationError()
	e.Add("name", "can't be blank")
	e.Add("email", "is invalid")
	e.Add("password", "is too short (minimum is 6 characters)")

	want := "validation failed: email is invalid; name can't be blank; password is too short (minimum is 6 characters)"
	if got := e.Error(); got != want {
		t.Fatalf("unexpected rendering:\n got %q\nwant %q", got, want)
	}
}

func TestValidationError_FirstMessagePerFieldWins(t *testing.T) {
	e := NewValidationError()
	e.Add("email", "can't be blank")
	e.Add("email", "is invalid")
	if got := e.Fields["email"]; got != "can't be blank" {
		t.Fatalf("expected first message to win, got %q", got)
	}
}

func TestValidationError_Empty(t *testing.T) {
	e := NewValidationError()
	if !e.Empty() {
		t.Fatalf("fresh error should be empty")
	}
	e.Add("name", "can't be blank")
	if e.Empty() {
		t.Fatalf("error with a field should not be empty")
	}
}

func TestValidationError_MatchesWithAs(t *testing.T) {
	e := NewValidationError()
	e.Add("email", "is invalid")

	var wrapped error = e
	var ve *ValidationError
	if !errors.As(wrapped, &ve) {
		t.Fatalf("errors.As failed to match *ValidationError")
	}
	if ve.Fields["email"] != "is invalid" {
		t.Fatalf("unexpected fields after As: %v", ve.Fields)
	}
}
