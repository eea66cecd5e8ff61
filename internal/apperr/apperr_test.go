package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{InvalidTransition("cannot"), http.StatusConflict},
		{Conflict("raced"), http.StatusConflict},
		{Unexpected(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("naked error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestClientMessageRedactsUnexpected(t *testing.T) {
	if msg := ClientMessage(Unexpected(errors.New("pq: secret table missing"))); msg != "internal error" {
		t.Errorf("unexpected errors must be redacted, got %q", msg)
	}
	if msg := ClientMessage(Validation("price must be positive")); msg != "price must be positive" {
		t.Errorf("validation messages pass through, got %q", msg)
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Conflict("offer already decided"))
	if !IsKind(wrapped, KindConflict) {
		t.Errorf("kind must survive fmt.Errorf wrapping")
	}
	if KindOf(errors.New("plain")) != KindUnexpected {
		t.Errorf("plain errors default to unexpected")
	}
}
