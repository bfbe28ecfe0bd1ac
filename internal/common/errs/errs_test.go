package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfAndHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   Kind
		status int
	}{
		{NotFound("part not found"), KindNotFound, http.StatusNotFound},
		{InvalidArgument("invalid status %q", "shipped"), KindInvalidArgument, http.StatusBadRequest},
		{Insufficient("not enough stock"), KindInsufficient, http.StatusBadRequest},
		{Conflict("invoice already exists"), KindConflict, http.StatusConflict},
		{Unauthenticated("invalid credentials"), KindUnauthenticated, http.StatusUnauthorized},
		{Internal(errors.New("dial tcp: refused"), "storage unavailable"), KindInternal, http.StatusInternalServerError},
		{errors.New("plain error"), KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.kind {
			t.Fatalf("KindOf(%v) = %d, want %d", c.err, got, c.kind)
		}
		if got := HTTPStatus(c.err); got != c.status {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.status)
		}
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("Error 1045: Access denied for user")
	err := Internal(cause, "storage error")

	if Message(err) != "storage error" {
		t.Fatalf("expected sanitized message, got %q", Message(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved for logging")
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("issue part: %w", Conflict("duplicate"))
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict kind through wrapping")
	}
}
