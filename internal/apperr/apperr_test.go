package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs_MatchesCodeBeforeKind(t *testing.T) {
	if !errors.Is(ErrEventFull, ErrConflict) {
		t.Fatal("expected EVENT_FULL to match the conflict kind")
	}
	if errors.Is(ErrEventFull, ErrDuplicateRequest) {
		t.Fatal("expected EVENT_FULL not to match DUPLICATE_REQUEST")
	}
	if !errors.Is(fmt.Errorf("request booking: %w", ErrEventFull), ErrEventFull) {
		t.Fatal("expected wrapped EVENT_FULL to match itself")
	}
	if errors.Is(NotFound("event %s not found", "e1"), ErrConflict) {
		t.Fatal("expected not-found not to match conflict")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "plain", err: errors.New("boom"), want: KindInternal},
		{name: "validation", err: Validation("bad"), want: KindValidation},
		{name: "wrapped forbidden", err: fmt.Errorf("ctx: %w", Forbidden("nope")), want: KindForbidden},
		{name: "sentinel", err: ErrInvalidTransition, want: KindConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := &Error{Kind: KindInternal, Message: "load event", Cause: errors.New("connection reset")}
	if got := err.Error(); got != "load event: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(err, err.Cause) {
		t.Fatal("expected Unwrap to expose the cause")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantMessage string
		wantCode    string
	}{
		{name: "coded conflict", err: fmt.Errorf("accept: %w", ErrEventFull), wantMessage: "Event is full", wantCode: "EVENT_FULL"},
		{name: "kind only", err: NotFound("event not found"), wantMessage: "event not found", wantCode: "NOT_FOUND"},
		{name: "validation", err: Validation("title is required"), wantMessage: "title is required", wantCode: "VALIDATION_FAILED"},
		{name: "storage failure", err: errors.New("pq: connection refused"), wantMessage: "internal server error", wantCode: "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, code := Describe(tc.err)
			if msg != tc.wantMessage || code != tc.wantCode {
				t.Fatalf("expected (%q, %q), got (%q, %q)", tc.wantMessage, tc.wantCode, msg, code)
			}
		})
	}
}
