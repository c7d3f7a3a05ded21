package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", "pickup-sports")

	raw, err := tokens.Issue("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", id.UserID)
	}
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", "pickup-sports")

	expired, _ := tokens.Issue("user-1", -time.Minute)
	otherIssuer, _ := NewTokens("secret", "someone-else").Issue("user-1", time.Hour)
	otherSecret, _ := NewTokens("other", "pickup-sports").Issue("user-1", time.Hour)

	for name, raw := range map[string]string{
		"expired":      expired,
		"other issuer": otherIssuer,
		"other secret": otherSecret,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Verify(raw); err == nil {
				t.Fatal("expected verification to fail")
			}
		})
	}

	if _, err := tokens.Issue(" ", time.Hour); err == nil {
		t.Fatal("expected an error for an empty user id")
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("secret", "pickup-sports")
	valid, _ := tokens.Issue("user-1", time.Hour)

	var gotUser string
	h := Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromCtx(r.Context())
		gotUser = id.UserID
	}))

	cases := []struct {
		name   string
		header string
		target string
		code   int
		user   string
	}{
		{name: "no token", target: "/events", code: http.StatusUnauthorized},
		{name: "bearer", header: "Bearer " + valid, target: "/events", code: http.StatusOK, user: "user-1"},
		{name: "wrong scheme", header: "Basic abc", target: "/events", code: http.StatusUnauthorized},
		{name: "query token", target: "/ws?token=" + valid, code: http.StatusOK, user: "user-1"},
		{name: "bad token", header: "Bearer nope", target: "/events", code: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotUser = ""
			r := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tc.code {
				t.Fatalf("expected status %d, got %d", tc.code, w.Code)
			}
			if gotUser != tc.user {
				t.Fatalf("expected user %q, got %q", tc.user, gotUser)
			}
		})
	}
}
