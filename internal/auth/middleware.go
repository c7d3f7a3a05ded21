package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/logging"
)

// Middleware rejects requests without a valid bearer token and stores the
// verified identity in the context. Browsers cannot set headers on a
// WebSocket upgrade, so the token may also arrive as ?token=.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				unauthorized(w)
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				logging.FromCtx(r.Context()).InfoContext(r.Context(),
					"Rejected bearer token",
					slog.String("error", err.Error()),
				)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
