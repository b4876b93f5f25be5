package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware creates HTTP middleware that gates requests on a valid bearer
// token. It extracts the token from the Authorization header, resolves it
// through the Service, and either attaches the account and raw token to the
// request context or rejects with a uniform 401 before the downstream
// handler runs. There is no retry and no refresh; a rejected caller must
// log in again.
func Middleware(svc *Service, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := BearerToken(r)
			if token == "" {
				writeUnauthorized(w)
				return
			}

			acct, err := svc.Resolve(r.Context(), token)
			if err != nil {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				writeUnauthorized(w)
				return
			}

			slog.Debug("authentication succeeded",
				"account", acct.ID,
				"path", r.URL.Path,
			)

			ctx := SetAccount(r.Context(), acct)
			ctx = SetToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns empty string if the header is missing, uses another scheme, or
// carries no token.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"type":"unauthorized","message":"authentication required"}}`))
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}
