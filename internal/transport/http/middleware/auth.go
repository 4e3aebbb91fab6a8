package middleware

import (
	"net/http"
	"strings"

	"p9ify/internal/domain/auth"
	"p9ify/internal/requestctx"
	"p9ify/internal/transport/http/api"
)

// Auth attaches the token subject to the request context when a valid
// bearer token is present. It never rejects on its own.
func Auth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !svc.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := svc.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a verified subject. With auth
// disabled every request passes.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc.Enabled() {
				if _, ok := requestctx.GetSubject(r.Context()); !ok {
					api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}
