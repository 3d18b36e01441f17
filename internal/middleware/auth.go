package middleware

import (
	"context"
	"net/http"
	"strings"

	"workforce/internal/auth"
	"workforce/internal/authz"
)

type ctxKey int

const ctxKeyCaller ctxKey = iota

// Auth resolves a bearer token into a Caller. Requests without a valid token
// pass through anonymously; handlers decide whether authentication is
// required.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyCaller, authz.Caller{
				UserID: claims.UserID,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCaller(ctx context.Context) (authz.Caller, bool) {
	caller, ok := ctx.Value(ctxKeyCaller).(authz.Caller)
	return caller, ok
}
