package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/burakmert236/clubscore/common/errors"
)

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*User, error)
}

type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type contextKey struct{}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextKey{}).(*User)
	return user, ok && user != nil
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// Require rejects requests without a valid bearer token.
func Require(v TokenVerifier, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				writeErr(w, r, apperrors.New(apperrors.CodeUnauthorized, "Missing Bearer token"))
				return
			}

			user, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
