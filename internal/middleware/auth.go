// Package middleware provides HTTP middleware: session authentication
// and request logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/splitpot/splitpot/internal/auth"
	"github.com/splitpot/splitpot/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// accountKey is the context key for the authenticated account id.
	accountKey contextKey = "account"
	// emailKey is the context key for the authenticated email.
	emailKey contextKey = "email"
)

// Account extracts the verified account id from the context. Returns
// empty if the request was not authenticated.
func Account(ctx context.Context) models.Account {
	account, _ := ctx.Value(accountKey).(models.Account)
	return account
}

// Email extracts the authenticated email from the context.
func Email(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// RequireAuth validates the Bearer token on every request and stores
// the verified account id and email in the request context. Requests
// without a valid token are rejected with 401.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, auth.ErrMissingToken)
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				unauthorized(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, models.Account(claims.Account))
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
