// Package middleware provides HTTP middleware for authenticating API callers.
package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// callerKey is the context key for storing the authenticated caller.
const callerKey ContextKey = "caller"

// TokenValidator checks a bearer token and returns the caller it belongs to.
type TokenValidator interface {
	ValidateToken(tokenString string) (string, error)
}

// StaticTokens validates tokens against a fixed set, keyed by token with the
// caller name as value.
type StaticTokens map[string]string

// ValidateToken compares the token against every configured token in
// constant time.
func (s StaticTokens) ValidateToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token string is empty")
	}
	caller := ""
	for token, name := range s {
		if subtle.ConstantTimeCompare([]byte(token), []byte(tokenString)) == 1 {
			caller = name
		}
	}
	if caller == "" {
		return "", fmt.Errorf("invalid token")
	}
	return caller, nil
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the
// caller to the request context. Requests matching skip pass through untouched.
func AuthMiddleware(validator TokenValidator, skip func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip != nil && skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			caller, err := validator.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCaller extracts the authenticated caller from the request context.
func GetCaller(r *http.Request) (string, bool) {
	caller, ok := r.Context().Value(callerKey).(string)
	return caller, ok && caller != ""
}
