package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedHandler(t *testing.T, validator TokenValidator, skip func(*http.Request) bool) (http.Handler, *string) {
	t.Helper()
	seen := new(string)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r)
		*seen = caller
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(validator, skip)(next), seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler, seen := newProtectedHandler(t, StaticTokens{"secret-token-123": "ops"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer secret-token-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", *seen)
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	handler, _ := newProtectedHandler(t, StaticTokens{"tok": "ops"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
	req.Header.Set("Authorization", "bearer tok")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic tok"},
		{"no token", "Bearer"},
		{"extra parts", "Bearer tok extra"},
		{"unknown token", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, seen := newProtectedHandler(t, StaticTokens{"tok": "ops"}, nil)

			req := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, *seen)
		})
	}
}

func TestAuthMiddleware_Skip(t *testing.T) {
	skipHealth := func(r *http.Request) bool { return r.URL.Path == "/health" }
	handler, _ := newProtectedHandler(t, StaticTokens{"tok": "ops"}, skipHealth)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaticTokens_ValidateToken(t *testing.T) {
	tokens := StaticTokens{"a": "first", "b": "second"}

	caller, err := tokens.ValidateToken("b")
	require.NoError(t, err)
	assert.Equal(t, "second", caller)

	_, err = tokens.ValidateToken("")
	assert.Error(t, err)

	_, err = tokens.ValidateToken("c")
	assert.Error(t, err)
}

func TestGetCaller_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetCaller(req)
	assert.False(t, ok)
}
