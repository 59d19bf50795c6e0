package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raman247365/Note-app/internal/httputil"
)

func TestRequireAuth(t *testing.T) {
	tokens, err := NewJWTService([]byte("middleware-test-secret"))
	require.NoError(t, err)
	middleware := NewMiddleware(tokens)

	userID := uuid.New()
	validToken, err := tokens.CreateToken(userID, "alice@example.com", time.Hour)
	require.NoError(t, err)
	expiredToken, err := tokens.CreateToken(userID, "alice@example.com", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantCode   string
	}{
		{"missing header", "", httputil.CodeMissingAuth},
		{"not bearer", "Basic abc123", httputil.CodeInvalidAuthHeader},
		{"bearer without token", "Bearer", httputil.CodeInvalidAuthHeader},
		{"garbage token", "Bearer not-a-token", httputil.CodeInvalidToken},
		{"expired token", "Bearer " + expiredToken, httputil.CodeTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.False(t, nextCalled, "handler must not run for a rejected request")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		var gotUserID uuid.UUID
		var gotEmail string
		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = GetUserIDFromContext(r.Context())
			gotEmail, _ = GetUserEmailFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, gotUserID)
		assert.Equal(t, "alice@example.com", gotEmail)
	})
}

func TestRequireAuthRejectsTokenSignedElsewhere(t *testing.T) {
	tokens, err := NewJWTService([]byte("middleware-test-secret"))
	require.NoError(t, err)
	middleware := NewMiddleware(tokens)

	foreign, err := NewJWTService([]byte("some-other-secret"))
	require.NoError(t, err)
	foreignToken, err := foreign.CreateToken(uuid.New(), "mallory@example.com", time.Hour)
	require.NoError(t, err)

	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer "+foreignToken)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetUserIDFromContext(req.Context())
	assert.False(t, ok)
}
