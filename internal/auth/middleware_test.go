package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
	"github.com/FreakyLetsFail/uni-swipe/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestMiddleware(apiKey string) *auth.Middleware {
	cfg := &config.Config{
		Identity: *identityConfig(),
		ApiKey:   config.ApiKeyConfig{Value: apiKey},
	}
	return auth.NewMiddleware(cfg, zap.NewNop())
}

func captureHandler(called *bool, captured **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate_WithBearerToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, validClaims(userID), jwt.SigningMethodHS256, []byte(testSecret))

	var called bool
	var userCtx *auth.UserContext
	handler := createTestMiddleware("").Authenticate(captureHandler(&called, &userCtx))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	require.NotNil(t, userCtx)
	assert.Equal(t, userID, userCtx.UserID)
}

func TestMiddleware_Authenticate_WithCookie(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, validClaims(userID), jwt.SigningMethodHS256, []byte(testSecret))

	var called bool
	var userCtx *auth.UserContext
	handler := createTestMiddleware("").Authenticate(captureHandler(&called, &userCtx))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, userCtx)
	assert.Equal(t, userID, userCtx.UserID)
}

func TestMiddleware_Authenticate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"invalid token", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var userCtx *auth.UserContext
			handler := createTestMiddleware("").Authenticate(captureHandler(&called, &userCtx))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, called)
		})
	}
}

func TestMiddleware_RequireAPIKey(t *testing.T) {
	mw := createTestMiddleware("admin-key-123")

	var called bool
	var userCtx *auth.UserContext
	handler := mw.RequireAPIKey(captureHandler(&called, &userCtx))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/universities/1/image", nil)
	req.Header.Set("x-api-key", "admin-key-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, userCtx)
	assert.True(t, userCtx.IsService())

	called = false
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/universities/1/image", nil)
	req.Header.Set("x-api-key", "wrong")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestMiddleware_RequireAPIKey_DisabledWithoutKey(t *testing.T) {
	var called bool
	var userCtx *auth.UserContext
	handler := createTestMiddleware("").RequireAPIKey(captureHandler(&called, &userCtx))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/universities/1/image", nil)
	req.Header.Set("x-api-key", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestMiddleware_HasSession(t *testing.T) {
	mw := createTestMiddleware("")
	token := signToken(t, validClaims(uuid.New()), jwt.SigningMethodHS256, []byte(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/swipe", nil)
	assert.False(t, mw.HasSession(req))

	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	assert.True(t, mw.HasSession(req))
}

func TestFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := auth.FromContext(req.Context())
	assert.False(t, ok)
}
