package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
	"github.com/FreakyLetsFail/uni-swipe/internal/config"
	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS_DevelopmentAllowsAllOrigins(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
	handler := middleware.CORS(cfg, "development", zap.NewNop())(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/subjects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"explicit origin allowed", []string{"https://uni-swipe.de"}, "https://uni-swipe.de", true},
		{"explicit origin rejected", []string{"https://uni-swipe.de"}, "https://evil.example", false},
		{"no origins denies all", nil, "https://uni-swipe.de", false},
		{"wildcard allows all", []string{"*"}, "https://anything.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.CORSConfig{AllowedOrigins: tt.origins, AllowedMethods: []string{"GET"}}
			handler := middleware.CORS(cfg, "production", zap.NewNop())(okHandler)

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/subjects", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "GET")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	handler := middleware.SecurityHeaders(cfg)(okHandler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("X-XSS-Protection"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swipe", nil))
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	handler := rl.LimitByIP(okHandler)

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3}, zap.NewNop())
	handler := rl.LimitByIP(okHandler)

	var limited *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = w
		}
	}

	require.NotNil(t, limited, "some requests should be rate limited")
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	var apiErr domain.APIError
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&apiErr))
	assert.Equal(t, domain.ErrorTypeRateLimited, apiErr.Type)
}

func TestRateLimiter_Exemptions(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"10.0.0.1"},
		WhitelistPaths:    []string{"/metrics", "/health/*"},
	}, zap.NewNop())
	handler := rl.LimitByIP(okHandler)

	requests := []func() *http.Request{
		func() *http.Request { return httptest.NewRequest(http.MethodGet, "/metrics", nil) },
		func() *http.Request { return httptest.NewRequest(http.MethodGet, "/health/ready", nil) },
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
			req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
			return req
		},
	}
	for _, build := range requests {
		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, build())
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimiter_AuthenticatedUsersGetOwnBudget(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 10,
	}, zap.NewNop())
	handler := rl.Limit(okHandler)
	userCtx := &auth.UserContext{UserID: uuid.New(), Role: auth.RoleAuthenticated}

	ok := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req = req.WithContext(auth.WithUserContext(context.Background(), userCtx))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			ok++
		}
	}
	assert.Greater(t, ok, 1)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := middleware.Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var apiErr domain.APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&apiErr))
	assert.Equal(t, domain.ErrorTypeInternal, apiErr.Type)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestLogging_PropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusTeapot), entry.ContextMap()["status_code"])
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/api/v1/universities/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/universities/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type fakeSessions bool

func (f fakeSessions) HasSession(*http.Request) bool { return bool(f) }

func TestRouteGuard(t *testing.T) {
	tests := []struct {
		name     string
		session  bool
		path     string
		wantCode int
		wantLoc  string
	}{
		{"protected without session", false, "/swipe", http.StatusFound, "/login?redirectTo=%2Fswipe"},
		{"nested protected without session", false, "/matches/12", http.StatusFound, "/login?redirectTo=%2Fmatches%2F12"},
		{"protected with session", true, "/profile", http.StatusOK, ""},
		{"login with session", true, "/login", http.StatusFound, "/swipe"},
		{"register without session", false, "/register", http.StatusOK, ""},
		{"landing with session", true, "/", http.StatusFound, "/swipe"},
		{"landing without session", false, "/", http.StatusOK, ""},
		{"public page", false, "/terms", http.StatusOK, ""},
		{"api skipped", false, "/api/v1/profile", http.StatusOK, ""},
		{"assets skipped", false, "/_next/static/app.js", http.StatusOK, ""},
		{"sibling of swipe is public", false, "/swipe-tips", http.StatusOK, ""},
		{"sibling of profile is public", false, "/profiles", http.StatusOK, ""},
		{"sibling of debug is public", false, "/debugging", http.StatusOK, ""},
		{"sibling of login with session", true, "/login-help", http.StatusOK, ""},
		{"sibling of register with session", true, "/registered", http.StatusOK, ""},
		{"nested auth page with session", true, "/reset-password/confirm", http.StatusFound, "/swipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RouteGuard(fakeSessions(tt.session))(okHandler)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
		})
	}
}
