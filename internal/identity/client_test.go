package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*identity.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := identity.NewClient(identity.Config{
		URL:             srv.URL,
		AnonKey:         "anon-key",
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}, zap.NewNop())
	return client, srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithPassword_Success(t *testing.T) {
	userID := uuid.New()
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "anna@example.de", body["email"])

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token":  "access",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"token_type":    "bearer",
			"user":          map[string]interface{}{"id": userID, "email": "anna@example.de"},
		})
	})

	session, err := client.SignInWithPassword(context.Background(), "anna@example.de", "geheim123")

	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	require.NotNil(t, session.User)
	assert.Equal(t, userID, session.User.ID)
}

func TestSignInWithPassword_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]interface{}
		want   identity.ErrorKind
	}{
		{
			name:   "email not confirmed",
			status: http.StatusBadRequest,
			body:   map[string]interface{}{"code": 400, "error_code": "email_not_confirmed", "msg": "Email not confirmed"},
			want:   identity.KindEmailNotConfirmed,
		},
		{
			name:   "invalid credentials",
			status: http.StatusBadRequest,
			body:   map[string]interface{}{"code": "invalid_credentials", "message": "Invalid login credentials"},
			want:   identity.KindInvalidCredentials,
		},
		{
			name:   "legacy invalid grant",
			status: http.StatusBadRequest,
			body:   map[string]interface{}{"error": "invalid_grant", "error_description": "Invalid login credentials"},
			want:   identity.KindInvalidCredentials,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   map[string]interface{}{"msg": "slow down"},
			want:   identity.KindRateLimited,
		},
		{
			name:   "message text is not used",
			status: http.StatusBadRequest,
			body:   map[string]interface{}{"msg": "Email not confirmed"},
			want:   identity.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.SignInWithPassword(context.Background(), "a@b.de", "pw")

			require.Error(t, err)
			assert.Equal(t, tt.want, identity.KindOf(err))
			var ie *identity.Error
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.status, ie.Status)
		})
	}
}

func TestSignUp_ConfirmationPending(t *testing.T) {
	userID := uuid.New()
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Anna", data["full_name"])

		writeJSON(w, http.StatusOK, map[string]interface{}{"id": userID, "email": "anna@example.de"})
	})

	result, err := client.SignUp(context.Background(), "anna@example.de", "geheim123", map[string]interface{}{"full_name": "Anna"})

	require.NoError(t, err)
	assert.Nil(t, result.Session)
	require.NotNil(t, result.User)
	assert.Equal(t, userID, result.User.ID)
}

func TestSignUp_AutoConfirmed(t *testing.T) {
	userID := uuid.New()
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "access",
			"user":         map[string]interface{}{"id": userID, "email": "anna@example.de"},
		})
	})

	result, err := client.SignUp(context.Background(), "anna@example.de", "geheim123", nil)

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Equal(t, userID, result.User.ID)
}

func TestSignUp_UserAlreadyExists(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"code": 422, "error_code": "user_already_exists"})
	})

	_, err := client.SignUp(context.Background(), "anna@example.de", "geheim123", nil)

	assert.Equal(t, identity.KindUserAlreadyExists, identity.KindOf(err))
}

func TestGetUser_SendsBearerToken(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"code": 401, "error_code": "bad_jwt"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": uuid.New(), "email": "anna@example.de"})
	})

	user, err := client.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.de", user.Email)

	_, err = client.GetUser(context.Background(), "stale")
	assert.Equal(t, identity.KindSessionExpired, identity.KindOf(err))
}

func TestRefreshSession_InvalidGrantMeansExpired(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid_grant"})
	})

	_, err := client.RefreshSession(context.Background(), "old")

	assert.Equal(t, identity.KindSessionExpired, identity.KindOf(err))
}

func TestCircuitBreaker_OpensOnOutage(t *testing.T) {
	var calls int32
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		err := client.Recover(context.Background(), "anna@example.de")
		assert.Equal(t, identity.KindUnavailable, identity.KindOf(err))
	}

	err := client.Recover(context.Background(), "anna@example.de")
	assert.Equal(t, identity.KindUnavailable, identity.KindOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must not reach the provider")
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	var calls int32
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error_code": "invalid_credentials"})
	})

	for i := 0; i < 5; i++ {
		_, err := client.SignInWithPassword(context.Background(), "a@b.de", "wrong")
		assert.Equal(t, identity.KindInvalidCredentials, identity.KindOf(err))
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, identity.UserMessage(identity.KindEmailNotConfirmed), "nicht bestätigt")
	assert.Contains(t, identity.UserMessage(identity.KindInvalidCredentials), "Ungültige Anmeldedaten")
	assert.Contains(t, identity.UserMessage(identity.KindUnknown), "unerwarteter Fehler")
	assert.Equal(t, http.StatusConflict, identity.KindUserAlreadyExists.HTTPStatus())
	assert.Equal(t, "email_not_confirmed", identity.KindEmailNotConfirmed.String())
}
