// Package identity is a client for the hosted GoTrue-compatible identity provider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/metrics"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	opSignUp  = "sign_up"
	opSignIn  = "sign_in"
	opRefresh = "refresh"
	opSignOut = "sign_out"
	opGetUser = "get_user"
	opRecover = "recover"

	breakerName = "identity-provider"
	maxBodySize = 1 << 20
)

// User is the provider's user record
type User struct {
	ID               uuid.UUID              `json:"id"`
	Email            string                 `json:"email"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// Session is an issued token pair
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// SignUpResult carries the created user and, when no email confirmation is required, a session
type SignUpResult struct {
	User    *User
	Session *Session
}

// Config configures the client
type Config struct {
	URL             string
	AnonKey         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	// RedirectURL is where confirmation and recovery emails link to
	RedirectURL string
	HTTPClient  *http.Client
}

// Client calls the identity provider's REST API. All calls share one circuit breaker.
type Client struct {
	baseURL     string
	anonKey     string
	redirectURL string
	http        *http.Client
	cb          *gobreaker.CircuitBreaker[[]byte]
	logger      *zap.Logger
}

// NewClient creates a client for the provider at cfg.URL
func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	openTimeout := cfg.BreakerTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only outages count against the breaker; rejected credentials are normal answers
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return KindOf(err) != KindUnavailable
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Identity provider circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:     cfg.AnonKey,
		redirectURL: cfg.RedirectURL,
		http:        httpClient,
		cb:          cb,
		logger:      logger,
	}
}

// BreakerState reports the circuit breaker state (closed, half-open, open)
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// SignUp registers a user. Session is nil while the email address awaits confirmation.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*SignUpResult, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}
	query := url.Values{}
	if c.redirectURL != "" {
		query.Set("redirect_to", c.redirectURL)
	}

	raw, err := c.do(ctx, opSignUp, http.MethodPost, "/signup", query, "", body)
	if err != nil {
		return nil, err
	}

	// With autoconfirm the provider answers with a session, otherwise with the bare user
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, c.decodeError(opSignUp, err)
	}
	if session.AccessToken != "" {
		return &SignUpResult{User: session.User, Session: &session}, nil
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, c.decodeError(opSignUp, err)
	}
	return &SignUpResult{User: &user}, nil
}

// SignInWithPassword exchanges credentials for a session
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}
	return c.session(ctx, opSignIn, query, body)
}

// RefreshSession exchanges a refresh token for a new session
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}
	return c.session(ctx, opRefresh, query, body)
}

func (c *Client) session(ctx context.Context, op string, query url.Values, body interface{}) (*Session, error) {
	raw, err := c.do(ctx, op, http.MethodPost, "/token", query, "", body)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, c.decodeError(op, err)
	}
	if session.AccessToken == "" {
		return nil, &Error{Op: op, Kind: KindUnknown, Status: http.StatusOK, Message: "response carried no access token"}
	}
	return &session, nil
}

// SignOut revokes the session belonging to accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, opSignOut, http.MethodPost, "/logout", nil, accessToken, nil)
	return err
}

// GetUser returns the user that owns accessToken
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	raw, err := c.do(ctx, opGetUser, http.MethodGet, "/user", nil, accessToken, nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, c.decodeError(opGetUser, err)
	}
	return &user, nil
}

// Recover sends a password reset email
func (c *Client) Recover(ctx context.Context, email string) error {
	query := url.Values{}
	if c.redirectURL != "" {
		query.Set("redirect_to", c.redirectURL)
	}
	_, err := c.do(ctx, opRecover, http.MethodPost, "/recover", query, "", map[string]string{"email": email})
	return err
}

func (c *Client) decodeError(op string, err error) error {
	return &Error{Op: op, Kind: KindUnknown, Message: "malformed response", Err: err}
}

// do sends one request through the circuit breaker and returns the response body of a 2xx answer
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, body interface{}) ([]byte, error) {
	raw, err := c.cb.Execute(func() ([]byte, error) {
		return c.send(ctx, op, method, path, query, token, body)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.IdentityRequests.WithLabelValues(op, "rejected").Inc()
		return nil, &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	if err != nil {
		metrics.IdentityRequests.WithLabelValues(op, KindOf(err).String()).Inc()
		return nil, err
	}

	metrics.IdentityRequests.WithLabelValues(op, "success").Inc()
	return raw, nil
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, token string, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Op: op, Kind: KindUnknown, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindUnknown, Err: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Identity provider request failed",
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil, &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Op: op, Kind: KindUnavailable, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(op, resp.StatusCode, raw)
	}
	return raw, nil
}

// errorBody covers both the current and the legacy OAuth error shapes
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	OAuthError       string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func parseError(op string, status int, raw []byte) *Error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	code := body.ErrorCode
	if code == "" && len(body.Code) > 0 {
		// Newer providers put the string code in "code"; older ones put the HTTP status there
		var s string
		if json.Unmarshal(body.Code, &s) == nil {
			code = s
		}
	}

	message := body.Msg
	for _, m := range []string{body.Message, body.ErrorDescription, body.OAuthError} {
		if message == "" {
			message = m
		}
	}

	return &Error{
		Op:      op,
		Kind:    classify(op, status, code, body.OAuthError),
		Status:  status,
		Code:    code,
		Message: message,
	}
}
