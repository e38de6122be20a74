package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/FreakyLetsFail/uni-swipe/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName carries the access token for browser page requests
const SessionCookieName = "sb-access-token"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("missing access token")
)

// accessClaims are the claims the identity provider puts into user access tokens
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 access tokens issued by the identity provider
type JWTValidator struct {
	secret   []byte
	audience string
}

// NewJWTValidator creates a validator from the identity configuration
func NewJWTValidator(cfg *config.IdentityConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		audience: cfg.JWTAudience,
	}
}

// ValidateToken validates a token and returns the user it was issued to
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	role := claims.Role
	if role == "" {
		role = RoleAuthenticated
	}

	return &UserContext{
		UserID:      userID,
		Email:       claims.Email,
		Role:        role,
		AccessToken: tokenString,
	}, nil
}

// ExtractToken returns the bearer token of a request, falling back to the session cookie
func ExtractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", fmt.Errorf("%w: invalid authorization header format", ErrInvalidToken)
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrMissingToken
}
