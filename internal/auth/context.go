package auth

import (
	"context"

	"github.com/google/uuid"
)

const (
	// RoleAuthenticated is the role claim of signed-in users
	RoleAuthenticated = "authenticated"
	// RoleService marks requests authenticated with the admin API key
	RoleService = "service"
)

// SystemUserID identifies API key callers
var SystemUserID = uuid.Nil

// UserContext holds authenticated user information
type UserContext struct {
	UserID uuid.UUID
	Email  string
	Role   string
	// AccessToken is the caller's bearer token, forwarded to the identity provider
	AccessToken string
}

// IsService reports whether the request was authenticated with the admin API key
func (u *UserContext) IsService() bool {
	return u.Role == RoleService
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}
