package service

import (
	"context"

	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
)

// currentUser returns the authenticated end user; API key callers have no user
func currentUser(ctx context.Context) (*auth.UserContext, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok || userCtx.IsService() {
		return nil, ErrUserContextRequired
	}
	return userCtx, nil
}
