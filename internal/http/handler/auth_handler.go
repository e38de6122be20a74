package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
	logger        *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// setSessionCookie stores the access token for the page route guard
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *domain.SessionDTO) {
	if session == nil || session.AccessToken == "" {
		return
	}
	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register godoc
// @Summary Register a new user
// @Description Creates the account, the profile and the initial favorite subjects. When email confirmation is pending no session is returned.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Registration data"
// @Success 201 {object} domain.RegisterResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			respondJSON(w, http.StatusBadRequest, domain.APIError{
				Type:   domain.ErrorTypeValidation,
				Title:  "Validation Error",
				Status: http.StatusBadRequest,
				Detail: "One or more fields failed validation",
				Errors: map[string]string{"favoriteSubjectIds": "Contains unknown subject ids"},
			})
			return
		}
		respondServiceError(w, h.logger, r, err, "Failed to register")
		return
	}

	h.setSessionCookie(w, resp.Session)
	respondJSON(w, http.StatusCreated, resp)
}

// Login godoc
// @Summary Sign in with email and password
// @Description Returns the session and sets the HttpOnly session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.SessionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Email not confirmed"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to sign in")
		return
	}

	h.setSessionCookie(w, session)
	respondJSON(w, http.StatusOK, session)
}

// Refresh godoc
// @Summary Refresh a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RefreshRequest true "Refresh token"
// @Success 200 {object} domain.SessionDTO
// @Failure 401 {object} domain.APIError
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.authService.Refresh(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to refresh session")
		return
	}

	h.setSessionCookie(w, session)
	respondJSON(w, http.StatusOK, session)
}

// Logout godoc
// @Summary Sign out
// @Description Revokes the session and clears the session cookie
// @Tags Auth
// @Success 204
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// The cookie goes regardless of the provider's answer
	h.clearSessionCookie(w)

	if err := h.authService.Logout(r.Context()); err != nil {
		h.logger.Warn("Sign-out at identity provider failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// PasswordReset godoc
// @Summary Request a password reset email
// @Tags Auth
// @Accept json
// @Param request body domain.PasswordResetRequest true "Account email"
// @Success 202
// @Failure 400 {object} domain.APIError
// @Failure 429 {object} domain.APIError
// @Router /auth/password-reset [post]
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), &req); err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to request password reset")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the identity provider's record of the caller
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.MeResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.authService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to load user")
		return
	}
	respondJSON(w, http.StatusOK, me)
}
