package handler

import (
	"net/http"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// Get godoc
// @Summary Get own profile
// @Description Returns the caller's profile; a missing profile is created on first access
// @Tags Profile
// @Produce json
// @Success 200 {object} domain.ProfileDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetCurrent(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Update godoc
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "Profile"
// @Success 200 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profileService.UpdateCurrent(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
