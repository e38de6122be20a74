package handler

import (
	"net/http"

	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
	logger          *zap.Logger
}

func NewFavoriteHandler(favoriteService *service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, logger: logger}
}

// List godoc
// @Summary List favorite subjects
// @Tags Favorites
// @Produce json
// @Success 200 {object} domain.FavoritesResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /favorites [get]
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favoriteService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to list favorites")
		return
	}
	respondJSON(w, http.StatusOK, favorites)
}

// Toggle godoc
// @Summary Toggle a favorite subject
// @Description Adds the subject to the caller's favorites or removes it, and returns the resulting state
// @Tags Favorites
// @Produce json
// @Param subjectId path int true "Subject ID"
// @Success 200 {object} domain.FavoriteToggleResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /favorites/{subjectId}/toggle [post]
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	subjectID, err := int64Param(r, "subjectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}

	resp, err := h.favoriteService.Toggle(r.Context(), subjectID)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to toggle favorite")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
