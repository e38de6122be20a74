package handler

import (
	"net/http"

	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

type RecommendationHandler struct {
	recommendationService *service.RecommendationService
	logger                *zap.Logger
}

func NewRecommendationHandler(recommendationService *service.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService, logger: logger}
}

// List godoc
// @Summary Get recommended universities
// @Description Ranks unmatched universities by the number of favorite subjects they offer, filtered by the profile's degree type and location. Without favorites all universities are ranked by rating.
// @Tags Recommendations
// @Produce json
// @Success 200 {object} domain.RecommendationsResponse
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /recommendations [get]
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.recommendationService.ForCurrentUser(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to compute recommendations")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
