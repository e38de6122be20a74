package handler

import (
	"net/http"
	"strings"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

var matchCategories = map[string]bool{"": true, "all": true, "bachelor": true, "master": true, "phd": true}

type MatchHandler struct {
	matchService *service.MatchService
	logger       *zap.Logger
}

func NewMatchHandler(matchService *service.MatchService, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{matchService: matchService, logger: logger}
}

// List godoc
// @Summary List matches
// @Description The caller's matches, newest first
// @Tags Matches
// @Produce json
// @Param search query string false "Substring of university name, location or subject name"
// @Param category query string false "Degree category" Enums(all, bachelor, master, phd)
// @Success 200 {array} domain.MatchDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /matches [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.MatchFilter{
		Search:   r.URL.Query().Get("search"),
		Category: strings.ToLower(r.URL.Query().Get("category")),
	}
	if !matchCategories[filter.Category] {
		respondWithError(w, http.StatusBadRequest, "Invalid category: must be one of all, bachelor, master, phd")
		return
	}

	matches, err := h.matchService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to list matches")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

// Create godoc
// @Summary Match a university
// @Description Records a right-swipe. Repeating it returns the existing match with status 200.
// @Tags Matches
// @Accept json
// @Produce json
// @Param request body domain.CreateMatchRequest true "University"
// @Success 201 {object} domain.CreateMatchResponse
// @Success 200 {object} domain.CreateMatchResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.matchService.Create(r.Context(), req.UniversityID)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to create match")
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	respondJSON(w, status, resp)
}

// Delete godoc
// @Summary Remove a match
// @Tags Matches
// @Param id path int true "Match ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /matches/{id} [delete]
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := h.matchService.Remove(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to delete match")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
