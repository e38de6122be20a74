package handler

import (
	"net/http"

	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

type DebugHandler struct {
	diagnosticsService *service.DiagnosticsService
	logger             *zap.Logger
}

func NewDebugHandler(diagnosticsService *service.DiagnosticsService, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{diagnosticsService: diagnosticsService, logger: logger}
}

// Run godoc
// @Summary Run self-diagnostics
// @Description Reports the caller's stored state and checks favorite writes inside a rolled-back transaction
// @Tags Debug
// @Produce json
// @Success 200 {object} domain.DiagnosticsResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /debug [get]
func (h *DebugHandler) Run(w http.ResponseWriter, r *http.Request) {
	resp, err := h.diagnosticsService.Run(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to run diagnostics")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
