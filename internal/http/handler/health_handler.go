package handler

import (
	"context"
	"net/http"

	"github.com/FreakyLetsFail/uni-swipe/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BreakerProbe exposes a circuit breaker state
type BreakerProbe interface {
	BreakerState() string
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db      *gorm.DB
	catalog func(ctx context.Context) error
	breaker BreakerProbe
	logger  *zap.Logger
}

// NewHealthHandler creates the probe handler. catalog and breaker may be nil.
func NewHealthHandler(db *gorm.DB, catalog func(ctx context.Context) error, breaker BreakerProbe, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, catalog: catalog, breaker: breaker, logger: logger}
}

// Health is the liveness probe
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database pings the database and reports pool statistics
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(r.Context(), h.db)
	if err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// Ready checks every dependency needed to serve traffic. An open identity
// breaker is reported but does not fail readiness, since the catalog stays usable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	if h.catalog != nil {
		if err := h.catalog(r.Context()); err != nil {
			h.logger.Error("Catalog health check failed", zap.Error(err))
			checks["catalog"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["catalog"] = map[string]interface{}{"status": "healthy"}
		}
	}

	if h.breaker != nil {
		state := h.breaker.BreakerState()
		status := "healthy"
		if state != "closed" {
			status = "degraded"
		}
		checks["identity"] = map[string]interface{}{"status": status, "breaker": state}
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{"status": status, "checks": checks})
}
