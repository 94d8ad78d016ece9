package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/queryai/queryai/internal/models"
	"github.com/queryai/queryai/internal/telemetry"
)

const version = "1.0.0"

// HealthHandler handles GET /health with optional dependency checks
type HealthHandler struct {
	store *telemetry.Store
}

func NewHealthHandler(store *telemetry.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Use a short timeout so health checks never block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			checks["database"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
