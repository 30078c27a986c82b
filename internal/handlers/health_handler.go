package handlers

import (
	"net/http"

	"fleet-backend/internal/health"
	"fleet-backend/pkg/utils"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth is the liveness probe. It touches no dependency.
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth fails while PostgreSQL is unreachable.
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Ready(r.Context())
	utils.JSON(w, statusCode(report), report)
}

func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Detailed(r.Context())
	utils.JSON(w, statusCode(report), report)
}

// degraded still serves traffic
func statusCode(report health.Report) int {
	if report.Status == health.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
