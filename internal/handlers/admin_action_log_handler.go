package handlers

import (
	"net/http"
	"strconv"

	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type AdminActionLogHandler struct {
	Service *services.AuditService
}

func NewAdminActionLogHandler(s *services.AuditService) *AdminActionLogHandler {
	return &AdminActionLogHandler{Service: s}
}

// ListActionLogs returns the newest action logs, ?limit= up to 500.
func (h *AdminActionLogHandler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.Service.List(r.Context(), limit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}
