package handlers

import (
	"log"
	"net/http"

	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
	audit   auditor
}

func NewAuthHandler(s *services.UserService, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{Service: s, audit: auditor{audit}}
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	authResp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		log.Printf("[Auth] failed login for %q from %s", req.Email, middleware.ClientIP(r))
		utils.WriteError(w, err)
		return
	}

	h.audit.record(r, "login", "user", authResp.User.ID, "%s logged in", authResp.User.Email)
	utils.JSON(w, http.StatusOK, authResp)
}
