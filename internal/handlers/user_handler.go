package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type UserHandler struct {
	Service *services.UserService
	audit   auditor
}

func NewUserHandler(s *services.UserService, audit *services.AuditService) *UserHandler {
	return &UserHandler{Service: s, audit: auditor{audit}}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	user, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "user", user.ID, "created %s user %s", user.Role, user.Email)
	utils.JSON(w, http.StatusCreated, user)
}

// ListUsers returns all users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "delete", "user", id, "deleted user %d", id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
