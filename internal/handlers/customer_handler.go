package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type CustomerHandler struct {
	Service *services.CustomerService
	audit   auditor
}

func NewCustomerHandler(s *services.CustomerService, audit *services.AuditService) *CustomerHandler {
	return &CustomerHandler{Service: s, audit: auditor{audit}}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	customer, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "customer", customer.ID, "created customer %s", customer.Name)
	utils.JSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	customer, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customers)
}
