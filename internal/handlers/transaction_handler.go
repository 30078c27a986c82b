package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type TransactionHandler struct {
	Service *services.TransactionService
	audit   auditor
}

func NewTransactionHandler(s *services.TransactionService, audit *services.AuditService) *TransactionHandler {
	return &TransactionHandler{Service: s, audit: auditor{audit}}
}

// CreateRental creates the load and both payment legs in one call.
func (h *TransactionHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req models.RentalTransactionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	res, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "rental_transaction", res.Load.ID, "created %s (%s / %s)",
		res.Load.RentalCode, res.AcquisitionPayment.ReceiptCode, res.RentalPayment.ReceiptCode)
	utils.JSON(w, http.StatusCreated, res)
}

// GetRental accepts either the load id or its rental code.
func (h *TransactionHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Service.Get(r.Context(), mux.Vars(r)["idOrCode"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRentalTransactionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	tx, err := h.Service.Update(r.Context(), mux.Vars(r)["idOrCode"], &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "update", "rental_transaction", tx.Load.ID, "updated %s", tx.Load.RentalCode)
	utils.JSON(w, http.StatusOK, tx)
}
