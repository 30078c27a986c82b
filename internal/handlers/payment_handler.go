package handlers

import (
	"net/http"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

// PaymentHandler serves acquisition and rental payments, their installments
// and receipts.
type PaymentHandler struct {
	Service  *services.PaymentService
	Receipts *services.ReceiptService
	audit    auditor
}

func NewPaymentHandler(s *services.PaymentService, receipts *services.ReceiptService, audit *services.AuditService) *PaymentHandler {
	return &PaymentHandler{Service: s, Receipts: receipts, audit: auditor{audit}}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "payment", p.ID, "created %s payment %s for %s", p.PaymentType, p.ReceiptCode, p.TotalAmount.StringFixed(2))
	utils.JSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	loadID, err := queryInt(r, "load_id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	payments, err := h.Service.List(r.Context(), models.PaymentFilter{
		PaymentType: models.PaymentType(q.Get("payment_type")),
		Status:      ledger.Status(q.Get("status")),
		LoadID:      loadID,
		From:        from,
		To:          to,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.UpdatePaymentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "update", "payment", id, "updated payment %s", p.ReceiptCode)
	utils.JSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "delete", "payment", id, "deleted payment %d", id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "payment deleted"})
}

func (h *PaymentHandler) AddInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.InstallmentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.Service.AddInstallment(r.Context(), id, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "installment_add", "payment", id, "recorded %s on %s", req.Amount.StringFixed(2), p.ReceiptCode)
	utils.JSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) UpdateInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	installmentID, err := pathID(r, "installmentId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.InstallmentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.Service.UpdateInstallment(r.Context(), id, installmentID, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "installment_update", "payment", id, "changed installment %d on %s to %s", installmentID, p.ReceiptCode, req.Amount.StringFixed(2))
	utils.JSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) DeleteInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	installmentID, err := pathID(r, "installmentId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	p, err := h.Service.DeleteInstallment(r.Context(), id, installmentID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "installment_delete", "payment", id, "removed installment %d from %s", installmentID, p.ReceiptCode)
	utils.JSON(w, http.StatusOK, p)
}

// Receipt streams the PDF receipt, named after the receipt code.
func (h *PaymentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	receipt, err := h.Receipts.PaymentReceipt(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if receipt.ArchiveURL != "" {
		w.Header().Set("X-Archive-URL", receipt.ArchiveURL)
	}
	attachment(w, "application/pdf", receipt.Filename, receipt.Data)
}
