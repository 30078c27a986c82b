package handlers

import (
	"net/http"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type BillHandler struct {
	Service  *services.BillService
	Receipts *services.ReceiptService
	audit    auditor
}

func NewBillHandler(s *services.BillService, receipts *services.ReceiptService, audit *services.AuditService) *BillHandler {
	return &BillHandler{Service: s, Receipts: receipts, audit: auditor{audit}}
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBillRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	bill, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "bill", bill.ID, "created %s bill %q for %s", bill.Type, bill.Name, bill.TotalAmount.StringFixed(2))
	utils.JSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	bills, err := h.Service.List(r.Context(), models.BillFilter{
		Type:   models.BillType(q.Get("type")),
		Status: ledger.Status(q.Get("status")),
		From:   from,
		To:     to,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bills)
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	bill, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.UpdateBillRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	bill, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "update", "bill", id, "updated bill %d", id)
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "delete", "bill", id, "deleted bill %d", id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "bill deleted"})
}

func (h *BillHandler) AddInstallment(w http.ResponseWriter, r *http.Request) {
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
	bill, err := h.Service.AddInstallment(r.Context(), id, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "installment_add", "bill", id, "recorded %s on bill %d", req.Amount.StringFixed(2), id)
	utils.JSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) UpdateInstallment(w http.ResponseWriter, r *http.Request) {
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
	bill, err := h.Service.UpdateInstallment(r.Context(), id, installmentID, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "installment_update", "bill", id, "changed installment %d on bill %d to %s", installmentID, id, req.Amount.StringFixed(2))
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) DeleteInstallment(w http.ResponseWriter, r *http.Request) {
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
	bill, err := h.Service.DeleteInstallment(r.Context(), id, installmentID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "installment_delete", "bill", id, "removed installment %d from bill %d", installmentID, id)
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	receipt, err := h.Receipts.BillReceipt(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	attachment(w, "application/pdf", receipt.Filename, receipt.Data)
}
