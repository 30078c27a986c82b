package handlers

import (
	"context"
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type LoadHandler struct {
	Service *services.LoadService
	audit   auditor
}

func NewLoadHandler(s *services.LoadService, audit *services.AuditService) *LoadHandler {
	return &LoadHandler{Service: s, audit: auditor{audit}}
}

func (h *LoadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLoadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	load, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "load", load.ID, "created load %s (%s, %s)", load.RentalCode, load.RentalType, load.RentalAmount.StringFixed(2))
	utils.JSON(w, http.StatusCreated, load)
}

func (h *LoadHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryInt(r, "company_id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	driverID, err := queryInt(r, "driver_id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	loads, err := h.Service.List(r.Context(), models.LoadFilter{
		Status:    models.LoadStatus(r.URL.Query().Get("status")),
		CompanyID: companyID,
		DriverID:  driverID,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, loads)
}

func (h *LoadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	load, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, load)
}

func (h *LoadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "delete", "load", id, "deleted load %d", id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "load deleted"})
}

func (h *LoadHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.AssignDriverRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	load, err := h.Service.AssignDriver(r.Context(), id, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "assign_driver", "load", id, "assigned driver %d to %s", req.DriverID, load.RentalCode)
	utils.JSON(w, http.StatusOK, load)
}

func (h *LoadHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "start", h.Service.StartTransit)
}

func (h *LoadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "complete", h.Service.Complete)
}

func (h *LoadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "cancel", h.Service.Cancel)
}

// move runs a body-less state transition.
func (h *LoadHandler) move(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, int) (*models.Load, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	load, err := fn(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, action, "load", id, "%s is now %s", load.RentalCode, load.Status)
	utils.JSON(w, http.StatusOK, load)
}
