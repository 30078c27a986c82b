package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

// FleetHandler serves the reference entities: companies, drivers and vehicles.
type FleetHandler struct {
	Companies *services.CompanyService
	Drivers   *services.DriverService
	Vehicles  *services.VehicleService
	audit     auditor
}

func NewFleetHandler(companies *services.CompanyService, drivers *services.DriverService, vehicles *services.VehicleService, audit *services.AuditService) *FleetHandler {
	return &FleetHandler{Companies: companies, Drivers: drivers, Vehicles: vehicles, audit: auditor{audit}}
}

func (h *FleetHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req models.NewCompany
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	c, err := h.Companies.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "company", c.ID, "created company %s %s", c.Code, c.Name)
	utils.JSON(w, http.StatusCreated, c)
}

func (h *FleetHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := h.Companies.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *FleetHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	c, err := h.Companies.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req models.NewDriver
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	d, err := h.Drivers.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "driver", d.ID, "created driver %s %s", d.Code, d.Name)
	utils.JSON(w, http.StatusCreated, d)
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Drivers.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	d, err := h.Drivers.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVehicleRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	v, err := h.Vehicles.Create(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.audit.record(r, "create", "vehicle", v.ID, "registered vehicle %s", v.PlateNo)
	utils.JSON(w, http.StatusCreated, v)
}

func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.Vehicles.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	v, err := h.Vehicles.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, v)
}
