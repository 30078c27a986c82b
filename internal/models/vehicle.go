package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleRented      VehicleStatus = "rented"
	VehicleMaintenance VehicleStatus = "maintenance"
)

type Vehicle struct {
	ID              int             `json:"id"`
	PlateNo         string          `json:"plate_no"`
	VehicleType     string          `json:"vehicle_type"`
	Model           string          `json:"model"`
	CompanyID       *int            `json:"company_id,omitempty"`
	Status          VehicleStatus   `json:"status"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	AcquisitionDate *time.Time      `json:"acquisition_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CreateVehicleRequest struct {
	PlateNo         string          `json:"plate_no" validate:"required,max=30"`
	VehicleType     string          `json:"vehicle_type" validate:"required,max=100"`
	Model           string          `json:"model"`
	CompanyID       *int            `json:"company_id" validate:"omitempty,gt=0"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	AcquisitionDate string          `json:"acquisition_date"`
}
