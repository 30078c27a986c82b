package models

import (
	"math"
	"time"

	"fleet-backend/internal/apperrors"

	"github.com/shopspring/decimal"
)

type RentalType string

const (
	RentalPerDay RentalType = "per_day"
	RentalPerJob RentalType = "per_job"
	RentalPerKm  RentalType = "per_km"
)

type LoadStatus string

const (
	LoadPending   LoadStatus = "pending"
	LoadAssigned  LoadStatus = "assigned"
	LoadInTransit LoadStatus = "in-transit"
	LoadCompleted LoadStatus = "completed"
	LoadCancelled LoadStatus = "cancelled"
)

var loadTransitions = map[LoadStatus][]LoadStatus{
	LoadPending:   {LoadAssigned, LoadCancelled},
	LoadAssigned:  {LoadInTransit, LoadCompleted, LoadCancelled},
	LoadInTransit: {LoadCompleted},
}

// CanTransitionTo reports whether the load state machine allows s -> next.
func (s LoadStatus) CanTransitionTo(next LoadStatus) bool {
	for _, allowed := range loadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Load is a rental job: vehicle, optional driver, route and price.
type Load struct {
	ID                int             `json:"id"`
	RentalCode        string          `json:"rental_code"`
	VehicleID         *int            `json:"vehicle_id,omitempty"`
	VehicleType       string          `json:"vehicle_type"`
	PlateNo           string          `json:"plate_no"`
	CompanyID         *int            `json:"company_id,omitempty"`
	DriverID          *int            `json:"driver_id,omitempty"`
	FromLocation      string          `json:"from_location"`
	ToLocation        string          `json:"to_location"`
	RentalType        RentalType      `json:"rental_type"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day"`
	RentalPrice       decimal.Decimal `json:"rental_price"`
	PricePerKm        decimal.Decimal `json:"price_per_km"`
	DistanceKm        decimal.Decimal `json:"distance_km"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	DaysRented        int             `json:"days_rented"`
	RentalAmount      decimal.Decimal `json:"rental_amount"`
	AcquisitionCost   decimal.Decimal `json:"acquisition_cost"`
	Status            LoadStatus      `json:"status"`
	Notes             string          `json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DaysBetween counts started 24h periods between start and end, at least one.
func DaysBetween(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// Price derives DaysRented and RentalAmount from the rental type.
func (l *Load) Price() error {
	switch l.RentalType {
	case RentalPerDay:
		if l.StartDate == nil || l.EndDate == nil {
			return apperrors.MissingFields("start_date", "end_date")
		}
		if l.EndDate.Before(*l.StartDate) {
			return apperrors.FieldValidation(map[string]string{"end_date": "must not be before start_date"})
		}
		if l.RentalPricePerDay.IsNegative() {
			return apperrors.FieldValidation(map[string]string{"rental_price_per_day": "must not be negative"})
		}
		l.DaysRented = DaysBetween(*l.StartDate, *l.EndDate)
		l.RentalAmount = l.RentalPricePerDay.Mul(decimal.NewFromInt(int64(l.DaysRented)))
	case RentalPerJob:
		if l.RentalPrice.IsNegative() {
			return apperrors.FieldValidation(map[string]string{"rental_price": "must not be negative"})
		}
		if l.StartDate != nil && l.EndDate != nil && !l.EndDate.Before(*l.StartDate) {
			l.DaysRented = DaysBetween(*l.StartDate, *l.EndDate)
		}
		l.RentalAmount = l.RentalPrice
	case RentalPerKm:
		if l.PricePerKm.IsNegative() || l.DistanceKm.IsNegative() {
			return apperrors.FieldValidation(map[string]string{"price_per_km": "price and distance must not be negative"})
		}
		l.RentalAmount = l.PricePerKm.Mul(l.DistanceKm)
	default:
		return apperrors.FieldValidation(map[string]string{"rental_type": "must be one of: per_day per_job per_km"})
	}
	return nil
}

type LoadFilter struct {
	Status    LoadStatus
	CompanyID *int
	DriverID  *int
}

type CreateLoadRequest struct {
	VehicleID         *int            `json:"vehicle_id" validate:"omitempty,gt=0"`
	VehicleType       string          `json:"vehicle_type" validate:"required_without=VehicleID"`
	PlateNo           string          `json:"plate_no"`
	CompanyID         *int            `json:"company_id" validate:"omitempty,gt=0"`
	DriverID          *int            `json:"driver_id" validate:"omitempty,gt=0"`
	FromLocation      string          `json:"from_location" validate:"required"`
	ToLocation        string          `json:"to_location" validate:"required"`
	RentalType        RentalType      `json:"rental_type" validate:"required,oneof=per_day per_job per_km"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day"`
	RentalPrice       decimal.Decimal `json:"rental_price"`
	PricePerKm        decimal.Decimal `json:"price_per_km"`
	DistanceKm        decimal.Decimal `json:"distance_km"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	AcquisitionCost   decimal.Decimal `json:"acquisition_cost"`
	Notes             string          `json:"notes"`
}

type AssignDriverRequest struct {
	DriverID int `json:"driver_id" validate:"required,gt=0"`
}
