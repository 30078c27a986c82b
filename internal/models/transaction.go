package models

import (
	"strings"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// CompanyRef selects an existing company by ID or describes one to find-or-create by name.
type CompanyRef struct {
	ID  *int
	New *NewCompany
}

// DriverRef selects an existing driver by ID or describes one to find-or-create by iqama id.
type DriverRef struct {
	ID  *int
	New *NewDriver
}

// RentalTransactionInput is the typed form of a rental transaction request.
type RentalTransactionInput struct {
	Company         CompanyRef
	Driver          DriverRef
	VehicleID       *int
	VehicleType     string
	PlateNo         string
	AcquisitionCost decimal.Decimal
	RentalAmount    decimal.Decimal
	FromLocation    string
	ToLocation      string
	AcquisitionDate time.Time
	RentalDate      time.Time
	Notes           string
}

// RentalTransactionRequest is the flat JSON body accepted by POST /transactions/rental.
type RentalTransactionRequest struct {
	CompanyID       *int   `json:"company_id"`
	CompanyName     string `json:"company_name"`
	CompanyPhone    string `json:"company_phone"`
	CompanyEmail    string `json:"company_email"`
	CompanyAddress  string `json:"company_address"`
	CompanyCRNumber string `json:"company_cr_number"`

	DriverID            *int   `json:"driver_id"`
	DriverName          string `json:"driver_name"`
	DriverIqamaID       string `json:"driver_iqama_id"`
	DriverPhone         string `json:"driver_phone"`
	DriverLicenseNumber string `json:"driver_license_number"`
	DriverNationality   string `json:"driver_nationality"`

	VehicleID       *int             `json:"vehicle_id"`
	VehicleType     string           `json:"vehicle_type"`
	PlateNo         string           `json:"plate_no"`
	AcquisitionCost *decimal.Decimal `json:"acquisition_cost"`
	RentalAmount    *decimal.Decimal `json:"rental_amount"`
	FromLocation    string           `json:"from_location"`
	ToLocation      string           `json:"to_location"`
	AcquisitionDate string           `json:"acquisition_date"`
	RentalDate      string           `json:"rental_date"`
	Notes           string           `json:"notes"`
}

// Input converts the flat body into a RentalTransactionInput. Company and
// driver selection is checked first, then the scalar fields; every missing
// scalar is named in a single error.
func (r *RentalTransactionRequest) Input(now time.Time) (*RentalTransactionInput, error) {
	in := &RentalTransactionInput{
		VehicleID:    r.VehicleID,
		VehicleType:  strings.TrimSpace(r.VehicleType),
		PlateNo:      strings.TrimSpace(r.PlateNo),
		FromLocation: strings.TrimSpace(r.FromLocation),
		ToLocation:   strings.TrimSpace(r.ToLocation),
		Notes:        r.Notes,
	}

	switch {
	case r.CompanyID != nil:
		in.Company.ID = r.CompanyID
	case strings.TrimSpace(r.CompanyName) != "":
		in.Company.New = &NewCompany{
			Name:     strings.TrimSpace(r.CompanyName),
			Phone:    r.CompanyPhone,
			Email:    r.CompanyEmail,
			Address:  r.CompanyAddress,
			CRNumber: r.CompanyCRNumber,
		}
	default:
		return nil, apperrors.FieldValidation(map[string]string{"company_name": "company_id or company_name is required"})
	}

	if r.DriverID != nil {
		in.Driver.ID = r.DriverID
	} else {
		var missing []string
		if strings.TrimSpace(r.DriverName) == "" {
			missing = append(missing, "driver_name")
		}
		if strings.TrimSpace(r.DriverIqamaID) == "" {
			missing = append(missing, "driver_iqama_id")
		}
		if len(missing) > 0 {
			return nil, apperrors.MissingFields(missing...)
		}
		in.Driver.New = &NewDriver{
			Name:          strings.TrimSpace(r.DriverName),
			IqamaID:       strings.TrimSpace(r.DriverIqamaID),
			Phone:         r.DriverPhone,
			LicenseNumber: r.DriverLicenseNumber,
			Nationality:   r.DriverNationality,
		}
	}

	var missing []string
	if in.VehicleType == "" {
		missing = append(missing, "vehicle_type")
	}
	if r.AcquisitionCost == nil {
		missing = append(missing, "acquisition_cost")
	}
	if in.FromLocation == "" {
		missing = append(missing, "from_location")
	}
	if in.ToLocation == "" {
		missing = append(missing, "to_location")
	}
	if r.RentalAmount == nil {
		missing = append(missing, "rental_amount")
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFields(missing...)
	}

	fields := map[string]string{}
	if r.AcquisitionCost.IsNegative() {
		fields["acquisition_cost"] = "must not be negative"
	}
	if r.RentalAmount.IsNegative() {
		fields["rental_amount"] = "must not be negative"
	}
	in.AcquisitionCost = *r.AcquisitionCost
	in.RentalAmount = *r.RentalAmount

	in.AcquisitionDate = now
	if r.AcquisitionDate != "" {
		t, err := timeutil.ParseDate(r.AcquisitionDate)
		if err != nil {
			fields["acquisition_date"] = "must be a valid date"
		}
		in.AcquisitionDate = t
	}
	in.RentalDate = now
	if r.RentalDate != "" {
		t, err := timeutil.ParseDate(r.RentalDate)
		if err != nil {
			fields["rental_date"] = "must be a valid date"
		}
		in.RentalDate = t
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation(fields)
	}
	return in, nil
}

// EntityRef identifies a resolved company or driver in a transaction summary.
type EntityRef struct {
	ID      int    `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

type LoadRef struct {
	ID           int        `json:"id"`
	RentalCode   string     `json:"rental_code"`
	FromLocation string     `json:"from_location"`
	ToLocation   string     `json:"to_location"`
	Status       LoadStatus `json:"status"`
}

// RentalTransactionResult summarises a created rental transaction.
type RentalTransactionResult struct {
	Company            EntityRef      `json:"company"`
	Driver             EntityRef      `json:"driver"`
	Load               LoadRef        `json:"load"`
	AcquisitionPayment PaymentSummary `json:"acquisition_payment"`
	RentalPayment      PaymentSummary `json:"rental_payment"`
}

// RentalTransaction is a load with both of its payment legs.
type RentalTransaction struct {
	Load               *Load    `json:"load"`
	AcquisitionPayment *Payment `json:"acquisition_payment"`
	RentalPayment      *Payment `json:"rental_payment"`
}

type UpdateRentalTransactionRequest struct {
	VehicleType     *string          `json:"vehicle_type"`
	PlateNo         *string          `json:"plate_no"`
	FromLocation    *string          `json:"from_location"`
	ToLocation      *string          `json:"to_location"`
	AcquisitionCost *decimal.Decimal `json:"acquisition_cost"`
	RentalAmount    *decimal.Decimal `json:"rental_amount"`
	AcquisitionDate *string          `json:"acquisition_date"`
	RentalDate      *string          `json:"rental_date"`
	Notes           *string          `json:"notes"`
}
