package models

import (
	"encoding/json"
	"time"

	"fleet-backend/internal/ledger"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentVehicleAcquisition PaymentType = "vehicle-acquisition"
	PaymentDriverRental       PaymentType = "driver-rental"
)

// Payment is a ledger entry tied to the rental business. Acquisition and
// rental legs of one rental transaction point at each other through
// RelatedPaymentID.
type Payment struct {
	ID               int         `json:"id"`
	ReceiptCode      string      `json:"receipt_code"`
	PaymentType      PaymentType `json:"payment_type"`
	Payer            string      `json:"payer"`
	PayerID          *int        `json:"payer_id,omitempty"`
	Payee            string      `json:"payee"`
	PayeeID          *int        `json:"payee_id,omitempty"`
	CompanyID        *int        `json:"company_id,omitempty"`
	DriverID         *int        `json:"driver_id,omitempty"`
	VehicleID        *int        `json:"vehicle_id,omitempty"`
	LoadID           *int        `json:"load_id,omitempty"`
	RelatedPaymentID *int        `json:"related_payment_id,omitempty"`
	VehicleType      string      `json:"vehicle_type"`
	PlateNo          string      `json:"plate_no"`
	FromLocation     string      `json:"from_location"`
	ToLocation       string      `json:"to_location"`
	PaymentDate      time.Time   `json:"payment_date"`
	Notes            string      `json:"notes"`
	ledger.Account
	Related   *PaymentSummary `json:"related_payment,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"-"`
}

// MarshalJSON writes the ledger totals as total_amount, total_paid and total_due.
func (p Payment) MarshalJSON() ([]byte, error) {
	type plain Payment
	return json.Marshal(struct {
		plain
		TotalAmount  decimal.Decimal      `json:"total_amount"`
		TotalPaid    decimal.Decimal      `json:"total_paid"`
		TotalDue     decimal.Decimal      `json:"total_due"`
		Status       ledger.Status        `json:"status"`
		Installments []ledger.Installment `json:"installments"`
	}{plain(p), p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status, installmentsOrEmpty(p.Installments)})
}

// Summary condenses a payment for embedding in other responses.
func (p *Payment) Summary() PaymentSummary {
	return PaymentSummary{
		ID:               p.ID,
		ReceiptCode:      p.ReceiptCode,
		PaymentType:      p.PaymentType,
		Payer:            p.Payer,
		Payee:            p.Payee,
		Amount:           p.TotalAmount,
		Paid:             p.PaidAmount,
		Due:              p.DueAmount,
		Status:           p.Status,
		RelatedPaymentID: p.RelatedPaymentID,
	}
}

type PaymentSummary struct {
	ID               int             `json:"id"`
	ReceiptCode      string          `json:"receipt_code"`
	PaymentType      PaymentType     `json:"payment_type"`
	Payer            string          `json:"payer"`
	Payee            string          `json:"payee"`
	Amount           decimal.Decimal `json:"amount"`
	Paid             decimal.Decimal `json:"paid"`
	Due              decimal.Decimal `json:"due"`
	Status           ledger.Status   `json:"status"`
	RelatedPaymentID *int            `json:"related_payment_id,omitempty"`
}

type PaymentFilter struct {
	PaymentType PaymentType
	Status      ledger.Status
	LoadID      *int
	From        *time.Time
	To          *time.Time
}

type CreatePaymentRequest struct {
	PaymentType  PaymentType     `json:"payment_type" validate:"required,oneof=vehicle-acquisition driver-rental"`
	Payer        string          `json:"payer" validate:"required,max=200"`
	PayerID      *int            `json:"payer_id"`
	Payee        string          `json:"payee" validate:"required,max=200"`
	PayeeID      *int            `json:"payee_id"`
	CompanyID    *int            `json:"company_id"`
	DriverID     *int            `json:"driver_id"`
	VehicleID    *int            `json:"vehicle_id"`
	LoadID       *int            `json:"load_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaymentDate  string          `json:"payment_date"`
	VehicleType  string          `json:"vehicle_type"`
	PlateNo      string          `json:"plate_no"`
	FromLocation string          `json:"from_location"`
	ToLocation   string          `json:"to_location"`
	Notes        string          `json:"notes"`
}

type UpdatePaymentRequest struct {
	Payer        *string          `json:"payer" validate:"omitempty,max=200"`
	Payee        *string          `json:"payee" validate:"omitempty,max=200"`
	TotalAmount  *decimal.Decimal `json:"total_amount"`
	PaymentDate  *string          `json:"payment_date"`
	VehicleType  *string          `json:"vehicle_type"`
	PlateNo      *string          `json:"plate_no"`
	FromLocation *string          `json:"from_location"`
	ToLocation   *string          `json:"to_location"`
	Notes        *string          `json:"notes"`
}
