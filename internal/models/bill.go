package models

import (
	"encoding/json"
	"time"

	"fleet-backend/internal/ledger"

	"github.com/shopspring/decimal"
)

type BillType string

const (
	BillIncome  BillType = "income"
	BillExpense BillType = "expense"
)

// Bill is an income or expense entry unrelated to rentals (salaries, fuel).
type Bill struct {
	ID         int       `json:"id"`
	Type       BillType  `json:"type"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	CustomerID *int      `json:"customer_id,omitempty"`
	Notes      string    `json:"notes"`
	ledger.Account
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// MarshalJSON writes the ledger totals as totalAmount, paidAmount and dueAmount.
func (b Bill) MarshalJSON() ([]byte, error) {
	type plain Bill
	return json.Marshal(struct {
		plain
		TotalAmount  decimal.Decimal      `json:"totalAmount"`
		PaidAmount   decimal.Decimal      `json:"paidAmount"`
		DueAmount    decimal.Decimal      `json:"dueAmount"`
		Status       ledger.Status        `json:"status"`
		Installments []ledger.Installment `json:"installments"`
	}{plain(b), b.TotalAmount, b.PaidAmount, b.DueAmount, b.Status, installmentsOrEmpty(b.Installments)})
}

type BillFilter struct {
	Type   BillType
	Status ledger.Status
	From   *time.Time
	To     *time.Time
}

type CreateBillRequest struct {
	Type        BillType        `json:"type" validate:"required,oneof=income expense"`
	Name        string          `json:"name" validate:"required,max=200"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Date        string          `json:"date" validate:"required"`
	CustomerID  *int            `json:"customer_id" validate:"omitempty,gt=0"`
	Notes       string          `json:"notes"`
}

type UpdateBillRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
	Date        *string          `json:"date"`
	CustomerID  *int             `json:"customer_id" validate:"omitempty,gt=0"`
	Notes       *string          `json:"notes"`
}

func installmentsOrEmpty(in []ledger.Installment) []ledger.Installment {
	if in == nil {
		return []ledger.Installment{}
	}
	return in
}

// InstallmentRequest is the body for adding or editing an installment on a bill or payment.
type InstallmentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	PaidDate string          `json:"paid_date"`
	Notes    string          `json:"notes" validate:"max=500"`
}
