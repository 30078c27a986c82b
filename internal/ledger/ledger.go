// Package ledger implements the installment ledger shared by bills and payments.
//
// An Account carries a total and a list of dated installments. Paid, due and
// status are derived: every mutation re-sums the installments from scratch, so
// the stored figures can never drift from the installment list.
package ledger

import (
	"time"

	"fleet-backend/internal/apperrors"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

type Installment struct {
	ID        int             `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidDate  time.Time       `json:"paid_date"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

// Account carries the derived totals of a bill or payment. It has no JSON
// form of its own; each owner names the totals in its MarshalJSON.
type Account struct {
	TotalAmount  decimal.Decimal `json:"-"`
	PaidAmount   decimal.Decimal `json:"-"`
	DueAmount    decimal.Decimal `json:"-"`
	Status       Status          `json:"-"`
	Installments []Installment   `json:"-"`
}

// NewAccount returns an unpaid account with no installments.
func NewAccount(total decimal.Decimal) Account {
	a := Account{TotalAmount: total, Installments: []Installment{}}
	a.Recompute()
	return a
}

// DeriveStatus applies the three-way rule: nothing paid is unpaid, paid
// reaching the total is paid, anything in between is partial.
func DeriveStatus(paid, total decimal.Decimal) Status {
	switch {
	case paid.IsZero():
		return StatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	default:
		return StatusPartial
	}
}

// Sum adds up installment amounts.
func Sum(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, in := range installments {
		total = total.Add(in.Amount)
	}
	return total
}

// Recompute refreshes paid, due and status from the installment list.
func (a *Account) Recompute() {
	a.PaidAmount = Sum(a.Installments)
	a.DueAmount = a.TotalAmount.Sub(a.PaidAmount)
	a.Status = DeriveStatus(a.PaidAmount, a.TotalAmount)
}

// Consistent reports whether the stored derived fields match the installments.
func (a *Account) Consistent() bool {
	paid := Sum(a.Installments)
	return a.PaidAmount.Equal(paid) &&
		a.DueAmount.Equal(a.TotalAmount.Sub(paid)) &&
		a.Status == DeriveStatus(paid, a.TotalAmount)
}

func (a *Account) find(id int) int {
	for i := range a.Installments {
		if a.Installments[i].ID == id {
			return i
		}
	}
	return -1
}

// Installment returns the installment with the given id.
func (a *Account) Installment(id int) (Installment, bool) {
	i := a.find(id)
	if i < 0 {
		return Installment{}, false
	}
	return a.Installments[i], true
}

func validateEntry(amount decimal.Decimal, paidDate time.Time) error {
	fields := map[string]string{}
	if !amount.IsPositive() {
		fields["amount"] = "must be greater than 0"
	}
	if paidDate.IsZero() {
		fields["paid_date"] = "must be a valid date"
	}
	if len(fields) > 0 {
		return apperrors.FieldValidation(fields)
	}
	return nil
}

// AddInstallment appends an installment after checking it neither lands on a
// fully paid account nor exceeds what is still due. The account is untouched
// when an error is returned.
func (a *Account) AddInstallment(in Installment) error {
	if err := validateEntry(in.Amount, in.PaidDate); err != nil {
		return err
	}
	paid := Sum(a.Installments)
	if paid.GreaterThanOrEqual(a.TotalAmount) {
		return apperrors.BusinessRule("already fully paid")
	}
	remaining := a.TotalAmount.Sub(paid)
	if in.Amount.GreaterThan(remaining) {
		return apperrors.BusinessRule("amount %s exceeds remaining due %s", in.Amount.StringFixed(2), remaining.StringFixed(2))
	}

	a.Installments = append(a.Installments, in)
	a.Recompute()
	return nil
}

// UpdateInstallment replaces an installment's amount, date and notes. The
// capacity check excludes the installment being edited.
func (a *Account) UpdateInstallment(id int, amount decimal.Decimal, paidDate time.Time, notes string) error {
	if err := validateEntry(amount, paidDate); err != nil {
		return err
	}
	idx := a.find(id)
	if idx < 0 {
		return apperrors.NotFound("installment", id)
	}

	others := Sum(a.Installments).Sub(a.Installments[idx].Amount)
	if others.Add(amount).GreaterThan(a.TotalAmount) {
		return apperrors.BusinessRule("amount %s exceeds remaining due %s", amount.StringFixed(2), a.TotalAmount.Sub(others).StringFixed(2))
	}

	a.Installments[idx].Amount = amount
	a.Installments[idx].PaidDate = paidDate
	a.Installments[idx].Notes = notes
	a.Recompute()
	return nil
}

// RemoveInstallment deletes an installment. Removal is always allowed, even
// on a fully paid account.
func (a *Account) RemoveInstallment(id int) error {
	idx := a.find(id)
	if idx < 0 {
		return apperrors.NotFound("installment", id)
	}
	a.Installments = append(a.Installments[:idx:idx], a.Installments[idx+1:]...)
	a.Recompute()
	return nil
}

// SetTotal changes the total. A total below what has already been paid is rejected.
func (a *Account) SetTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return apperrors.FieldValidation(map[string]string{"total_amount": "must not be negative"})
	}
	paid := Sum(a.Installments)
	if total.LessThan(paid) {
		return apperrors.BusinessRule("total %s is below the amount already paid %s", total.StringFixed(2), paid.StringFixed(2))
	}
	a.TotalAmount = total
	a.Recompute()
	return nil
}
