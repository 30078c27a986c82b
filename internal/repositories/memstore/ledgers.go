package memstore

import (
	"context"
	"sort"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
)

// account is the ledger half shared by bills and payments.
type account interface {
	acc() *ledger.Account
	deleted() bool
}

type billRow struct{ *models.Bill }

func (b billRow) acc() *ledger.Account { return &b.Account }
func (b billRow) deleted() bool        { return b.DeletedAt != nil }

type paymentRow struct{ *models.Payment }

func (p paymentRow) acc() *ledger.Account { return &p.Account }
func (p paymentRow) deleted() bool        { return p.DeletedAt != nil }

// ledgerOps implements the installment half of AccountStore over one table.
type ledgerOps struct {
	s      *Store
	entity string
	lookup func(id int) (account, bool)
	all    func() []account
}

func (o ledgerOps) live(id int) (account, error) {
	row, ok := o.lookup(id)
	if !ok || row.deleted() {
		return nil, apperrors.NotFound(o.entity, id)
	}
	return row, nil
}

func (o ledgerOps) Lock(_ context.Context, id int) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	_, err := o.live(id)
	return err
}

func (o ledgerOps) SaveTotals(_ context.Context, id int, acc *ledger.Account) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	row, ok := o.lookup(id)
	if !ok {
		return nil
	}
	a := row.acc()
	a.TotalAmount, a.PaidAmount, a.DueAmount, a.Status = acc.TotalAmount, acc.PaidAmount, acc.DueAmount, acc.Status
	return nil
}

func (o ledgerOps) InsertInstallment(_ context.Context, ownerID int, in *ledger.Installment) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if err := o.s.fail(o.entity + "s.insert_installment"); err != nil {
		return err
	}
	row, err := o.live(ownerID)
	if err != nil {
		return err
	}
	in.ID = o.s.nextID(o.entity + "_installments")
	in.CreatedAt = o.s.now()
	a := row.acc()
	a.Installments = append(a.Installments, *in)
	sortInstallments(a.Installments)
	return nil
}

func (o ledgerOps) UpdateInstallment(_ context.Context, ownerID int, in *ledger.Installment) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	row, ok := o.lookup(ownerID)
	if !ok {
		return apperrors.NotFound("installment", in.ID)
	}
	a := row.acc()
	for i := range a.Installments {
		if a.Installments[i].ID == in.ID {
			a.Installments[i].Amount = in.Amount
			a.Installments[i].PaidDate = in.PaidDate
			a.Installments[i].Notes = in.Notes
			sortInstallments(a.Installments)
			return nil
		}
	}
	return apperrors.NotFound("installment", in.ID)
}

func (o ledgerOps) DeleteInstallment(_ context.Context, ownerID, installmentID int) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	row, ok := o.lookup(ownerID)
	if !ok {
		return apperrors.NotFound("installment", installmentID)
	}
	a := row.acc()
	for i := range a.Installments {
		if a.Installments[i].ID == installmentID {
			a.Installments = append(a.Installments[:i:i], a.Installments[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("installment", installmentID)
}

// Reconcile re-sums every row, soft-deleted ones included, like the SQL version.
func (o ledgerOps) Reconcile(_ context.Context) (int64, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	var n int64
	for _, row := range o.all() {
		a := row.acc()
		if !a.Consistent() {
			a.Recompute()
			n++
		}
	}
	return n, nil
}

func sortInstallments(in []ledger.Installment) {
	sort.SliceStable(in, func(i, j int) bool {
		if !in[i].PaidDate.Equal(in[j].PaidDate) {
			return in[i].PaidDate.Before(in[j].PaidDate)
		}
		return in[i].ID < in[j].ID
	})
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// Bills implements services.BillStore.
type Bills struct {
	ledgerOps
}

func (s *Store) Bills() *Bills {
	return &Bills{ledgerOps{
		s:      s,
		entity: "bill",
		lookup: func(id int) (account, bool) {
			b, ok := s.d.bills[id]
			if !ok {
				return nil, false
			}
			return billRow{b}, true
		},
		all: func() []account {
			out := make([]account, 0, len(s.d.bills))
			for _, b := range s.d.bills {
				out = append(out, billRow{b})
			}
			return out
		},
	}}
}

func (r *Bills) Create(_ context.Context, b *models.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("bills.create"); err != nil {
		return err
	}
	b.ID = r.s.nextID("bills")
	b.CreatedAt, b.UpdatedAt = r.s.now(), r.s.now()
	if b.Installments == nil {
		b.Installments = []ledger.Installment{}
	}
	r.s.d.bills[b.ID] = cloneBill(b)
	return nil
}

func (r *Bills) Get(_ context.Context, id int) (*models.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.d.bills[id]
	if !ok || b.DeletedAt != nil {
		return nil, apperrors.NotFound("bill", id)
	}
	return cloneBill(b), nil
}

func (r *Bills) List(_ context.Context, f models.BillFilter) ([]*models.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Bill{}
	for _, b := range r.s.d.bills {
		if b.DeletedAt != nil ||
			(f.Type != "" && b.Type != f.Type) ||
			(f.Status != "" && b.Status != f.Status) ||
			!inRange(b.Date, f.From, f.To) {
			continue
		}
		out = append(out, cloneBill(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Bills) Update(_ context.Context, b *models.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.bills[b.ID]
	if !ok || cur.DeletedAt != nil {
		return apperrors.NotFound("bill", b.ID)
	}
	cur.Name, cur.Date, cur.CustomerID, cur.Notes = b.Name, b.Date, b.CustomerID, b.Notes
	cur.TotalAmount, cur.PaidAmount, cur.DueAmount, cur.Status = b.TotalAmount, b.PaidAmount, b.DueAmount, b.Status
	cur.UpdatedAt = r.s.now()
	return nil
}

func (r *Bills) SoftDelete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.d.bills[id]
	if !ok || b.DeletedAt != nil {
		return apperrors.NotFound("bill", id)
	}
	now := r.s.now()
	b.DeletedAt = &now
	return nil
}

// Corrupt overwrites a bill's stored totals without touching installments.
func (r *Bills) Corrupt(id int, acc ledger.Account) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.d.bills[id]; ok {
		b.TotalAmount, b.PaidAmount, b.DueAmount, b.Status = acc.TotalAmount, acc.PaidAmount, acc.DueAmount, acc.Status
	}
}

// Payments implements services.PaymentStore.
type Payments struct {
	ledgerOps
}

func (s *Store) Payments() *Payments {
	return &Payments{ledgerOps{
		s:      s,
		entity: "payment",
		lookup: func(id int) (account, bool) {
			p, ok := s.d.payments[id]
			if !ok {
				return nil, false
			}
			return paymentRow{p}, true
		},
		all: func() []account {
			out := make([]account, 0, len(s.d.payments))
			for _, p := range s.d.payments {
				out = append(out, paymentRow{p})
			}
			return out
		},
	}}
}

func (r *Payments) Create(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payments.create"); err != nil {
		return err
	}
	for _, other := range r.s.d.payments {
		if other.ReceiptCode == p.ReceiptCode {
			return apperrors.BusinessRule("receipt code %s already exists", p.ReceiptCode)
		}
	}
	p.ID = r.s.nextID("payments")
	p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
	if p.Installments == nil {
		p.Installments = []ledger.Installment{}
	}
	r.s.d.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *Payments) Get(_ context.Context, id int) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.payments[id]
	if !ok || p.DeletedAt != nil {
		return nil, apperrors.NotFound("payment", id)
	}
	return clonePayment(p), nil
}

func (r *Payments) List(_ context.Context, f models.PaymentFilter) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.s.d.payments {
		if p.DeletedAt != nil ||
			(f.PaymentType != "" && p.PaymentType != f.PaymentType) ||
			(f.Status != "" && p.Status != f.Status) ||
			(f.LoadID != nil && (p.LoadID == nil || *p.LoadID != *f.LoadID)) ||
			!inRange(p.PaymentDate, f.From, f.To) {
			continue
		}
		out = append(out, clonePayment(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Payments) ListByLoad(_ context.Context, loadID int) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.s.d.payments {
		if p.DeletedAt == nil && p.LoadID != nil && *p.LoadID == loadID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Payments) Update(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payments.update"); err != nil {
		return err
	}
	cur, ok := r.s.d.payments[p.ID]
	if !ok || cur.DeletedAt != nil {
		return apperrors.NotFound("payment", p.ID)
	}
	cur.Payer, cur.PayerID, cur.Payee, cur.PayeeID, cur.DriverID = p.Payer, p.PayerID, p.Payee, p.PayeeID, p.DriverID
	cur.VehicleType, cur.PlateNo, cur.FromLocation, cur.ToLocation = p.VehicleType, p.PlateNo, p.FromLocation, p.ToLocation
	cur.PaymentDate, cur.Notes = p.PaymentDate, p.Notes
	cur.TotalAmount, cur.PaidAmount, cur.DueAmount, cur.Status = p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status
	cur.UpdatedAt = r.s.now()
	return nil
}

func (r *Payments) SetRelated(_ context.Context, id, relatedID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payments.set_related"); err != nil {
		return err
	}
	p, ok := r.s.d.payments[id]
	if !ok || p.DeletedAt != nil {
		return apperrors.NotFound("payment", id)
	}
	p.RelatedPaymentID = intPtr(relatedID)
	return nil
}

func (r *Payments) SoftDelete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.payments[id]
	if !ok || p.DeletedAt != nil {
		return apperrors.NotFound("payment", id)
	}
	now := r.s.now()
	p.DeletedAt = &now
	return nil
}

// Count reports how many payments exist, soft-deleted ones included.
func (r *Payments) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.d.payments)
}

// Corrupt overwrites a payment's stored totals without touching installments.
func (r *Payments) Corrupt(id int, acc ledger.Account) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.d.payments[id]; ok {
		p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status = acc.TotalAmount, acc.PaidAmount, acc.DueAmount, acc.Status
	}
}
