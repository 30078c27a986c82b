// Package memstore is an in-memory implementation of the service store
// interfaces. It mirrors the PostgreSQL repositories closely enough for
// service and handler tests: soft deletes, uniqueness rules, code counter
// seeding and transaction rollback all behave the same way.
package memstore

import (
	"context"
	"sync"
	"time"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
)

type data struct {
	bills     map[int]*models.Bill
	payments  map[int]*models.Payment
	companies map[int]*models.Company
	drivers   map[int]*models.Driver
	vehicles  map[int]*models.Vehicle
	customers map[int]*models.Customer
	loads     map[int]*models.Load
	users     map[int]*models.User
	logs      []*models.ActionLog
	counters  map[string]int64
	seq       map[string]int
}

func newData() data {
	return data{
		bills:     map[int]*models.Bill{},
		payments:  map[int]*models.Payment{},
		companies: map[int]*models.Company{},
		drivers:   map[int]*models.Driver{},
		vehicles:  map[int]*models.Vehicle{},
		customers: map[int]*models.Customer{},
		loads:     map[int]*models.Load{},
		users:     map[int]*models.User{},
		counters:  map[string]int64{},
		seq:       map[string]int{},
	}
}

func (d data) clone() data {
	c := newData()
	for k, v := range d.bills {
		c.bills[k] = cloneBill(v)
	}
	for k, v := range d.payments {
		c.payments[k] = clonePayment(v)
	}
	for k, v := range d.companies {
		cp := *v
		c.companies[k] = &cp
	}
	for k, v := range d.drivers {
		cp := *v
		c.drivers[k] = &cp
	}
	for k, v := range d.vehicles {
		cp := *v
		c.vehicles[k] = &cp
	}
	for k, v := range d.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range d.loads {
		cp := *v
		c.loads[k] = &cp
	}
	for k, v := range d.users {
		cp := *v
		c.users[k] = &cp
	}
	c.logs = append(c.logs, d.logs...)
	for k, v := range d.counters {
		c.counters[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

// Store holds every table. Use the accessor methods for the per-entity stores.
type Store struct {
	mu       sync.Mutex
	d        data
	failures map[string]error
	now      func() time.Time
}

func New() *Store {
	return &Store{d: newData(), failures: map[string]error{}, now: time.Now}
}

// FailOn makes the named operation (e.g. "payments.create") return err until cleared with nil.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// fail must be called with s.mu held.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

func (s *Store) nextID(table string) int {
	s.d.seq[table]++
	return s.d.seq[table]
}

type txKey struct{}

// WithinTx snapshots every table and restores the snapshot if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneInstallments(in []ledger.Installment) []ledger.Installment {
	out := make([]ledger.Installment, len(in))
	copy(out, in)
	return out
}

func cloneBill(b *models.Bill) *models.Bill {
	cp := *b
	cp.Installments = cloneInstallments(b.Installments)
	return &cp
}

func clonePayment(p *models.Payment) *models.Payment {
	cp := *p
	cp.Installments = cloneInstallments(p.Installments)
	cp.Related = nil
	return &cp
}

func intPtr(v int) *int { return &v }
