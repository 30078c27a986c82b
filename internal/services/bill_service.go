package services

import (
	"context"
	"log"
	"strings"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"
	"fleet-backend/internal/validation"
)

// BillService manages income and expense bills and their installments.
type BillService struct {
	Tx        Transactor
	Bills     BillStore
	Customers CustomerStore

	installments installmentWriter
}

func NewBillService(tx Transactor, bills BillStore, customers CustomerStore) *BillService {
	s := &BillService{Tx: tx, Bills: bills, Customers: customers}
	s.installments = installmentWriter{
		tx:    tx,
		store: bills,
		name:  "bill",
		loadFn: func(ctx context.Context, id int) (*ledger.Account, error) {
			b, err := bills.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &b.Account, nil
		},
	}
	return s
}

func (s *BillService) Create(ctx context.Context, req *models.CreateBillRequest) (*models.Bill, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.TotalAmount.IsNegative() {
		return nil, apperrors.FieldValidation(map[string]string{"totalAmount": "must not be negative"})
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.FieldValidation(map[string]string{"date": "must be a valid date"})
	}
	if req.CustomerID != nil {
		if _, err := s.Customers.Get(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	b := &models.Bill{
		Type:       req.Type,
		Name:       strings.TrimSpace(req.Name),
		Date:       date,
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
		Account:    ledger.NewAccount(req.TotalAmount),
	}
	if err := s.Bills.Create(ctx, b); err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Ledger] bill %d created (%s, %s)", b.ID, b.Type, b.TotalAmount.StringFixed(2))
	return b, nil
}

func (s *BillService) Get(ctx context.Context, id int) (*models.Bill, error) {
	return s.Bills.Get(ctx, id)
}

func (s *BillService) List(ctx context.Context, f models.BillFilter) ([]*models.Bill, error) {
	return s.Bills.List(ctx, f)
}

// Update patches header fields. A total change goes through the ledger so it
// can never fall below what is already paid.
func (s *BillService) Update(ctx context.Context, id int, req *models.UpdateBillRequest) (*models.Bill, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		fields["name"] = "must not be empty"
	}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		fields["totalAmount"] = "must not be negative"
	}
	var date time.Time
	if req.Date != nil {
		t, err := timeutil.ParseDate(*req.Date)
		if err != nil {
			fields["date"] = "must be a valid date"
		}
		date = t
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation(fields)
	}
	if req.CustomerID != nil {
		if _, err := s.Customers.Get(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Bills.Lock(ctx, id); err != nil {
			return err
		}
		b, err := s.Bills.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.TotalAmount != nil {
			if err := b.SetTotal(*req.TotalAmount); err != nil {
				return err
			}
		}
		if req.Name != nil {
			b.Name = strings.TrimSpace(*req.Name)
		}
		if req.Date != nil {
			b.Date = date
		}
		if req.CustomerID != nil {
			b.CustomerID = req.CustomerID
		}
		if req.Notes != nil {
			b.Notes = *req.Notes
		}
		return s.Bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	return s.Bills.Get(ctx, id)
}

// Delete flags the bill as deleted; it disappears from every read.
func (s *BillService) Delete(ctx context.Context, id int) error {
	if err := s.Bills.SoftDelete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Ledger] bill %d deleted", id)
	return nil
}

func (s *BillService) AddInstallment(ctx context.Context, id int, req *models.InstallmentRequest) (*models.Bill, error) {
	if err := s.installments.add(ctx, id, req); err != nil {
		return nil, err
	}
	return s.Bills.Get(ctx, id)
}

func (s *BillService) UpdateInstallment(ctx context.Context, id, installmentID int, req *models.InstallmentRequest) (*models.Bill, error) {
	if err := s.installments.update(ctx, id, installmentID, req); err != nil {
		return nil, err
	}
	return s.Bills.Get(ctx, id)
}

func (s *BillService) DeleteInstallment(ctx context.Context, id, installmentID int) (*models.Bill, error) {
	if err := s.installments.remove(ctx, id, installmentID); err != nil {
		return nil, err
	}
	return s.Bills.Get(ctx, id)
}
