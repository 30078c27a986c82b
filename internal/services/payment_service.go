package services

import (
	"context"
	"errors"
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

// PaymentService manages acquisition and rental payments and their installments.
type PaymentService struct {
	Tx       Transactor
	Payments PaymentStore
	Codes    *CodeService

	installments installmentWriter
}

func NewPaymentService(tx Transactor, payments PaymentStore, codes *CodeService) *PaymentService {
	s := &PaymentService{Tx: tx, Payments: payments, Codes: codes}
	s.installments = installmentWriter{
		tx:    tx,
		store: payments,
		name:  "payment",
		loadFn: func(ctx context.Context, id int) (*ledger.Account, error) {
			p, err := payments.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &p.Account, nil
		},
	}
	return s
}

// createPayment issues a receipt code and inserts p with a fresh ledger.
// Callers run it inside their own transaction.
func createPayment(ctx context.Context, codes *CodeService, store PaymentStore, p *models.Payment) error {
	code, err := codes.NextReceiptCode(ctx)
	if err != nil {
		return err
	}
	p.ReceiptCode = code
	p.Account = ledger.NewAccount(p.TotalAmount)
	return store.Create(ctx, p)
}

func (s *PaymentService) Create(ctx context.Context, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.TotalAmount.IsNegative() {
		return nil, apperrors.FieldValidation(map[string]string{"total_amount": "must not be negative"})
	}
	date := timeutil.Now()
	if req.PaymentDate != "" {
		t, err := timeutil.ParseDate(req.PaymentDate)
		if err != nil {
			return nil, apperrors.FieldValidation(map[string]string{"payment_date": "must be a valid date"})
		}
		date = t
	}

	p := &models.Payment{
		PaymentType:  req.PaymentType,
		Payer:        strings.TrimSpace(req.Payer),
		PayerID:      req.PayerID,
		Payee:        strings.TrimSpace(req.Payee),
		PayeeID:      req.PayeeID,
		CompanyID:    req.CompanyID,
		DriverID:     req.DriverID,
		VehicleID:    req.VehicleID,
		LoadID:       req.LoadID,
		VehicleType:  req.VehicleType,
		PlateNo:      req.PlateNo,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		PaymentDate:  date,
		Notes:        req.Notes,
	}
	p.TotalAmount = req.TotalAmount
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if p.LoadID != nil {
			legs, err := s.Payments.ListByLoad(ctx, *p.LoadID)
			if err != nil {
				return err
			}
			for _, leg := range legs {
				if leg.PaymentType == p.PaymentType {
					return apperrors.BusinessRule("load %d already has a %s payment (%s)", *p.LoadID, p.PaymentType, leg.ReceiptCode)
				}
			}
		}
		return createPayment(ctx, s.Codes, s.Payments, p)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Ledger] payment %s created (%s, %s)", p.ReceiptCode, p.PaymentType, p.TotalAmount.StringFixed(2))
	return p, nil
}

// Get returns the payment with its installments and a summary of the other
// leg when it is part of a rental transaction.
func (s *PaymentService) Get(ctx context.Context, id int) (*models.Payment, error) {
	p, err := s.Payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelated(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) attachRelated(ctx context.Context, p *models.Payment) error {
	if p.RelatedPaymentID == nil {
		return nil
	}
	other, err := s.Payments.Get(ctx, *p.RelatedPaymentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	sum := other.Summary()
	p.Related = &sum
	return nil
}

func (s *PaymentService) List(ctx context.Context, f models.PaymentFilter) ([]*models.Payment, error) {
	return s.Payments.List(ctx, f)
}

// Update patches header fields. A total change is rejected when it would
// drop below the amount already paid.
func (s *PaymentService) Update(ctx context.Context, id int, req *models.UpdatePaymentRequest) (*models.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		fields["total_amount"] = "must not be negative"
	}
	var date time.Time
	if req.PaymentDate != nil {
		t, err := timeutil.ParseDate(*req.PaymentDate)
		if err != nil {
			fields["payment_date"] = "must be a valid date"
		}
		date = t
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation(fields)
	}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Payments.Lock(ctx, id); err != nil {
			return err
		}
		p, err := s.Payments.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.TotalAmount != nil {
			if err := p.SetTotal(*req.TotalAmount); err != nil {
				return err
			}
		}
		if req.PaymentDate != nil {
			p.PaymentDate = date
		}
		setString(&p.Payer, req.Payer)
		setString(&p.Payee, req.Payee)
		setString(&p.VehicleType, req.VehicleType)
		setString(&p.PlateNo, req.PlateNo)
		setString(&p.FromLocation, req.FromLocation)
		setString(&p.ToLocation, req.ToLocation)
		setString(&p.Notes, req.Notes)
		return s.Payments.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	return s.Get(ctx, id)
}

// Delete soft-deletes the payment, the same policy bills follow.
func (s *PaymentService) Delete(ctx context.Context, id int) error {
	if err := s.Payments.SoftDelete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Ledger] payment %d deleted", id)
	return nil
}

func (s *PaymentService) AddInstallment(ctx context.Context, id int, req *models.InstallmentRequest) (*models.Payment, error) {
	if err := s.installments.add(ctx, id, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PaymentService) UpdateInstallment(ctx context.Context, id, installmentID int, req *models.InstallmentRequest) (*models.Payment, error) {
	if err := s.installments.update(ctx, id, installmentID, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PaymentService) DeleteInstallment(ctx context.Context, id, installmentID int) (*models.Payment, error) {
	if err := s.installments.remove(ctx, id, installmentID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// setString copies a patch value when present.
func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
