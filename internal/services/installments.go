package services

import (
	"context"
	"log"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"
	"fleet-backend/internal/validation"
)

// installmentWriter applies ledger operations to one kind of account.
// Every mutation locks the owner row, re-reads it, applies the pure ledger
// operation and persists the installment and the recomputed totals in one
// transaction.
type installmentWriter struct {
	tx     Transactor
	store  AccountStore
	name   string
	loadFn func(ctx context.Context, id int) (*ledger.Account, error)
}

// parseInstallment validates a request body before anything is written.
func parseInstallment(req *models.InstallmentRequest) (ledger.Installment, error) {
	if err := validation.Struct(req); err != nil {
		return ledger.Installment{}, err
	}
	fields := map[string]string{}
	if !req.Amount.IsPositive() {
		fields["amount"] = "must be greater than 0"
	}
	var paid ledger.Installment
	if req.PaidDate == "" {
		fields["paid_date"] = "is required"
	} else if t, err := timeutil.ParseDate(req.PaidDate); err != nil {
		fields["paid_date"] = "must be a valid date"
	} else {
		paid.PaidDate = t
	}
	if len(fields) > 0 {
		return ledger.Installment{}, apperrors.FieldValidation(fields)
	}
	paid.Amount = req.Amount
	paid.Notes = req.Notes
	return paid, nil
}

func (w installmentWriter) locked(ctx context.Context, id int) (*ledger.Account, error) {
	if err := w.store.Lock(ctx, id); err != nil {
		return nil, err
	}
	return w.loadFn(ctx, id)
}

func (w installmentWriter) add(ctx context.Context, ownerID int, req *models.InstallmentRequest) error {
	in, err := parseInstallment(req)
	if err != nil {
		return err
	}
	err = w.tx.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := w.locked(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := acc.AddInstallment(in); err != nil {
			return err
		}
		if err := w.store.InsertInstallment(ctx, ownerID, &in); err != nil {
			return err
		}
		return w.store.SaveTotals(ctx, ownerID, acc)
	})
	if err != nil {
		return err
	}
	w.recorded(ctx, "add", ownerID)
	return nil
}

func (w installmentWriter) update(ctx context.Context, ownerID, installmentID int, req *models.InstallmentRequest) error {
	in, err := parseInstallment(req)
	if err != nil {
		return err
	}
	err = w.tx.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := w.locked(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := acc.UpdateInstallment(installmentID, in.Amount, in.PaidDate, in.Notes); err != nil {
			return err
		}
		in.ID = installmentID
		if err := w.store.UpdateInstallment(ctx, ownerID, &in); err != nil {
			return err
		}
		return w.store.SaveTotals(ctx, ownerID, acc)
	})
	if err != nil {
		return err
	}
	w.recorded(ctx, "update", ownerID)
	return nil
}

func (w installmentWriter) remove(ctx context.Context, ownerID, installmentID int) error {
	err := w.tx.WithinTx(ctx, func(ctx context.Context) error {
		acc, err := w.locked(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := acc.RemoveInstallment(installmentID); err != nil {
			return err
		}
		if err := w.store.DeleteInstallment(ctx, ownerID, installmentID); err != nil {
			return err
		}
		return w.store.SaveTotals(ctx, ownerID, acc)
	})
	if err != nil {
		return err
	}
	w.recorded(ctx, "delete", ownerID)
	return nil
}

func (w installmentWriter) recorded(ctx context.Context, op string, ownerID int) {
	metrics.InstallmentsRecorded.WithLabelValues(w.name, op).Inc()
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Ledger] %s %d: installment %s", w.name, ownerID, op)
}
