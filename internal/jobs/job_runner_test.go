package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repositories/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReconciler struct{}

func (failingReconciler) Reconcile(context.Context) (int64, error) {
	return 0, errors.New("connection reset")
}

type panickingReconciler struct{}

func (panickingReconciler) Reconcile(context.Context) (int64, error) {
	panic("boom")
}

func seedBill(t *testing.T, store *memstore.Store, total int64) *models.Bill {
	t.Helper()
	b := &models.Bill{
		Type:    models.BillExpense,
		Name:    "Fuel",
		Date:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Account: ledger.NewAccount(decimal.NewFromInt(total)),
	}
	require.NoError(t, store.Bills().Create(context.Background(), b))
	return b
}

func TestReconcileAll(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	bills := store.Bills()

	seedBill(t, store, 500)
	drifted := seedBill(t, store, 1000)

	// Stored figures claim a payment that has no installment behind it.
	bills.Corrupt(drifted.ID, ledger.Account{
		TotalAmount: decimal.NewFromInt(1000),
		PaidAmount:  decimal.NewFromInt(300),
		DueAmount:   decimal.NewFromInt(700),
		Status:      ledger.StatusPartial,
	})

	jr := NewJobRunner(bills, store.Payments())
	repaired, err := jr.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), repaired["bill"])
	assert.Equal(t, int64(0), repaired["payment"])

	got, err := bills.Get(ctx, drifted.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.IsZero())
	assert.True(t, got.DueAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, ledger.StatusUnpaid, got.Status)

	repaired, err = jr.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), repaired["bill"])
}

func TestReconcileAllPropagatesErrors(t *testing.T) {
	jr := NewJobRunner(failingReconciler{}, failingReconciler{})
	_, err := jr.ReconcileAll(context.Background())
	assert.Error(t, err)
}

func TestReconcileLedgersRecoversFromPanic(t *testing.T) {
	jr := NewJobRunner(panickingReconciler{}, panickingReconciler{})
	assert.NotPanics(t, jr.ReconcileLedgers)
}
