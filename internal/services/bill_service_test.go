package services

import (
	"context"
	"errors"
	"testing"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBill(t *testing.T, f *fixture, total string) *models.Bill {
	t.Helper()
	b, err := f.bills.Create(context.Background(), &models.CreateBillRequest{
		Type:        models.BillExpense,
		Name:        "Diesel",
		TotalAmount: dec(total),
		Date:        "2026-03-01",
	})
	require.NoError(t, err)
	return b
}

func installment(amount, date string) *models.InstallmentRequest {
	return &models.InstallmentRequest{Amount: dec(amount), PaidDate: date}
}

func TestBillInstallmentScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := createBill(t, f, "1000")
	assert.Equal(t, ledger.StatusUnpaid, b.Status)
	assertAmount(t, "1000", b.DueAmount)

	b, err := f.bills.AddInstallment(ctx, b.ID, installment("400", "2026-03-02"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, b.Status)
	assertAmount(t, "600", b.DueAmount)

	b, err = f.bills.AddInstallment(ctx, b.ID, installment("600", "2026-03-05"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, b.Status)
	assert.True(t, b.DueAmount.IsZero())

	_, err = f.bills.AddInstallment(ctx, b.ID, installment("1", "2026-03-06"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))
	assert.Contains(t, err.Error(), "already fully paid")

	b, err = f.bills.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, b.Installments, 2)
	assert.True(t, b.Consistent())
}

func TestBillAddInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("overpayment leaves the bill untouched", func(t *testing.T) {
		f := newFixture(t)
		b := createBill(t, f, "500")
		_, err := f.bills.AddInstallment(ctx, b.ID, installment("200", "2026-03-02"))
		require.NoError(t, err)

		_, err = f.bills.AddInstallment(ctx, b.ID, installment("301", "2026-03-03"))
		assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))

		got, err := f.bills.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, got.Installments, 1)
		assertAmount(t, "200", got.PaidAmount)
		assert.Equal(t, ledger.StatusPartial, got.Status)
	})

	t.Run("validation names every bad field", func(t *testing.T) {
		f := newFixture(t)
		b := createBill(t, f, "500")
		_, err := f.bills.AddInstallment(ctx, b.ID, &models.InstallmentRequest{Amount: dec("0")})

		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "amount")
		assert.Contains(t, verr.Fields, "paid_date")
	})

	t.Run("unparseable date", func(t *testing.T) {
		f := newFixture(t)
		b := createBill(t, f, "500")
		_, err := f.bills.AddInstallment(ctx, b.ID, installment("10", "03/02/2026"))
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("missing bill", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bills.AddInstallment(ctx, 404, installment("10", "2026-03-02"))
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("store failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		b := createBill(t, f, "500")
		f.store.FailOn("bills.insert_installment", errors.New("disk full"))

		_, err := f.bills.AddInstallment(ctx, b.ID, installment("100", "2026-03-02"))
		require.Error(t, err)

		got, err := f.bills.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Installments)
		assert.True(t, got.PaidAmount.IsZero())
	})
}

func TestBillUpdateAndDeleteInstallment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := createBill(t, f, "1000")
	b, err := f.bills.AddInstallment(ctx, b.ID, installment("400", "2026-03-02"))
	require.NoError(t, err)
	b, err = f.bills.AddInstallment(ctx, b.ID, installment("300", "2026-03-03"))
	require.NoError(t, err)
	first := b.Installments[0].ID

	t.Run("capacity excludes the edited entry", func(t *testing.T) {
		got, err := f.bills.UpdateInstallment(ctx, b.ID, first, &models.InstallmentRequest{
			Amount: dec("700"), PaidDate: "2026-03-02", Notes: "corrected",
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPaid, got.Status)
		assertAmount(t, "1000", got.PaidAmount)
	})

	t.Run("update beyond total is rejected", func(t *testing.T) {
		_, err := f.bills.UpdateInstallment(ctx, b.ID, first, installment("701", "2026-03-02"))
		assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))
	})

	t.Run("unknown installment", func(t *testing.T) {
		_, err := f.bills.UpdateInstallment(ctx, b.ID, 999, installment("1", "2026-03-02"))
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("deleting moves paid back to partial", func(t *testing.T) {
		got, err := f.bills.DeleteInstallment(ctx, b.ID, first)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPartial, got.Status)
		assertAmount(t, "300", got.PaidAmount)
		assertAmount(t, "700", got.DueAmount)
	})
}

func TestBillDeleteOnlyInstallmentOnPaidBill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := createBill(t, f, "250")
	b, err := f.bills.AddInstallment(ctx, b.ID, installment("250", "2026-03-02"))
	require.NoError(t, err)
	require.Equal(t, ledger.StatusPaid, b.Status)

	b, err = f.bills.DeleteInstallment(ctx, b.ID, b.Installments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusUnpaid, b.Status)
	assert.True(t, b.PaidAmount.IsZero())
}

func TestBillUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := createBill(t, f, "1000")
	_, err := f.bills.AddInstallment(ctx, b.ID, installment("600", "2026-03-02"))
	require.NoError(t, err)

	t.Run("total below paid", func(t *testing.T) {
		_, err := f.bills.Update(ctx, b.ID, &models.UpdateBillRequest{TotalAmount: decPtr("500")})
		assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))

		got, err := f.bills.Get(ctx, b.ID)
		require.NoError(t, err)
		assertAmount(t, "1000", got.TotalAmount)
	})

	t.Run("total equal to paid settles the bill", func(t *testing.T) {
		got, err := f.bills.Update(ctx, b.ID, &models.UpdateBillRequest{
			TotalAmount: decPtr("600"),
			Name:        strPtr("Diesel March"),
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPaid, got.Status)
		assert.Equal(t, "Diesel March", got.Name)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := f.bills.Update(ctx, b.ID, &models.UpdateBillRequest{Date: strPtr("soon")})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}

func TestBillCreateAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects negative total", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bills.Create(ctx, &models.CreateBillRequest{
			Type: models.BillIncome, Name: "Refund", TotalAmount: dec("-1"), Date: "2026-03-01",
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bills.Create(ctx, &models.CreateBillRequest{
			Type: "gift", Name: "x", TotalAmount: dec("1"), Date: "2026-03-01",
		})
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "type")
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bills.Create(ctx, &models.CreateBillRequest{
			Type: models.BillIncome, Name: "Hire", TotalAmount: dec("1"), Date: "2026-03-01", CustomerID: intPtr(9),
		})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("soft delete hides the bill", func(t *testing.T) {
		f := newFixture(t)
		b := createBill(t, f, "100")
		require.NoError(t, f.bills.Delete(ctx, b.ID))

		_, err := f.bills.Get(ctx, b.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		list, err := f.bills.List(ctx, models.BillFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)

		assert.True(t, errors.Is(f.bills.Delete(ctx, b.ID), apperrors.ErrNotFound))
	})
}
