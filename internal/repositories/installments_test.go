package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var installmentCols = []string{"id", "amount", "paid_date", "notes", "created_at"}

func TestInstallmentList(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	paid := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(sqlText(`FROM payment_installments WHERE payment_id=$1 ORDER BY paid_date, id`)).
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows(installmentCols).
			AddRow(1, dec("400"), paid, "cash", paid).
			AddRow(2, dec("100"), paid.AddDate(0, 0, 1), "", paid))

	got, err := paymentInstallments.list(ctx, mock, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.True(t, dec("500").Equal(ledger.Sum(got)))
	assert.Equal(t, "cash", got[0].Notes)
	assert.True(t, paid.Equal(got[0].PaidDate))
}

func TestInstallmentListEmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(sqlText(`FROM bill_installments WHERE bill_id=$1`)).
		WithArgs(3).
		WillReturnRows(pgxmock.NewRows(installmentCols))

	got, err := billInstallments.list(context.Background(), mock, 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInstallmentListMany(t *testing.T) {
	ctx := context.Background()

	t.Run("no owners skips the query", func(t *testing.T) {
		mock := newMock(t)
		got, err := billInstallments.listMany(ctx, mock, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("groups rows by owner", func(t *testing.T) {
		mock := newMock(t)
		paid := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(sqlText(`FROM bill_installments WHERE bill_id = ANY($1)`)).
			WithArgs([]int{3, 4}).
			WillReturnRows(pgxmock.NewRows(append([]string{"bill_id"}, installmentCols...)).
				AddRow(3, 1, dec("10"), paid, "", paid).
				AddRow(4, 2, dec("20"), paid, "", paid).
				AddRow(3, 3, dec("30"), paid, "", paid))

		got, err := billInstallments.listMany(ctx, mock, []int{3, 4})
		require.NoError(t, err)
		assert.Len(t, got[3], 2)
		assert.Len(t, got[4], 1)
		assert.True(t, dec("40").Equal(ledger.Sum(got[3])))
	})
}

func TestInsertInstallmentReturnsIdentity(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(sqlText(`INSERT INTO bill_installments (bill_id, amount, paid_date, notes)`)).
		WithArgs(3, pgxmock.AnyArg(), pgxmock.AnyArg(), "first").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(11, created))

	in := &ledger.Installment{Amount: dec("400"), PaidDate: created, Notes: "first"}
	require.NoError(t, NewBillRepository(mock).InsertInstallment(context.Background(), 3, in))
	assert.Equal(t, 11, in.ID)
	assert.True(t, created.Equal(in.CreatedAt))
}

func TestInstallmentWritesReportMissingRows(t *testing.T) {
	ctx := context.Background()
	updateSQL := sqlText(`UPDATE payment_installments SET amount=$1, paid_date=$2, notes=$3`)
	deleteSQL := sqlText(`DELETE FROM payment_installments WHERE id=$1 AND payment_id=$2`)

	t.Run("update of another payment's installment", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(updateSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "", 9, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewPaymentRepository(mock).UpdateInstallment(ctx, 7, &ledger.Installment{ID: 9, Amount: dec("5")})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("update hits its row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(updateSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "fixed", 9, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := NewPaymentRepository(mock).UpdateInstallment(ctx, 7, &ledger.Installment{ID: 9, Amount: dec("5"), Notes: "fixed"})
		assert.NoError(t, err)
	})

	t.Run("delete of a missing installment", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(deleteSQL).
			WithArgs(9, 7).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := NewPaymentRepository(mock).DeleteInstallment(ctx, 7, 9)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("driver errors are wrapped, not reported as missing", func(t *testing.T) {
		mock := newMock(t)
		reset := errors.New("connection reset")
		mock.ExpectExec(deleteSQL).WithArgs(9, 7).WillReturnError(reset)

		err := NewPaymentRepository(mock).DeleteInstallment(ctx, 7, 9)
		assert.ErrorIs(t, err, reset)
		assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestLockMissingRow(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	mock.ExpectQuery(sqlText(`SELECT id FROM bills WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`)).
		WithArgs(5).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(sqlText(`SELECT id FROM payments WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`)).
		WithArgs(6).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(6))

	assert.True(t, errors.Is(NewBillRepository(mock).Lock(ctx, 5), apperrors.ErrNotFound))
	assert.NoError(t, NewPaymentRepository(mock).Lock(ctx, 6))
}

func TestSaveTotalsWritesDerivedFields(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(sqlText(`UPDATE bills SET total_amount=$1, paid_amount=$2, due_amount=$3, status=$4`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), ledger.StatusPartial, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	acc := ledger.NewAccount(dec("1000"))
	acc.Installments = []ledger.Installment{{ID: 1, Amount: dec("400")}}
	acc.Recompute()
	require.NoError(t, NewBillRepository(mock).SaveTotals(context.Background(), 3, &acc))
}

func TestReconcileSQL(t *testing.T) {
	q := reconcileSQL("payments", paymentInstallments)

	assert.Contains(t, q, "LEFT JOIN payment_installments i ON i.payment_id = p.id")
	assert.Contains(t, q, "WHEN s.paid = 0 THEN 'unpaid'")
	assert.Contains(t, q, "WHEN s.paid >= p.total_amount THEN 'paid'")
	assert.Contains(t, q, "UPDATE payments p")
	// Only rows that disagree with the re-sum are touched.
	assert.Contains(t, q, "p.paid_amount <> d.paid OR p.due_amount <> d.due OR p.status <> d.status")
}

func TestReconcileReturnsRepairedCount(t *testing.T) {
	ctx := context.Background()

	t.Run("bills", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(sqlText(`LEFT JOIN bill_installments i ON i.bill_id = p.id`)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))

		n, err := NewBillRepository(mock).Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("payments", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(sqlText(`LEFT JOIN payment_installments i ON i.payment_id = p.id`)).
			WillReturnError(errors.New("deadlock detected"))

		_, err := NewPaymentRepository(mock).Reconcile(ctx)
		assert.ErrorContains(t, err, "failed to reconcile payments")
	})
}
