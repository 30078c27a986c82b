package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"fleet-backend/internal/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMock returns a pgx pool double that fails the test if any expected
// statement was not executed.
func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func sqlText(s string) string {
	return regexp.QuoteMeta(s)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWithinTxCommitsAndSharesTransaction(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlText(`DELETE FROM bill_installments WHERE id=$1 AND bill_id=$2`)).
		WithArgs(9, 3).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	bills := NewBillRepository(mock)
	err := NewTxManager(mock).WithinTx(ctx, func(ctx context.Context) error {
		return bills.DeleteInstallment(ctx, 3, 9)
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewTxManager(mock).WithinTx(ctx, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithinTxJoinsOuterTransaction(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tm := NewTxManager(mock)
	inner := 0
	err := tm.WithinTx(ctx, func(ctx context.Context) error {
		return tm.WithinTx(ctx, func(ctx context.Context) error {
			inner++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inner)
}

func TestWrapNotFound(t *testing.T) {
	err := wrapNotFound(pgx.ErrNoRows, "bill", 4)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	cause := errors.New("connection reset")
	err = wrapNotFound(cause, "bill", 4)
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load bill 4")
}

func TestFilterBuilder(t *testing.T) {
	t.Run("no filters leaves the query alone", func(t *testing.T) {
		fb := &filterBuilder{}
		assert.Equal(t, "SELECT 1 FROM bills", fb.where("SELECT 1 FROM bills"))
		assert.Empty(t, fb.args)
	})

	t.Run("starts a WHERE clause and numbers placeholders", func(t *testing.T) {
		fb := &filterBuilder{}
		fb.add("type = $%d", "income")
		fb.add("status = $%d", "paid")
		assert.Equal(t, "SELECT 1 FROM bills WHERE type = $1 AND status = $2", fb.where("SELECT 1 FROM bills"))
		assert.Equal(t, []any{"income", "paid"}, fb.args)
	})

	t.Run("extends an existing WHERE", func(t *testing.T) {
		fb := &filterBuilder{}
		fb.add("date >= $%d", "2026-01-01")
		got := fb.where("SELECT 1 FROM bills WHERE deleted_at IS NULL")
		assert.Equal(t, "SELECT 1 FROM bills WHERE deleted_at IS NULL AND date >= $1", got)
	})
}
