package repositories

import (
	"context"
	"testing"
	"time"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPaymentTotalsBucketsInBusinessZone(t *testing.T) {
	mock := newMock(t)
	riyadh := time.FixedZone("AST", 3*60*60)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, riyadh)

	mock.ExpectQuery(sqlText(`EXTRACT(MONTH FROM payment_date AT TIME ZONE $3)::int AS month`)).
		WithArgs(start, start.AddDate(1, 0, 0), "AST").
		WillReturnRows(pgxmock.NewRows([]string{"payment_type", "month", "sum"}).
			AddRow(models.PaymentVehicleAcquisition, 1, dec("1000")).
			AddRow(models.PaymentDriverRental, 1, dec("1200")))

	got, err := NewReportRepository(mock).MonthlyPaymentTotals(context.Background(), 2026, riyadh)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.PaymentVehicleAcquisition, got[0].PaymentType)
	assert.Equal(t, 1, got[0].Month)
	assert.True(t, dec("1200").Equal(got[1].Total))
}

func TestProfitLossRows(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	cols := []string{"id", "rental_code", "status", "vehicle_type", "plate_no", "from_location", "to_location",
		"company", "driver", "created_at",
		"a_total", "a_paid", "a_due", "a_status", "p_total", "p_paid", "p_due", "p_status"}

	t.Run("joins both legs and applies the date filter", func(t *testing.T) {
		mock := newMock(t)
		from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(sqlText(
			`p.payment_type = 'driver-rental' AND p.deleted_at IS NULL WHERE l.created_at >= $1 ORDER BY l.created_at DESC, l.id DESC`)).
			WithArgs(from).
			WillReturnRows(pgxmock.NewRows(cols).AddRow(
				4, "RNT-2026-001", models.LoadAssigned, "Trailer", "ABC 1234", "Riyadh", "Jeddah",
				"Al Noor Logistics", "Ahmed", created,
				dec("1000"), dec("400"), dec("600"), ledger.StatusPartial,
				dec("1200"), dec("0"), dec("1200"), ledger.StatusUnpaid))

		rows, err := NewReportRepository(mock).ProfitLossRows(ctx, &from, nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, "RNT-2026-001", row.RentalCode)
		assert.Equal(t, "Al Noor Logistics", row.CompanyName)
		assert.True(t, dec("1000").Equal(row.Revenue))
		assert.Equal(t, ledger.StatusPartial, row.RevenueStatus)
		assert.True(t, dec("1200").Equal(row.CostDue))
		assert.Equal(t, ledger.StatusUnpaid, row.CostStatus)
	})

	t.Run("both bounds", func(t *testing.T) {
		mock := newMock(t)
		from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)
		mock.ExpectQuery(sqlText(`WHERE l.created_at >= $1 AND l.created_at <= $2`)).
			WithArgs(from, to).
			WillReturnRows(pgxmock.NewRows(cols))

		rows, err := NewReportRepository(mock).ProfitLossRows(ctx, &from, &to)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestBillTotalsFiltersLiveBills(t *testing.T) {
	mock := newMock(t)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(sqlText(`FROM bills WHERE deleted_at IS NULL AND date <= $1 GROUP BY type`)).
		WithArgs(to).
		WillReturnRows(pgxmock.NewRows([]string{"type", "count", "total", "paid"}).
			AddRow(models.BillExpense, 2, dec("1500"), dec("400")))

	got, err := NewReportRepository(mock).BillTotals(context.Background(), nil, &to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.BillExpense, got[0].Type)
	assert.Equal(t, 2, got[0].Count)
	assert.True(t, dec("400").Equal(got[0].Paid))
}
