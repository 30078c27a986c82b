package repositories

import (
	"context"
	"fmt"
	"time"

	"fleet-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ReportRepository runs the read-only aggregations behind dashboards and reports.
type ReportRepository struct {
	DB Pool
}

func NewReportRepository(db Pool) *ReportRepository {
	return &ReportRepository{DB: db}
}

// MonthlyPaymentTotals sums live payments per type and calendar month of payment_date.
func (r *ReportRepository) MonthlyPaymentTotals(ctx context.Context, year int, loc *time.Location) ([]models.MonthlyTotal, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)

	rows, err := conn(ctx, r.DB).Query(ctx,
		`SELECT payment_type,
		        EXTRACT(MONTH FROM payment_date AT TIME ZONE $3)::int AS month,
		        COALESCE(SUM(total_amount), 0)
		 FROM payments
		 WHERE deleted_at IS NULL AND payment_date >= $1 AND payment_date < $2
		 GROUP BY payment_type, month
		 ORDER BY month`, start, end, loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly payments: %w", err)
	}
	defer rows.Close()

	totals := []models.MonthlyTotal{}
	for rows.Next() {
		var t models.MonthlyTotal
		if err := rows.Scan(&t.PaymentType, &t.Month, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// ProfitLossRows joins each load with its acquisition and rental legs.
// Net is left for the caller to derive.
func (r *ReportRepository) ProfitLossRows(ctx context.Context, from, to *time.Time) ([]models.ProfitLossRow, error) {
	fb := &filterBuilder{}
	if from != nil {
		fb.add("l.created_at >= $%d", *from)
	}
	if to != nil {
		fb.add("l.created_at <= $%d", *to)
	}
	query := fb.where(`
		SELECT l.id, l.rental_code, l.status, l.vehicle_type, l.plate_no, l.from_location, l.to_location,
		       COALESCE(c.name, ''), COALESCE(d.name, ''), l.created_at,
		       COALESCE(a.total_amount, 0), COALESCE(a.paid_amount, 0), COALESCE(a.due_amount, 0), COALESCE(a.status, 'unpaid'),
		       COALESCE(p.total_amount, 0), COALESCE(p.paid_amount, 0), COALESCE(p.due_amount, 0), COALESCE(p.status, 'unpaid')
		FROM loads l
		LEFT JOIN companies c ON c.id = l.company_id
		LEFT JOIN drivers d ON d.id = l.driver_id
		LEFT JOIN payments a ON a.load_id = l.id AND a.payment_type = 'vehicle-acquisition' AND a.deleted_at IS NULL
		LEFT JOIN payments p ON p.load_id = l.id AND p.payment_type = 'driver-rental' AND p.deleted_at IS NULL`) +
		` ORDER BY l.created_at DESC, l.id DESC`

	rows, err := conn(ctx, r.DB).Query(ctx, query, fb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build profit/loss rows: %w", err)
	}
	defer rows.Close()

	out := []models.ProfitLossRow{}
	for rows.Next() {
		var row models.ProfitLossRow
		if err := rows.Scan(&row.LoadID, &row.RentalCode, &row.LoadStatus, &row.VehicleType, &row.PlateNo,
			&row.FromLocation, &row.ToLocation, &row.CompanyName, &row.DriverName, &row.CreatedAt,
			&row.Revenue, &row.RevenuePaid, &row.RevenueDue, &row.RevenueStatus,
			&row.Cost, &row.CostPaid, &row.CostDue, &row.CostStatus); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// BillTotals aggregates live bills per type in an optional date range.
func (r *ReportRepository) BillTotals(ctx context.Context, from, to *time.Time) ([]models.BillTotals, error) {
	fb := &filterBuilder{}
	if from != nil {
		fb.add("date >= $%d", *from)
	}
	if to != nil {
		fb.add("date <= $%d", *to)
	}
	query := fb.where(`SELECT type, COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0)
		FROM bills WHERE deleted_at IS NULL`) + ` GROUP BY type`

	rows, err := conn(ctx, r.DB).Query(ctx, query, fb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bills: %w", err)
	}
	defer rows.Close()

	out := []models.BillTotals{}
	for rows.Next() {
		var t models.BillTotals
		if err := rows.Scan(&t.Type, &t.Count, &t.Total, &t.Paid); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DashboardSummary collects headline counts and outstanding balances.
func (r *ReportRepository) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	db := conn(ctx, r.DB)
	s := &models.DashboardSummary{
		LoadsByStatus:     map[models.LoadStatus]int{},
		OutstandingByType: map[models.PaymentType]decimal.Decimal{},
		VehiclesByStatus:  map[models.VehicleStatus]int{},
	}

	rows, err := db.Query(ctx, `SELECT status, COUNT(*) FROM loads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count loads: %w", err)
	}
	for rows.Next() {
		var st models.LoadStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			rows.Close()
			return nil, err
		}
		s.LoadsByStatus[st] = n
	}
	rows.Close()

	rows, err = db.Query(ctx,
		`SELECT payment_type, COALESCE(SUM(due_amount), 0) FROM payments
		 WHERE deleted_at IS NULL GROUP BY payment_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding payments: %w", err)
	}
	for rows.Next() {
		var pt models.PaymentType
		var due decimal.Decimal
		if err := rows.Scan(&pt, &due); err != nil {
			rows.Close()
			return nil, err
		}
		s.OutstandingByType[pt] = due
	}
	rows.Close()

	rows, err = db.Query(ctx, `SELECT status, COUNT(*) FROM vehicles GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}
	for rows.Next() {
		var st models.VehicleStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			rows.Close()
			return nil, err
		}
		s.VehiclesByStatus[st] = n
	}
	rows.Close()

	err = db.QueryRow(ctx,
		`SELECT COALESCE(SUM(due_amount), 0) FROM bills WHERE deleted_at IS NULL`).Scan(&s.BillsOutstanding)
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding bills: %w", err)
	}
	return s, nil
}
