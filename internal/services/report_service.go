package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"fleet-backend/internal/cache"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// ReportService builds dashboards and profit/loss reports. Results are
// cached in Redis when it is enabled and dropped on every ledger write.
type ReportService struct {
	Reports     ReportStore
	CompanyName string
}

func NewReportService(reports ReportStore, companyName string) *ReportService {
	return &ReportService{Reports: reports, CompanyName: companyName}
}

// BuildMonthlyAnalytics folds per-type monthly totals into twelve rows.
// Acquisition payments are revenue, rental payments are cost.
func BuildMonthlyAnalytics(totals []models.MonthlyTotal) []models.MonthlyAnalytics {
	rows := make([]models.MonthlyAnalytics, 12)
	for i := range rows {
		rows[i] = models.MonthlyAnalytics{
			Month:     i + 1,
			MonthName: time.Month(i + 1).String(),
			Revenue:   decimal.Zero,
			Cost:      decimal.Zero,
		}
	}
	for _, t := range totals {
		if t.Month < 1 || t.Month > 12 {
			continue
		}
		r := &rows[t.Month-1]
		switch t.PaymentType {
		case models.PaymentVehicleAcquisition:
			r.Revenue = r.Revenue.Add(t.Total)
		case models.PaymentDriverRental:
			r.Cost = r.Cost.Add(t.Total)
		}
	}
	for i := range rows {
		rows[i].Profit = rows[i].Revenue.Sub(rows[i].Cost)
	}
	return rows
}

func (s *ReportService) MonthlyAnalytics(ctx context.Context, year int) ([]models.MonthlyAnalytics, error) {
	key := cache.MonthlyAnalyticsKey(year)
	var rows []models.MonthlyAnalytics
	if cache.GetJSON(ctx, key, &rows) {
		return rows, nil
	}

	totals, err := s.Reports.MonthlyPaymentTotals(ctx, year, timeutil.Local)
	if err != nil {
		return nil, err
	}
	rows = BuildMonthlyAnalytics(totals)
	cache.SetJSON(ctx, key, rows, cache.ReportTTL)
	return rows, nil
}

// BuildProfitLoss fills in per-row net and the report totals.
func BuildProfitLoss(rows []models.ProfitLossRow, from, to *time.Time) *models.ProfitLossReport {
	report := &models.ProfitLossReport{From: from, To: to, Rows: rows}
	t := &report.Totals
	for i := range report.Rows {
		r := &report.Rows[i]
		r.Net = r.Revenue.Sub(r.Cost)
		t.Revenue = t.Revenue.Add(r.Revenue)
		t.RevenuePaid = t.RevenuePaid.Add(r.RevenuePaid)
		t.RevenueDue = t.RevenueDue.Add(r.RevenueDue)
		t.Cost = t.Cost.Add(r.Cost)
		t.CostPaid = t.CostPaid.Add(r.CostPaid)
		t.CostDue = t.CostDue.Add(r.CostDue)
	}
	t.Net = t.Revenue.Sub(t.Cost)
	return report
}

func (s *ReportService) ProfitLoss(ctx context.Context, from, to *time.Time) (*models.ProfitLossReport, error) {
	key := cache.RangeKey(cache.ProfitLossKeyFmt, from, to)
	var report models.ProfitLossReport
	if cache.GetJSON(ctx, key, &report) {
		return &report, nil
	}

	rows, err := s.Reports.ProfitLossRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := BuildProfitLoss(rows, from, to)
	cache.SetJSON(ctx, key, out, cache.ReportTTL)
	return out, nil
}

// ProfitLossCSV renders the report as CSV with a totals row.
func (s *ReportService) ProfitLossCSV(report *models.ProfitLossReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{
		"Rental Code", "Status", "Company", "Driver", "Vehicle", "Plate", "From", "To", "Date",
		"Revenue", "Revenue Paid", "Revenue Due", "Revenue Status",
		"Cost", "Cost Paid", "Cost Due", "Cost Status", "Net",
	})
	for _, r := range report.Rows {
		w.Write([]string{
			r.RentalCode,
			string(r.LoadStatus),
			r.CompanyName,
			r.DriverName,
			r.VehicleType,
			r.PlateNo,
			r.FromLocation,
			r.ToLocation,
			r.CreatedAt.In(timeutil.Local).Format(timeutil.DateLayout),
			r.Revenue.StringFixed(2),
			r.RevenuePaid.StringFixed(2),
			r.RevenueDue.StringFixed(2),
			string(r.RevenueStatus),
			r.Cost.StringFixed(2),
			r.CostPaid.StringFixed(2),
			r.CostDue.StringFixed(2),
			string(r.CostStatus),
			r.Net.StringFixed(2),
		})
	}
	t := report.Totals
	w.Write([]string{
		"TOTAL", "", "", "", "", "", "", "", "",
		t.Revenue.StringFixed(2), t.RevenuePaid.StringFixed(2), t.RevenueDue.StringFixed(2), "",
		t.Cost.StringFixed(2), t.CostPaid.StringFixed(2), t.CostDue.StringFixed(2), "",
		t.Net.StringFixed(2),
	})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rangeLabel(from, to *time.Time) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("%s to %s", from.Format(timeutil.ReceiptLayout), to.Format(timeutil.ReceiptLayout))
	case from != nil:
		return "From " + from.Format(timeutil.ReceiptLayout)
	case to != nil:
		return "Up to " + to.Format(timeutil.ReceiptLayout)
	}
	return "All time"
}

// ProfitLossPDF renders the report as a landscape A4 table.
func (s *ReportService) ProfitLossPDF(report *models.ProfitLossReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, s.CompanyName+" - Profit & Loss", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, rangeLabel(report.From, report.To), "", 1, "C", false, 0, "")
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{32, 45, 40, 38, 28, 22, 28, 22, 22}
	headers := []string{"Rental Code", "Company", "Driver", "Route", "Revenue", "Rev. Due", "Cost", "Cost Due", "Net"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range report.Rows {
		route := truncate(r.FromLocation+" - "+r.ToLocation, 24)
		cells := []string{
			r.RentalCode,
			truncate(r.CompanyName, 28),
			truncate(r.DriverName, 24),
			route,
			r.Revenue.StringFixed(2),
			r.RevenueDue.StringFixed(2),
			r.Cost.StringFixed(2),
			r.CostDue.StringFixed(2),
			r.Net.StringFixed(2),
		}
		for i, c := range cells {
			align := "L"
			if i >= 4 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	t := report.Totals
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 7, "Total", "1", 0, "L", true, 0, "")
	for i, v := range []decimal.Decimal{t.Revenue, t.RevenueDue, t.Cost, t.CostDue, t.Net} {
		pdf.CellFormat(widths[4+i], 7, v.StringFixed(2), "1", 0, "R", true, 0, "")
	}
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// BuildBillSummary folds per-type bill totals into income, expense and net.
func BuildBillSummary(totals []models.BillTotals, from, to *time.Time) *models.BillSummary {
	out := &models.BillSummary{From: from, To: to}
	for _, t := range totals {
		switch t.Type {
		case models.BillIncome:
			out.IncomeCount, out.Income, out.IncomePaid = t.Count, t.Total, t.Paid
			out.IncomeDue = t.Total.Sub(t.Paid)
		case models.BillExpense:
			out.ExpenseCount, out.Expense, out.ExpensePaid = t.Count, t.Total, t.Paid
			out.ExpenseDue = t.Total.Sub(t.Paid)
		}
	}
	out.Net = out.Income.Sub(out.Expense)
	return out
}

func (s *ReportService) BillSummary(ctx context.Context, from, to *time.Time) (*models.BillSummary, error) {
	key := cache.RangeKey(cache.BillSummaryKeyFmt, from, to)
	var summary models.BillSummary
	if cache.GetJSON(ctx, key, &summary) {
		return &summary, nil
	}

	totals, err := s.Reports.BillTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := BuildBillSummary(totals, from, to)
	cache.SetJSON(ctx, key, out, cache.ReportTTL)
	return out, nil
}

func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if cache.GetJSON(ctx, cache.DashboardSummaryKey, &summary) {
		return &summary, nil
	}

	out, err := s.Reports.DashboardSummary(ctx)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, cache.DashboardSummaryKey, out, cache.DashboardTTL)
	return out, nil
}

// PreWarmDashboard refills the dashboard cache in the background.
func (s *ReportService) PreWarmDashboard() {
	cache.PreWarmKey(cache.DashboardSummaryKey, func(ctx context.Context) (any, error) {
		return s.Reports.DashboardSummary(ctx)
	}, cache.DashboardTTL)
}
