package services

import (
	"testing"
	"time"

	"fleet-backend/internal/repositories/memstore"
	"fleet-backend/internal/timeutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fixture struct {
	store        *memstore.Store
	codes        *CodeService
	bills        *BillService
	payments     *PaymentService
	transactions *TransactionService
	loads        *LoadService
	vehicles     *VehicleService
	companies    *CompanyService
	drivers      *DriverService
	reports      *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	codes := NewCodeService(s.Counters())
	return &fixture{
		store:        s,
		codes:        codes,
		bills:        NewBillService(s, s.Bills(), s.Customers()),
		payments:     NewPaymentService(s, s.Payments(), codes),
		transactions: NewTransactionService(s, s.Companies(), s.Drivers(), s.Vehicles(), s.Loads(), s.Payments(), codes, "Broker"),
		loads:        NewLoadService(s, s.Loads(), s.Vehicles(), s.Companies(), s.Drivers(), s.Payments(), codes, "Broker"),
		vehicles:     NewVehicleService(s, s.Vehicles(), s.Companies(), s.Payments(), codes, "Broker"),
		companies:    NewCompanyService(s, s.Companies(), codes),
		drivers:      NewDriverService(s, s.Drivers(), codes),
		reports:      NewReportService(s.Reports(), "ESSA Transport"),
	}
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func localDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, timeutil.Local)
}
