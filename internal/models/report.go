package models

import (
	"time"

	"fleet-backend/internal/ledger"

	"github.com/shopspring/decimal"
)

// MonthlyTotal is one (payment type, month) bucket read from storage.
type MonthlyTotal struct {
	PaymentType PaymentType
	Month       int
	Total       decimal.Decimal
}

type MonthlyAnalytics struct {
	Month     int             `json:"month"`
	MonthName string          `json:"month_name"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
}

// ProfitLossRow joins a load with its acquisition (revenue) and rental (cost) legs.
type ProfitLossRow struct {
	LoadID        int             `json:"load_id"`
	RentalCode    string          `json:"rental_code"`
	LoadStatus    LoadStatus      `json:"load_status"`
	VehicleType   string          `json:"vehicle_type"`
	PlateNo       string          `json:"plate_no"`
	FromLocation  string          `json:"from_location"`
	ToLocation    string          `json:"to_location"`
	CompanyName   string          `json:"company_name"`
	DriverName    string          `json:"driver_name"`
	CreatedAt     time.Time       `json:"created_at"`
	Revenue       decimal.Decimal `json:"revenue"`
	RevenuePaid   decimal.Decimal `json:"revenue_paid"`
	RevenueDue    decimal.Decimal `json:"revenue_due"`
	RevenueStatus ledger.Status   `json:"revenue_status"`
	Cost          decimal.Decimal `json:"cost"`
	CostPaid      decimal.Decimal `json:"cost_paid"`
	CostDue       decimal.Decimal `json:"cost_due"`
	CostStatus    ledger.Status   `json:"cost_status"`
	Net           decimal.Decimal `json:"net"`
}

type ProfitLossTotals struct {
	Revenue     decimal.Decimal `json:"revenue"`
	RevenuePaid decimal.Decimal `json:"revenue_paid"`
	RevenueDue  decimal.Decimal `json:"revenue_due"`
	Cost        decimal.Decimal `json:"cost"`
	CostPaid    decimal.Decimal `json:"cost_paid"`
	CostDue     decimal.Decimal `json:"cost_due"`
	Net         decimal.Decimal `json:"net"`
}

type ProfitLossReport struct {
	From   *time.Time       `json:"from,omitempty"`
	To     *time.Time       `json:"to,omitempty"`
	Rows   []ProfitLossRow  `json:"rows"`
	Totals ProfitLossTotals `json:"totals"`
}

// BillTotals is one bill type's aggregate read from storage.
type BillTotals struct {
	Type  BillType
	Count int
	Total decimal.Decimal
	Paid  decimal.Decimal
}

type BillSummary struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	IncomeCount  int             `json:"income_count"`
	Income       decimal.Decimal `json:"income"`
	IncomePaid   decimal.Decimal `json:"income_paid"`
	IncomeDue    decimal.Decimal `json:"income_due"`
	ExpenseCount int             `json:"expense_count"`
	Expense      decimal.Decimal `json:"expense"`
	ExpensePaid  decimal.Decimal `json:"expense_paid"`
	ExpenseDue   decimal.Decimal `json:"expense_due"`
	Net          decimal.Decimal `json:"net"`
}

type DashboardSummary struct {
	LoadsByStatus     map[LoadStatus]int              `json:"loads_by_status"`
	OutstandingByType map[PaymentType]decimal.Decimal `json:"outstanding_by_payment_type"`
	BillsOutstanding  decimal.Decimal                 `json:"bills_outstanding"`
	VehiclesByStatus  map[VehicleStatus]int           `json:"vehicles_by_status"`
}
