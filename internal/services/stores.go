package services

import (
	"context"
	"time"

	"fleet-backend/internal/codegen"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
)

// Transactor runs fn in one database transaction. Store calls made with the
// context passed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountStore persists the ledger half of a bill or payment.
type AccountStore interface {
	Lock(ctx context.Context, id int) error
	SaveTotals(ctx context.Context, id int, acc *ledger.Account) error
	InsertInstallment(ctx context.Context, ownerID int, in *ledger.Installment) error
	UpdateInstallment(ctx context.Context, ownerID int, in *ledger.Installment) error
	DeleteInstallment(ctx context.Context, ownerID, installmentID int) error
	Reconcile(ctx context.Context) (int64, error)
}

type BillStore interface {
	AccountStore
	Create(ctx context.Context, b *models.Bill) error
	Get(ctx context.Context, id int) (*models.Bill, error)
	List(ctx context.Context, f models.BillFilter) ([]*models.Bill, error)
	Update(ctx context.Context, b *models.Bill) error
	SoftDelete(ctx context.Context, id int) error
}

type PaymentStore interface {
	AccountStore
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, id int) (*models.Payment, error)
	List(ctx context.Context, f models.PaymentFilter) ([]*models.Payment, error)
	ListByLoad(ctx context.Context, loadID int) ([]*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	SetRelated(ctx context.Context, id, relatedID int) error
	SoftDelete(ctx context.Context, id int) error
}

type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) error
	Get(ctx context.Context, id int) (*models.Company, error)
	FindByName(ctx context.Context, name string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
}

type DriverStore interface {
	Create(ctx context.Context, d *models.Driver) error
	Get(ctx context.Context, id int) (*models.Driver, error)
	FindByIqama(ctx context.Context, iqamaID string) (*models.Driver, error)
	List(ctx context.Context) ([]*models.Driver, error)
}

type VehicleStore interface {
	Create(ctx context.Context, v *models.Vehicle) error
	Get(ctx context.Context, id int) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	UpdateStatus(ctx context.Context, id int, status models.VehicleStatus) error
}

type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, id int) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
}

type LoadStore interface {
	Create(ctx context.Context, l *models.Load) error
	Get(ctx context.Context, id int) (*models.Load, error)
	GetByRentalCode(ctx context.Context, code string) (*models.Load, error)
	Lock(ctx context.Context, id int) error
	List(ctx context.Context, f models.LoadFilter) ([]*models.Load, error)
	Update(ctx context.Context, l *models.Load) error
	Delete(ctx context.Context, id int) error
}

// CounterStore hands out the next number of a code family atomically.
type CounterStore interface {
	Next(ctx context.Context, f codegen.Family) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) error
}

type ReportStore interface {
	MonthlyPaymentTotals(ctx context.Context, year int, loc *time.Location) ([]models.MonthlyTotal, error)
	ProfitLossRows(ctx context.Context, from, to *time.Time) ([]models.ProfitLossRow, error)
	BillTotals(ctx context.Context, from, to *time.Time) ([]models.BillTotals, error)
	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
}

type ActionLogStore interface {
	Record(ctx context.Context, l *models.ActionLog) error
	List(ctx context.Context, limit int) ([]*models.ActionLog, error)
}
