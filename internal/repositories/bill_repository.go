package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
)

type BillRepository struct {
	DB Pool
}

func NewBillRepository(db Pool) *BillRepository {
	return &BillRepository{DB: db}
}

const billColumns = `id, type, name, date, customer_id, notes,
	total_amount, paid_amount, due_amount, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.Type, &b.Name, &b.Date, &b.CustomerID, &b.Notes,
		&b.TotalAmount, &b.PaidAmount, &b.DueAmount, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Installments = []ledger.Installment{}
	return &b, nil
}

func (r *BillRepository) Create(ctx context.Context, b *models.Bill) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO bills (type, name, date, customer_id, notes, total_amount, paid_amount, due_amount, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		b.Type, b.Name, b.Date, b.CustomerID, b.Notes, b.TotalAmount, b.PaidAmount, b.DueAmount, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// Get returns a live (not soft-deleted) bill with its installments.
func (r *BillRepository) Get(ctx context.Context, id int) (*models.Bill, error) {
	db := conn(ctx, r.DB)
	b, err := scanBill(db.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id=$1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, wrapNotFound(err, "bill", id)
	}
	if b.Installments, err = billInstallments.list(ctx, db, id); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BillRepository) List(ctx context.Context, f models.BillFilter) ([]*models.Bill, error) {
	fb := &filterBuilder{}
	if f.Type != "" {
		fb.add("type = $%d", f.Type)
	}
	if f.Status != "" {
		fb.add("status = $%d", f.Status)
	}
	if f.From != nil {
		fb.add("date >= $%d", *f.From)
	}
	if f.To != nil {
		fb.add("date <= $%d", *f.To)
	}
	query := fb.where(`SELECT `+billColumns+` FROM bills WHERE deleted_at IS NULL`) + ` ORDER BY date DESC, id DESC`

	db := conn(ctx, r.DB)
	rows, err := db.Query(ctx, query, fb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*models.Bill{}
	ids := []int{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byOwner, err := billInstallments.listMany(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range bills {
		if in, ok := byOwner[b.ID]; ok {
			b.Installments = in
		}
	}
	return bills, nil
}

// Update writes header fields and the derived ledger figures.
func (r *BillRepository) Update(ctx context.Context, b *models.Bill) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE bills SET name=$1, date=$2, customer_id=$3, notes=$4,
		 total_amount=$5, paid_amount=$6, due_amount=$7, status=$8, updated_at=NOW()
		 WHERE id=$9 AND deleted_at IS NULL`,
		b.Name, b.Date, b.CustomerID, b.Notes, b.TotalAmount, b.PaidAmount, b.DueAmount, b.Status, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("bill", b.ID)
	}
	return nil
}

func (r *BillRepository) SoftDelete(ctx context.Context, id int) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE bills SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("bill", id)
	}
	return nil
}

// Lock takes a row lock on the bill for the rest of the current transaction.
func (r *BillRepository) Lock(ctx context.Context, id int) error {
	var locked int
	err := conn(ctx, r.DB).QueryRow(ctx,
		`SELECT id FROM bills WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return wrapNotFound(err, "bill", id)
	}
	return nil
}

func (r *BillRepository) SaveTotals(ctx context.Context, id int, acc *ledger.Account) error {
	_, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE bills SET total_amount=$1, paid_amount=$2, due_amount=$3, status=$4, updated_at=NOW()
		 WHERE id=$5`,
		acc.TotalAmount, acc.PaidAmount, acc.DueAmount, acc.Status, id)
	if err != nil {
		return fmt.Errorf("failed to save bill totals: %w", err)
	}
	return nil
}

func (r *BillRepository) InsertInstallment(ctx context.Context, billID int, in *ledger.Installment) error {
	return billInstallments.insert(ctx, conn(ctx, r.DB), billID, in)
}

func (r *BillRepository) UpdateInstallment(ctx context.Context, billID int, in *ledger.Installment) error {
	return billInstallments.update(ctx, conn(ctx, r.DB), billID, in)
}

func (r *BillRepository) DeleteInstallment(ctx context.Context, billID, installmentID int) error {
	return billInstallments.delete(ctx, conn(ctx, r.DB), billID, installmentID)
}

// Reconcile re-derives paid/due/status for every bill and returns the number of rows repaired.
func (r *BillRepository) Reconcile(ctx context.Context) (int64, error) {
	tag, err := conn(ctx, r.DB).Exec(ctx, reconcileSQL("bills", billInstallments))
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile bills: %w", err)
	}
	return tag.RowsAffected(), nil
}
