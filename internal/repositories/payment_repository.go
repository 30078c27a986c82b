package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
)

type PaymentRepository struct {
	DB Pool
}

func NewPaymentRepository(db Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentColumns = `id, receipt_code, payment_type, payer, payer_id, payee, payee_id,
	company_id, driver_id, vehicle_id, load_id, related_payment_id,
	vehicle_type, plate_no, from_location, to_location, payment_date, notes,
	total_amount, paid_amount, due_amount, status, created_at, updated_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.ReceiptCode, &p.PaymentType, &p.Payer, &p.PayerID, &p.Payee, &p.PayeeID,
		&p.CompanyID, &p.DriverID, &p.VehicleID, &p.LoadID, &p.RelatedPaymentID,
		&p.VehicleType, &p.PlateNo, &p.FromLocation, &p.ToLocation, &p.PaymentDate, &p.Notes,
		&p.TotalAmount, &p.PaidAmount, &p.DueAmount, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Installments = []ledger.Installment{}
	return &p, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO payments (
			receipt_code, payment_type, payer, payer_id, payee, payee_id,
			company_id, driver_id, vehicle_id, load_id, related_payment_id,
			vehicle_type, plate_no, from_location, to_location, payment_date, notes,
			total_amount, paid_amount, due_amount, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at, updated_at`,
		p.ReceiptCode, p.PaymentType, p.Payer, p.PayerID, p.Payee, p.PayeeID,
		p.CompanyID, p.DriverID, p.VehicleID, p.LoadID, p.RelatedPaymentID,
		p.VehicleType, p.PlateNo, p.FromLocation, p.ToLocation, p.PaymentDate, p.Notes,
		p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// Get returns a live payment with its installments.
func (r *PaymentRepository) Get(ctx context.Context, id int) (*models.Payment, error) {
	db := conn(ctx, r.DB)
	p, err := scanPayment(db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id=$1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, wrapNotFound(err, "payment", id)
	}
	if p.Installments, err = paymentInstallments.list(ctx, db, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepository) List(ctx context.Context, f models.PaymentFilter) ([]*models.Payment, error) {
	fb := &filterBuilder{}
	if f.PaymentType != "" {
		fb.add("payment_type = $%d", f.PaymentType)
	}
	if f.Status != "" {
		fb.add("status = $%d", f.Status)
	}
	if f.LoadID != nil {
		fb.add("load_id = $%d", *f.LoadID)
	}
	if f.From != nil {
		fb.add("payment_date >= $%d", *f.From)
	}
	if f.To != nil {
		fb.add("payment_date <= $%d", *f.To)
	}
	query := fb.where(`SELECT `+paymentColumns+` FROM payments WHERE deleted_at IS NULL`) + ` ORDER BY payment_date DESC, id DESC`
	return r.query(ctx, query, fb.args...)
}

// ListByLoad returns the live payments attached to a load.
func (r *PaymentRepository) ListByLoad(ctx context.Context, loadID int) ([]*models.Payment, error) {
	return r.query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE load_id=$1 AND deleted_at IS NULL ORDER BY id`, loadID)
}

func (r *PaymentRepository) query(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	db := conn(ctx, r.DB)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	ids := []int{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byOwner, err := paymentInstallments.listMany(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if in, ok := byOwner[p.ID]; ok {
			p.Installments = in
		}
	}
	return payments, nil
}

// Update writes header fields and the derived ledger figures.
func (r *PaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE payments SET payer=$1, payer_id=$2, payee=$3, payee_id=$4, driver_id=$5,
		 vehicle_type=$6, plate_no=$7, from_location=$8, to_location=$9, payment_date=$10, notes=$11,
		 total_amount=$12, paid_amount=$13, due_amount=$14, status=$15, updated_at=NOW()
		 WHERE id=$16 AND deleted_at IS NULL`,
		p.Payer, p.PayerID, p.Payee, p.PayeeID, p.DriverID,
		p.VehicleType, p.PlateNo, p.FromLocation, p.ToLocation, p.PaymentDate, p.Notes,
		p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("payment", p.ID)
	}
	return nil
}

// SetRelated points a payment at the other leg of its rental transaction.
func (r *PaymentRepository) SetRelated(ctx context.Context, id, relatedID int) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE payments SET related_payment_id=$1, updated_at=NOW() WHERE id=$2 AND deleted_at IS NULL`,
		relatedID, id)
	if err != nil {
		return fmt.Errorf("failed to link payment %d to %d: %w", id, relatedID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("payment", id)
	}
	return nil
}

func (r *PaymentRepository) SoftDelete(ctx context.Context, id int) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE payments SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("payment", id)
	}
	return nil
}

func (r *PaymentRepository) Lock(ctx context.Context, id int) error {
	var locked int
	err := conn(ctx, r.DB).QueryRow(ctx,
		`SELECT id FROM payments WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return wrapNotFound(err, "payment", id)
	}
	return nil
}

func (r *PaymentRepository) SaveTotals(ctx context.Context, id int, acc *ledger.Account) error {
	_, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE payments SET total_amount=$1, paid_amount=$2, due_amount=$3, status=$4, updated_at=NOW()
		 WHERE id=$5`,
		acc.TotalAmount, acc.PaidAmount, acc.DueAmount, acc.Status, id)
	if err != nil {
		return fmt.Errorf("failed to save payment totals: %w", err)
	}
	return nil
}

func (r *PaymentRepository) InsertInstallment(ctx context.Context, paymentID int, in *ledger.Installment) error {
	return paymentInstallments.insert(ctx, conn(ctx, r.DB), paymentID, in)
}

func (r *PaymentRepository) UpdateInstallment(ctx context.Context, paymentID int, in *ledger.Installment) error {
	return paymentInstallments.update(ctx, conn(ctx, r.DB), paymentID, in)
}

func (r *PaymentRepository) DeleteInstallment(ctx context.Context, paymentID, installmentID int) error {
	return paymentInstallments.delete(ctx, conn(ctx, r.DB), paymentID, installmentID)
}

func (r *PaymentRepository) Reconcile(ctx context.Context) (int64, error) {
	tag, err := conn(ctx, r.DB).Exec(ctx, reconcileSQL("payments", paymentInstallments))
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile payments: %w", err)
	}
	return tag.RowsAffected(), nil
}
