package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"
)

// installmentTable reads and writes one child table of installments
// (bill_installments or payment_installments).
type installmentTable struct {
	table    string
	ownerCol string
}

var (
	billInstallments    = installmentTable{table: "bill_installments", ownerCol: "bill_id"}
	paymentInstallments = installmentTable{table: "payment_installments", ownerCol: "payment_id"}
)

func (t installmentTable) list(ctx context.Context, db DBTX, ownerID int) ([]ledger.Installment, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(
		`SELECT id, amount, paid_date, notes, created_at
		 FROM %s WHERE %s=$1 ORDER BY paid_date, id`, t.table, t.ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	installments := []ledger.Installment{}
	for rows.Next() {
		var in ledger.Installment
		if err := rows.Scan(&in.ID, &in.Amount, &in.PaidDate, &in.Notes, &in.CreatedAt); err != nil {
			return nil, err
		}
		installments = append(installments, in)
	}
	return installments, rows.Err()
}

// listMany loads installments for several owners in one query.
func (t installmentTable) listMany(ctx context.Context, db DBTX, ownerIDs []int) (map[int][]ledger.Installment, error) {
	out := make(map[int][]ledger.Installment, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	rows, err := db.Query(ctx, fmt.Sprintf(
		`SELECT %s, id, amount, paid_date, notes, created_at
		 FROM %s WHERE %s = ANY($1) ORDER BY paid_date, id`, t.ownerCol, t.table, t.ownerCol), ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner int
		var in ledger.Installment
		if err := rows.Scan(&owner, &in.ID, &in.Amount, &in.PaidDate, &in.Notes, &in.CreatedAt); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], in)
	}
	return out, rows.Err()
}

func (t installmentTable) insert(ctx context.Context, db DBTX, ownerID int, in *ledger.Installment) error {
	err := db.QueryRow(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s, amount, paid_date, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`, t.table, t.ownerCol),
		ownerID, in.Amount, in.PaidDate, in.Notes,
	).Scan(&in.ID, &in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert installment: %w", err)
	}
	return nil
}

func (t installmentTable) update(ctx context.Context, db DBTX, ownerID int, in *ledger.Installment) error {
	tag, err := db.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET amount=$1, paid_date=$2, notes=$3
		 WHERE id=$4 AND %s=$5`, t.table, t.ownerCol),
		in.Amount, in.PaidDate, in.Notes, in.ID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("installment", in.ID)
	}
	return nil
}

func (t installmentTable) delete(ctx context.Context, db DBTX, ownerID, installmentID int) error {
	tag, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1 AND %s=$2`, t.table, t.ownerCol),
		installmentID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("installment", installmentID)
	}
	return nil
}

// reconcileSQL repairs stored paid/due/status wherever they disagree with a
// fresh re-sum of the installments.
func reconcileSQL(parent string, t installmentTable) string {
	return fmt.Sprintf(`
		WITH sums AS (
			SELECT p.id, COALESCE(SUM(i.amount), 0) AS paid
			FROM %[1]s p
			LEFT JOIN %[2]s i ON i.%[3]s = p.id
			GROUP BY p.id
		), derived AS (
			SELECT s.id, s.paid, p.total_amount - s.paid AS due,
				CASE
					WHEN s.paid = 0 THEN 'unpaid'
					WHEN s.paid >= p.total_amount THEN 'paid'
					ELSE 'partial'
				END AS status
			FROM sums s JOIN %[1]s p ON p.id = s.id
		)
		UPDATE %[1]s p
		SET paid_amount = d.paid, due_amount = d.due, status = d.status, updated_at = NOW()
		FROM derived d
		WHERE p.id = d.id
		  AND (p.paid_amount <> d.paid OR p.due_amount <> d.due OR p.status <> d.status)`,
		parent, t.table, t.ownerCol)
}
