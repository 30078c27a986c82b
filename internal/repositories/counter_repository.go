package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-backend/internal/codegen"

	"github.com/jackc/pgx/v5"
)

// CounterRepository hands out code numbers from the code_counters table.
// Each family has one row; the increment and read happen in one statement.
type CounterRepository struct {
	DB Pool
}

func NewCounterRepository(db Pool) *CounterRepository {
	return &CounterRepository{DB: db}
}

// Next returns the next number for f. The first call for a family seeds
// the counter from the newest code already stored for it.
func (r *CounterRepository) Next(ctx context.Context, f codegen.Family) (int64, error) {
	db := conn(ctx, r.DB)

	var n int64
	err := db.QueryRow(ctx,
		`UPDATE code_counters SET value = value + 1, updated_at = NOW()
		 WHERE family = $1
		 RETURNING value`, f.Name).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to advance counter %s: %w", f.Name, err)
	}

	seed, err := r.seed(ctx, db, f)
	if err != nil {
		return 0, err
	}

	// A concurrent first caller may have inserted the row; fall through to increment.
	err = db.QueryRow(ctx,
		`INSERT INTO code_counters (family, value) VALUES ($1, $2)
		 ON CONFLICT (family) DO UPDATE SET value = code_counters.value + 1, updated_at = NOW()
		 RETURNING value`, f.Name, seed).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to seed counter %s: %w", f.Name, err)
	}
	return n, nil
}

func (r *CounterRepository) seed(ctx context.Context, db DBTX, f codegen.Family) (int64, error) {
	table, column := codeSource(f)
	if table == "" {
		return f.Start, nil
	}

	var last string
	err := db.QueryRow(ctx, fmt.Sprintf(
		`SELECT %[2]s FROM %[1]s WHERE %[2]s ~ $1 ORDER BY id DESC LIMIT 1`, table, column),
		f.SQLPattern()).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return f.Start, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan last %s code: %w", f.Name, err)
	}
	return f.NextNumber(last), nil
}

func codeSource(f codegen.Family) (table, column string) {
	switch {
	case f.Name == codegen.Company.Name:
		return "companies", "code"
	case f.Name == codegen.Driver.Name:
		return "drivers", "code"
	case f.Name == codegen.Receipt.Name:
		return "payments", "receipt_code"
	case strings.HasPrefix(f.Name, "rental:"):
		return "loads", "rental_code"
	}
	return "", ""
}
