package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-backend/internal/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the part of *pgxpool.Pool the repositories use.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

// conn returns the transaction carried by ctx, falling back to the pool.
func conn(ctx context.Context, pool Pool) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// TxManager runs a function inside one database transaction. Repository
// calls made with the context handed to fn join that transaction.
type TxManager struct {
	DB Pool
}

func NewTxManager(db Pool) *TxManager {
	return &TxManager{DB: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// wrapNotFound turns pgx.ErrNoRows into a NotFoundError and wraps anything else.
func wrapNotFound(err error, entity string, key any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(entity, key)
	}
	return fmt.Errorf("failed to load %s %v: %w", entity, key, err)
}

// isUniqueViolation reports a unique-constraint failure (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// filterBuilder accumulates WHERE clauses and positional arguments.
type filterBuilder struct {
	clauses []string
	args    []any
}

func (f *filterBuilder) add(clause string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, fmt.Sprintf(clause, len(f.args)))
}

func (f *filterBuilder) where(base string) string {
	if len(f.clauses) == 0 {
		return base
	}
	out := base
	for i, c := range f.clauses {
		if i == 0 && !strings.Contains(base, "WHERE") {
			out += " WHERE " + c
			continue
		}
		out += " AND " + c
	}
	return out
}
