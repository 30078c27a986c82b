package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleet-backend/internal/codegen"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/timeutil"
)

// CodeService issues company, driver, rental and receipt codes.
type CodeService struct {
	Counters CounterStore
}

func NewCodeService(counters CounterStore) *CodeService {
	return &CodeService{Counters: counters}
}

// Next returns the next code in f. Inside a transaction the counter
// advance rolls back with it.
func (s *CodeService) Next(ctx context.Context, f codegen.Family) (string, error) {
	n, err := s.Counters.Next(ctx, f)
	if err != nil {
		return "", fmt.Errorf("failed to issue %s code: %w", f.Name, err)
	}
	metrics.CodesIssued.WithLabelValues(familyLabel(f)).Inc()
	return f.Format(n), nil
}

func (s *CodeService) NextCompanyCode(ctx context.Context) (string, error) {
	return s.Next(ctx, codegen.Company)
}

func (s *CodeService) NextDriverCode(ctx context.Context) (string, error) {
	return s.Next(ctx, codegen.Driver)
}

func (s *CodeService) NextReceiptCode(ctx context.Context) (string, error) {
	return s.Next(ctx, codegen.Receipt)
}

// NextRentalCode numbers rentals within the business-timezone year of at.
func (s *CodeService) NextRentalCode(ctx context.Context, at time.Time) (string, error) {
	return s.Next(ctx, codegen.Rental(at.In(timeutil.Local).Year()))
}

// familyLabel drops the year from rental family names to keep label cardinality fixed.
func familyLabel(f codegen.Family) string {
	name, _, _ := strings.Cut(f.Name, ":")
	return name
}
