package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repositories/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewAuditService(memstore.New().ActionLogs())
	for i := 1; i <= 3; i++ {
		svc.Record(ctx, &models.ActionLog{
			ActionType:  "create",
			TargetType:  "bill",
			TargetID:    intPtr(i),
			Description: fmt.Sprintf("bill %d", i),
		})
	}

	logs, err := svc.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "bill 3", logs[0].Description)
	assert.Equal(t, "bill 2", logs[1].Description)

	all, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCustomerCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(memstore.New().Customers())

	c, err := svc.Create(ctx, &models.CreateCustomerRequest{Name: " Fahad ", Phone: "0500000000"})
	require.NoError(t, err)
	assert.Equal(t, "Fahad", c.Name)

	_, err = svc.Create(ctx, &models.CreateCustomerRequest{Name: "No phone"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, &models.CreateCustomerRequest{Name: "Short VAT", Phone: "0500000001", VATNumber: "3001"})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "vat_number")

	vat, err := svc.Create(ctx, &models.CreateCustomerRequest{Name: "Najd Cement", Phone: "0500000002", Email: " Billing@Najd.SA ", VATNumber: "300123456700003"})
	require.NoError(t, err)
	assert.Equal(t, "billing@najd.sa", vat.Email)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
