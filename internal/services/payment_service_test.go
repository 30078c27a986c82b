package services

import (
	"context"
	"errors"
	"testing"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPaymentFixture(t *testing.T, f *fixture, total string) *models.Payment {
	t.Helper()
	p, err := f.payments.Create(context.Background(), &models.CreatePaymentRequest{
		PaymentType: models.PaymentDriverRental,
		Payer:       "Ahmed",
		Payee:       "Broker",
		TotalAmount: dec(total),
		PaymentDate: "2026-04-10",
	})
	require.NoError(t, err)
	return p
}

func TestPaymentCreateIssuesReceiptCodes(t *testing.T) {
	f := newFixture(t)
	first := createPaymentFixture(t, f, "800")
	second := createPaymentFixture(t, f, "200")

	assert.Equal(t, "ESSA1001", first.ReceiptCode)
	assert.Equal(t, "ESSA1002", second.ReceiptCode)
	assert.Equal(t, ledger.StatusUnpaid, first.Status)
	assertAmount(t, "800", first.DueAmount)
	assert.True(t, localDate(2026, 4, 10).Equal(first.PaymentDate))
}

func TestPaymentCreateValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing payer and payee", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.payments.Create(ctx, &models.CreatePaymentRequest{
			PaymentType: models.PaymentVehicleAcquisition,
			TotalAmount: dec("10"),
		})
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "payer")
		assert.Contains(t, verr.Fields, "payee")
		assert.Equal(t, 0, f.store.Payments().Count())
	})

	t.Run("negative total", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.payments.Create(ctx, &models.CreatePaymentRequest{
			PaymentType: models.PaymentVehicleAcquisition,
			Payer:       "Broker",
			Payee:       "Al Noor",
			TotalAmount: dec("-5"),
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("failed insert does not burn a receipt code", func(t *testing.T) {
		f := newFixture(t)
		f.store.FailOn("payments.create", errors.New("boom"))
		_, err := f.payments.Create(ctx, &models.CreatePaymentRequest{
			PaymentType: models.PaymentDriverRental,
			Payer:       "Ahmed",
			Payee:       "Broker",
			TotalAmount: dec("10"),
		})
		require.Error(t, err)

		f.store.FailOn("payments.create", nil)
		p := createPaymentFixture(t, f, "10")
		assert.Equal(t, "ESSA1001", p.ReceiptCode)
	})
}

func TestPaymentCreateOneLegPerTypePerLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	load, err := f.loads.Create(ctx, perJobLoad("900"))
	require.NoError(t, err)
	legs, err := f.store.Payments().ListByLoad(ctx, load.ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	rental := legs[0]

	leg := func(kind models.PaymentType) *models.CreatePaymentRequest {
		return &models.CreatePaymentRequest{
			PaymentType: kind,
			Payer:       "Ahmed",
			Payee:       "Broker",
			TotalAmount: dec("900"),
			LoadID:      &load.ID,
		}
	}

	_, err = f.payments.Create(ctx, leg(models.PaymentDriverRental))
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))
	assert.Equal(t, 1, f.store.Payments().Count())

	_, err = f.payments.Create(ctx, leg(models.PaymentVehicleAcquisition))
	require.NoError(t, err)
	_, err = f.payments.Create(ctx, leg(models.PaymentVehicleAcquisition))
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))

	// A soft-deleted leg no longer blocks its replacement.
	require.NoError(t, f.payments.Delete(ctx, rental.ID))
	_, err = f.payments.Create(ctx, leg(models.PaymentDriverRental))
	require.NoError(t, err)
}

func TestPaymentInstallments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := createPaymentFixture(t, f, "800")

	p, err := f.payments.AddInstallment(ctx, p.ID, installment("300", "2026-04-11"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, p.Status)
	require.Len(t, p.Installments, 1)

	_, err = f.payments.AddInstallment(ctx, p.ID, installment("501", "2026-04-12"))
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))

	p, err = f.payments.UpdateInstallment(ctx, p.ID, p.Installments[0].ID, installment("800", "2026-04-11"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, p.Status)

	p, err = f.payments.DeleteInstallment(ctx, p.ID, p.Installments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusUnpaid, p.Status)
	assertAmount(t, "800", p.DueAmount)
}

func TestPaymentUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := createPaymentFixture(t, f, "800")
	_, err := f.payments.AddInstallment(ctx, p.ID, installment("500", "2026-04-11"))
	require.NoError(t, err)

	_, err = f.payments.Update(ctx, p.ID, &models.UpdatePaymentRequest{TotalAmount: decPtr("400")})
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))

	got, err := f.payments.Update(ctx, p.ID, &models.UpdatePaymentRequest{
		TotalAmount: decPtr("500"),
		Payer:       strPtr("  Ahmed Ali "),
		PaymentDate: strPtr("2026-04-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, got.Status)
	assert.Equal(t, "Ahmed Ali", got.Payer)
	assert.True(t, localDate(2026, 4, 15).Equal(got.PaymentDate))
	assert.Equal(t, p.ReceiptCode, got.ReceiptCode)
}

func TestPaymentGetAttachesRelatedLeg(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := createPaymentFixture(t, f, "1000")
	b := createPaymentFixture(t, f, "1200")
	require.NoError(t, f.store.Payments().SetRelated(ctx, a.ID, b.ID))

	got, err := f.payments.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Related)
	assert.Equal(t, b.ReceiptCode, got.Related.ReceiptCode)
	assertAmount(t, "1200", got.Related.Amount)

	require.NoError(t, f.payments.Delete(ctx, b.ID))
	got, err = f.payments.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Related)
}

func TestPaymentList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createPaymentFixture(t, f, "100")
	_, err := f.payments.Create(ctx, &models.CreatePaymentRequest{
		PaymentType: models.PaymentVehicleAcquisition,
		Payer:       "Broker",
		Payee:       "Al Noor",
		TotalAmount: dec("50"),
		PaymentDate: "2026-04-09",
	})
	require.NoError(t, err)

	all, err := f.payments.List(ctx, models.PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	acq, err := f.payments.List(ctx, models.PaymentFilter{PaymentType: models.PaymentVehicleAcquisition})
	require.NoError(t, err)
	require.Len(t, acq, 1)
	assert.Equal(t, "Al Noor", acq[0].Payee)
}
