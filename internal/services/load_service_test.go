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

func perJobLoad(price string) *models.CreateLoadRequest {
	return &models.CreateLoadRequest{
		VehicleType:  "Trailer",
		FromLocation: "Riyadh",
		ToLocation:   "Dammam",
		RentalType:   models.RentalPerJob,
		RentalPrice:  dec(price),
		StartDate:    "2026-06-01",
	}
}

func TestLoadCreatePricing(t *testing.T) {
	ctx := context.Background()

	t.Run("per day with an automatic rental payment", func(t *testing.T) {
		f := newFixture(t)
		l, err := f.loads.Create(ctx, &models.CreateLoadRequest{
			VehicleType:       "Trailer",
			FromLocation:      "Riyadh",
			ToLocation:        "Jeddah",
			RentalType:        models.RentalPerDay,
			RentalPricePerDay: dec("100"),
			StartDate:         "2026-06-01",
			EndDate:           "2026-06-04",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, l.DaysRented)
		assertAmount(t, "300", l.RentalAmount)
		assert.Equal(t, models.LoadPending, l.Status)
		assert.Equal(t, "RNT-2026-001", l.RentalCode)

		payments, err := f.store.Payments().ListByLoad(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, models.PaymentDriverRental, payments[0].PaymentType)
		assert.Equal(t, UnassignedPayer, payments[0].Payer)
		assert.Equal(t, "Broker", payments[0].Payee)
		assertAmount(t, "300", payments[0].TotalAmount)
	})

	t.Run("per km", func(t *testing.T) {
		f := newFixture(t)
		l, err := f.loads.Create(ctx, &models.CreateLoadRequest{
			VehicleType:  "Trailer",
			FromLocation: "Riyadh",
			ToLocation:   "Jeddah",
			RentalType:   models.RentalPerKm,
			PricePerKm:   dec("10"),
			DistanceKm:   dec("50"),
		})
		require.NoError(t, err)
		assertAmount(t, "500", l.RentalAmount)
	})

	t.Run("zero amount opens no payment", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.loads.Create(ctx, perJobLoad("0"))
		require.NoError(t, err)
		assert.Equal(t, 0, f.store.Payments().Count())
	})

	t.Run("per day without dates", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.loads.Create(ctx, &models.CreateLoadRequest{
			VehicleType:       "Trailer",
			FromLocation:      "Riyadh",
			ToLocation:        "Jeddah",
			RentalType:        models.RentalPerDay,
			RentalPricePerDay: dec("100"),
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Equal(t, 0, f.store.Loads().Count())
	})

	t.Run("unknown rental type", func(t *testing.T) {
		f := newFixture(t)
		req := perJobLoad("10")
		req.RentalType = "per_hour"
		_, err := f.loads.Create(ctx, req)
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "rental_type")
	})
}

func TestLoadCreateWithParties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c, d := seedParties(t, f)
	v, err := f.vehicles.Create(ctx, &models.CreateVehicleRequest{PlateNo: "KSA 100", VehicleType: "Lowbed"})
	require.NoError(t, err)

	req := perJobLoad("900")
	req.VehicleType = ""
	req.VehicleID = &v.ID
	req.CompanyID = &c.ID
	req.DriverID = &d.ID
	l, err := f.loads.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.LoadAssigned, l.Status)
	assert.Equal(t, "Lowbed", l.VehicleType)
	assert.Equal(t, "KSA 100", l.PlateNo)

	got, err := f.vehicles.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleRented, got.Status)

	payments, err := f.store.Payments().ListByLoad(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, d.Name, payments[0].Payer)
	assert.Equal(t, c.Name, payments[0].Payee)

	_, err = f.loads.Create(ctx, req)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule), "rented vehicle cannot take a second load")
}

func TestLoadStateMachine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, d := seedParties(t, f)
	v, err := f.vehicles.Create(ctx, &models.CreateVehicleRequest{PlateNo: "KSA 200", VehicleType: "Trailer"})
	require.NoError(t, err)

	req := perJobLoad("400")
	req.VehicleID = &v.ID
	l, err := f.loads.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, models.LoadPending, l.Status)

	_, err = f.loads.StartTransit(ctx, l.ID)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule), "pending cannot go in transit")

	l, err = f.loads.AssignDriver(ctx, l.ID, &models.AssignDriverRequest{DriverID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, models.LoadAssigned, l.Status)
	require.NotNil(t, l.DriverID)
	assert.Equal(t, d.ID, *l.DriverID)

	payments, err := f.store.Payments().ListByLoad(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, d.Name, payments[0].Payer)

	veh, err := f.vehicles.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleRented, veh.Status)

	l, err = f.loads.StartTransit(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoadInTransit, l.Status)

	_, err = f.loads.Cancel(ctx, l.ID)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule), "in-transit cannot be cancelled")

	l, err = f.loads.Complete(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoadCompleted, l.Status)
	assert.NotNil(t, l.EndDate)

	veh, err = f.vehicles.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, veh.Status)

	_, err = f.loads.AssignDriver(ctx, l.ID, &models.AssignDriverRequest{DriverID: d.ID})
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule), "completed is terminal")
}

func TestLoadCancelReleasesVehicle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, d := seedParties(t, f)
	v, err := f.vehicles.Create(ctx, &models.CreateVehicleRequest{PlateNo: "KSA 300", VehicleType: "Trailer"})
	require.NoError(t, err)

	req := perJobLoad("400")
	req.VehicleID = &v.ID
	req.DriverID = &d.ID
	l, err := f.loads.Create(ctx, req)
	require.NoError(t, err)

	l, err = f.loads.Cancel(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoadCancelled, l.Status)

	veh, err := f.vehicles.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, veh.Status)
}

func TestLoadDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("payment with installments blocks deletion", func(t *testing.T) {
		f := newFixture(t)
		l, err := f.loads.Create(ctx, perJobLoad("400"))
		require.NoError(t, err)
		payments, err := f.store.Payments().ListByLoad(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		_, err = f.payments.AddInstallment(ctx, payments[0].ID, installment("100", "2026-06-02"))
		require.NoError(t, err)

		err = f.loads.Delete(ctx, l.ID)
		assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))
		_, err = f.loads.Get(ctx, l.ID)
		assert.NoError(t, err)
	})

	t.Run("unpaid load is removed with its payments", func(t *testing.T) {
		f := newFixture(t)
		l, err := f.loads.Create(ctx, perJobLoad("400"))
		require.NoError(t, err)
		payments, err := f.store.Payments().ListByLoad(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)

		require.NoError(t, f.loads.Delete(ctx, l.ID))
		_, err = f.loads.Get(ctx, l.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		_, err = f.payments.Get(ctx, payments[0].ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("missing load", func(t *testing.T) {
		f := newFixture(t)
		assert.True(t, errors.Is(f.loads.Delete(ctx, 42), apperrors.ErrNotFound))
	})
}

func TestLoadList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first, err := f.loads.Create(ctx, perJobLoad("100"))
	require.NoError(t, err)
	second, err := f.loads.Create(ctx, perJobLoad("200"))
	require.NoError(t, err)
	_, err = f.loads.Cancel(ctx, first.ID)
	require.NoError(t, err)

	all, err := f.loads.List(ctx, models.LoadFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	pending, err := f.loads.List(ctx, models.LoadFilter{Status: models.LoadPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "RNT-2026-002", pending[0].RentalCode)
}

// racingPayments records an installment from a separate transaction the first
// time a payment row is locked, the way a concurrent request would commit
// between a list and a lock.
type racingPayments struct {
	PaymentStore
	once func()
}

func (r *racingPayments) Lock(ctx context.Context, id int) error {
	if r.once != nil {
		fn := r.once
		r.once = nil
		fn()
	}
	return r.PaymentStore.Lock(ctx, id)
}

func racingLoadService(t *testing.T, f *fixture, paymentID *int) *LoadService {
	t.Helper()
	payments := &racingPayments{PaymentStore: f.store.Payments()}
	payments.once = func() {
		_, err := f.payments.AddInstallment(context.Background(), *paymentID, installment("100", "2026-06-02"))
		require.NoError(t, err)
	}
	s := f.store
	return NewLoadService(s, s.Loads(), s.Vehicles(), s.Companies(), s.Drivers(), payments, f.codes, "Broker")
}

func TestLoadPaymentWritesSeeConcurrentInstallments(t *testing.T) {
	ctx := context.Background()

	t.Run("assign driver keeps totals in step with installments", func(t *testing.T) {
		f := newFixture(t)
		_, d := seedParties(t, f)
		l, err := f.loads.Create(ctx, perJobLoad("300"))
		require.NoError(t, err)
		linked, err := f.store.Payments().ListByLoad(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, linked, 1)
		paymentID := linked[0].ID

		svc := racingLoadService(t, f, &paymentID)
		_, err = svc.AssignDriver(ctx, l.ID, &models.AssignDriverRequest{DriverID: d.ID})
		require.NoError(t, err)

		p, err := f.store.Payments().Get(ctx, paymentID)
		require.NoError(t, err)
		assert.Len(t, p.Installments, 1)
		assertAmount(t, "100", p.PaidAmount)
		assertAmount(t, "200", p.DueAmount)
		assert.Equal(t, ledger.StatusPartial, p.Status)
		assert.True(t, p.Consistent())
		assert.Equal(t, "Ahmed", p.Payer)
	})

	t.Run("delete refuses a payment that just received an installment", func(t *testing.T) {
		f := newFixture(t)
		l, err := f.loads.Create(ctx, perJobLoad("300"))
		require.NoError(t, err)
		linked, err := f.store.Payments().ListByLoad(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, linked, 1)
		paymentID := linked[0].ID

		svc := racingLoadService(t, f, &paymentID)
		err = svc.Delete(ctx, l.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))

		_, err = f.store.Loads().Get(ctx, l.ID)
		assert.NoError(t, err)
	})
}
