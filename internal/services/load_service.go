package services

import (
	"context"
	"log"
	"strings"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"
	"fleet-backend/internal/validation"
)

// UnassignedPayer stands in for the driver on a rental payment created
// before a driver is assigned.
const UnassignedPayer = "Unassigned"

// LoadService prices loads and drives the load state machine.
type LoadService struct {
	Tx         Transactor
	Loads      LoadStore
	Vehicles   VehicleStore
	Companies  CompanyStore
	Drivers    DriverStore
	Payments   PaymentStore
	Codes      *CodeService
	BrokerName string
}

func NewLoadService(tx Transactor, loads LoadStore, vehicles VehicleStore, companies CompanyStore,
	drivers DriverStore, payments PaymentStore, codes *CodeService, brokerName string) *LoadService {
	return &LoadService{
		Tx:         tx,
		Loads:      loads,
		Vehicles:   vehicles,
		Companies:  companies,
		Drivers:    drivers,
		Payments:   payments,
		Codes:      codes,
		BrokerName: brokerName,
	}
}

func parseOptionalDate(value, field string, fields map[string]string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		fields[field] = "must be a valid date"
		return nil
	}
	return &t
}

// Create prices the load, assigns a rental code and, when there is an amount
// to collect, opens the rental payment from driver to company.
func (s *LoadService) Create(ctx context.Context, req *models.CreateLoadRequest) (*models.Load, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	start := parseOptionalDate(req.StartDate, "start_date", fields)
	end := parseOptionalDate(req.EndDate, "end_date", fields)
	if req.AcquisitionCost.IsNegative() {
		fields["acquisition_cost"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation(fields)
	}

	load := &models.Load{
		VehicleID:         req.VehicleID,
		VehicleType:       strings.TrimSpace(req.VehicleType),
		PlateNo:           strings.TrimSpace(req.PlateNo),
		CompanyID:         req.CompanyID,
		DriverID:          req.DriverID,
		FromLocation:      strings.TrimSpace(req.FromLocation),
		ToLocation:        strings.TrimSpace(req.ToLocation),
		RentalType:        req.RentalType,
		RentalPricePerDay: req.RentalPricePerDay,
		RentalPrice:       req.RentalPrice,
		PricePerKm:        req.PricePerKm,
		DistanceKm:        req.DistanceKm,
		StartDate:         start,
		EndDate:           end,
		AcquisitionCost:   req.AcquisitionCost,
		Status:            models.LoadPending,
		Notes:             req.Notes,
	}
	if err := load.Price(); err != nil {
		return nil, err
	}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var vehicle *models.Vehicle
		if load.VehicleID != nil {
			v, err := s.Vehicles.Get(ctx, *load.VehicleID)
			if err != nil {
				return err
			}
			if v.Status != models.VehicleAvailable {
				return apperrors.BusinessRule("vehicle %s is %s", v.PlateNo, v.Status)
			}
			vehicle = v
			if load.VehicleType == "" {
				load.VehicleType = v.VehicleType
			}
			if load.PlateNo == "" {
				load.PlateNo = v.PlateNo
			}
		}
		var company *models.Company
		if load.CompanyID != nil {
			c, err := s.Companies.Get(ctx, *load.CompanyID)
			if err != nil {
				return err
			}
			company = c
		}
		var driver *models.Driver
		if load.DriverID != nil {
			d, err := s.Drivers.Get(ctx, *load.DriverID)
			if err != nil {
				return err
			}
			driver = d
			load.Status = models.LoadAssigned
		}

		codeDate := timeutil.Now()
		if load.StartDate != nil {
			codeDate = *load.StartDate
		}
		code, err := s.Codes.NextRentalCode(ctx, codeDate)
		if err != nil {
			return err
		}
		load.RentalCode = code
		if err := s.Loads.Create(ctx, load); err != nil {
			return err
		}
		if vehicle != nil && driver != nil {
			if err := s.Vehicles.UpdateStatus(ctx, vehicle.ID, models.VehicleRented); err != nil {
				return err
			}
		}

		if !load.RentalAmount.IsPositive() {
			return nil
		}
		p := &models.Payment{
			PaymentType:  models.PaymentDriverRental,
			Payer:        UnassignedPayer,
			Payee:        s.BrokerName,
			CompanyID:    load.CompanyID,
			DriverID:     load.DriverID,
			VehicleID:    load.VehicleID,
			LoadID:       &load.ID,
			VehicleType:  load.VehicleType,
			PlateNo:      load.PlateNo,
			FromLocation: load.FromLocation,
			ToLocation:   load.ToLocation,
			PaymentDate:  codeDate,
			Notes:        load.Notes,
		}
		if driver != nil {
			p.Payer, p.PayerID = driver.Name, &driver.ID
		}
		if company != nil {
			p.Payee, p.PayeeID = company.Name, &company.ID
		}
		p.TotalAmount = load.RentalAmount
		return createPayment(ctx, s.Codes, s.Payments, p)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Load] %s created (%s, %s)", load.RentalCode, load.RentalType, load.RentalAmount.StringFixed(2))
	return load, nil
}

func (s *LoadService) Get(ctx context.Context, id int) (*models.Load, error) {
	return s.Loads.Get(ctx, id)
}

func (s *LoadService) List(ctx context.Context, f models.LoadFilter) ([]*models.Load, error) {
	return s.Loads.List(ctx, f)
}

// transition locks the load, checks the state machine and runs apply before
// saving the new status.
func (s *LoadService) transition(ctx context.Context, id int, next models.LoadStatus, apply func(ctx context.Context, l *models.Load) error) (*models.Load, error) {
	var load *models.Load
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Loads.Lock(ctx, id); err != nil {
			return err
		}
		l, err := s.Loads.Get(ctx, id)
		if err != nil {
			return err
		}
		if !l.Status.CanTransitionTo(next) {
			return apperrors.BusinessRule("load %s cannot move from %s to %s", l.RentalCode, l.Status, next)
		}
		if apply != nil {
			if err := apply(ctx, l); err != nil {
				return err
			}
		}
		l.Status = next
		if err := s.Loads.Update(ctx, l); err != nil {
			return err
		}
		load = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Load] %s -> %s", load.RentalCode, next)
	return load, nil
}

func (s *LoadService) setVehicleStatus(ctx context.Context, l *models.Load, status models.VehicleStatus) error {
	if l.VehicleID == nil {
		return nil
	}
	return s.Vehicles.UpdateStatus(ctx, *l.VehicleID, status)
}

// lockedPayment takes the row lock and then reads the payment, so the totals
// written back include every installment committed before the lock.
func (s *LoadService) lockedPayment(ctx context.Context, id int) (*models.Payment, error) {
	if err := s.Payments.Lock(ctx, id); err != nil {
		return nil, err
	}
	return s.Payments.Get(ctx, id)
}

// AssignDriver moves a pending load to assigned, rents out its vehicle and
// makes the driver the payer of the linked rental payment.
func (s *LoadService) AssignDriver(ctx context.Context, id int, req *models.AssignDriverRequest) (*models.Load, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.LoadAssigned, func(ctx context.Context, l *models.Load) error {
		driver, err := s.Drivers.Get(ctx, req.DriverID)
		if err != nil {
			return err
		}
		l.DriverID = &driver.ID
		if err := s.setVehicleStatus(ctx, l, models.VehicleRented); err != nil {
			return err
		}

		payments, err := s.Payments.ListByLoad(ctx, l.ID)
		if err != nil {
			return err
		}
		for _, listed := range payments {
			if listed.PaymentType != models.PaymentDriverRental {
				continue
			}
			p, err := s.lockedPayment(ctx, listed.ID)
			if err != nil {
				return err
			}
			p.Payer, p.PayerID, p.DriverID = driver.Name, &driver.ID, &driver.ID
			if err := s.Payments.Update(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LoadService) StartTransit(ctx context.Context, id int) (*models.Load, error) {
	return s.transition(ctx, id, models.LoadInTransit, nil)
}

// Complete closes the load and releases its vehicle.
func (s *LoadService) Complete(ctx context.Context, id int) (*models.Load, error) {
	return s.transition(ctx, id, models.LoadCompleted, func(ctx context.Context, l *models.Load) error {
		if l.EndDate == nil {
			now := timeutil.Now()
			l.EndDate = &now
		}
		return s.setVehicleStatus(ctx, l, models.VehicleAvailable)
	})
}

func (s *LoadService) Cancel(ctx context.Context, id int) (*models.Load, error) {
	return s.transition(ctx, id, models.LoadCancelled, func(ctx context.Context, l *models.Load) error {
		return s.setVehicleStatus(ctx, l, models.VehicleAvailable)
	})
}

// Delete removes a load whose payments carry no installments. The linked
// payments are soft-deleted in the same transaction.
func (s *LoadService) Delete(ctx context.Context, id int) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Loads.Lock(ctx, id); err != nil {
			return err
		}
		l, err := s.Loads.Get(ctx, id)
		if err != nil {
			return err
		}
		listed, err := s.Payments.ListByLoad(ctx, id)
		if err != nil {
			return err
		}
		payments := make([]*models.Payment, 0, len(listed))
		for _, lp := range listed {
			p, err := s.lockedPayment(ctx, lp.ID)
			if err != nil {
				return err
			}
			payments = append(payments, p)
		}
		for _, p := range payments {
			if len(p.Installments) > 0 {
				return apperrors.BusinessRule("load %s has payment %s with recorded installments", l.RentalCode, p.ReceiptCode)
			}
		}
		for _, p := range payments {
			if err := s.Payments.SoftDelete(ctx, p.ID); err != nil {
				return err
			}
		}
		if l.Status == models.LoadAssigned || l.Status == models.LoadInTransit {
			if err := s.setVehicleStatus(ctx, l, models.VehicleAvailable); err != nil {
				return err
			}
		}
		return s.Loads.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Load] %d deleted", id)
	return nil
}
