package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"
	"fleet-backend/internal/validation"
)

// TransactionService creates and edits rental transactions: a load plus an
// acquisition payment (company to broker) and a rental payment (driver to
// company) that point at each other.
type TransactionService struct {
	Tx         Transactor
	Companies  CompanyStore
	Drivers    DriverStore
	Vehicles   VehicleStore
	Loads      LoadStore
	Payments   PaymentStore
	Codes      *CodeService
	BrokerName string
}

func NewTransactionService(tx Transactor, companies CompanyStore, drivers DriverStore, vehicles VehicleStore,
	loads LoadStore, payments PaymentStore, codes *CodeService, brokerName string) *TransactionService {
	return &TransactionService{
		Tx:         tx,
		Companies:  companies,
		Drivers:    drivers,
		Vehicles:   vehicles,
		Loads:      loads,
		Payments:   payments,
		Codes:      codes,
		BrokerName: brokerName,
	}
}

// Create converts the flat request body and runs CreateFromInput.
func (s *TransactionService) Create(ctx context.Context, req *models.RentalTransactionRequest) (*models.RentalTransactionResult, error) {
	in, err := req.Input(timeutil.Now())
	if err != nil {
		metrics.RentalTransactions.WithLabelValues("rejected").Inc()
		return nil, err
	}
	return s.CreateFromInput(ctx, in)
}

// CreateFromInput resolves the company and driver, creates the load and both
// payment legs, and links the legs, all in one transaction. Any failure
// leaves nothing behind.
func (s *TransactionService) CreateFromInput(ctx context.Context, in *models.RentalTransactionInput) (*models.RentalTransactionResult, error) {
	if err := validateRefs(in); err != nil {
		metrics.RentalTransactions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	var res models.RentalTransactionResult
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		company, createdCompany, err := s.resolveCompany(ctx, in.Company)
		if err != nil {
			return err
		}
		driver, createdDriver, err := s.resolveDriver(ctx, in.Driver)
		if err != nil {
			return err
		}
		if in.VehicleID != nil {
			v, err := s.Vehicles.Get(ctx, *in.VehicleID)
			if err != nil {
				return err
			}
			if v.Status != models.VehicleAvailable {
				return apperrors.BusinessRule("vehicle %s is %s", v.PlateNo, v.Status)
			}
		}

		code, err := s.Codes.NextRentalCode(ctx, in.RentalDate)
		if err != nil {
			return err
		}
		rentalDate := in.RentalDate
		load := &models.Load{
			RentalCode:      code,
			VehicleID:       in.VehicleID,
			VehicleType:     in.VehicleType,
			PlateNo:         in.PlateNo,
			CompanyID:       &company.ID,
			DriverID:        &driver.ID,
			FromLocation:    in.FromLocation,
			ToLocation:      in.ToLocation,
			RentalType:      models.RentalPerJob,
			RentalPrice:     in.RentalAmount,
			StartDate:       &rentalDate,
			AcquisitionCost: in.AcquisitionCost,
			Status:          models.LoadAssigned,
			Notes:           in.Notes,
		}
		if err := load.Price(); err != nil {
			return err
		}
		if err := s.Loads.Create(ctx, load); err != nil {
			return err
		}
		if in.VehicleID != nil {
			if err := s.Vehicles.UpdateStatus(ctx, *in.VehicleID, models.VehicleRented); err != nil {
				return err
			}
		}

		acquisition := &models.Payment{
			PaymentType:  models.PaymentVehicleAcquisition,
			Payer:        company.Name,
			PayerID:      &company.ID,
			Payee:        s.BrokerName,
			CompanyID:    &company.ID,
			DriverID:     &driver.ID,
			VehicleID:    in.VehicleID,
			LoadID:       &load.ID,
			VehicleType:  in.VehicleType,
			PlateNo:      in.PlateNo,
			FromLocation: in.FromLocation,
			ToLocation:   in.ToLocation,
			PaymentDate:  in.AcquisitionDate,
			Notes:        in.Notes,
		}
		acquisition.TotalAmount = in.AcquisitionCost
		if err := createPayment(ctx, s.Codes, s.Payments, acquisition); err != nil {
			return err
		}

		rental := &models.Payment{
			PaymentType:      models.PaymentDriverRental,
			Payer:            driver.Name,
			PayerID:          &driver.ID,
			Payee:            company.Name,
			PayeeID:          &company.ID,
			CompanyID:        &company.ID,
			DriverID:         &driver.ID,
			VehicleID:        in.VehicleID,
			LoadID:           &load.ID,
			RelatedPaymentID: &acquisition.ID,
			VehicleType:      in.VehicleType,
			PlateNo:          in.PlateNo,
			FromLocation:     in.FromLocation,
			ToLocation:       in.ToLocation,
			PaymentDate:      in.RentalDate,
			Notes:            in.Notes,
		}
		rental.TotalAmount = in.RentalAmount
		if err := createPayment(ctx, s.Codes, s.Payments, rental); err != nil {
			return err
		}

		// Second half of the link: the acquisition leg points back at the rental leg.
		if err := s.Payments.SetRelated(ctx, acquisition.ID, rental.ID); err != nil {
			return err
		}
		acquisition.RelatedPaymentID = &rental.ID

		res = models.RentalTransactionResult{
			Company: models.EntityRef{ID: company.ID, Code: company.Code, Name: company.Name, Created: createdCompany},
			Driver:  models.EntityRef{ID: driver.ID, Code: driver.Code, Name: driver.Name, Created: createdDriver},
			Load: models.LoadRef{
				ID:           load.ID,
				RentalCode:   load.RentalCode,
				FromLocation: load.FromLocation,
				ToLocation:   load.ToLocation,
				Status:       load.Status,
			},
			AcquisitionPayment: acquisition.Summary(),
			RentalPayment:      rental.Summary(),
		}
		return nil
	})
	if err != nil {
		metrics.RentalTransactions.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.RentalTransactions.WithLabelValues("created").Inc()
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Transaction] %s created: company %s, driver %s, payments %s/%s",
		res.Load.RentalCode, res.Company.Code, res.Driver.Code,
		res.AcquisitionPayment.ReceiptCode, res.RentalPayment.ReceiptCode)
	return &res, nil
}

func validateRefs(in *models.RentalTransactionInput) error {
	if in.Company.New != nil {
		if err := validation.Struct(in.Company.New); err != nil {
			return err
		}
	}
	if in.Driver.New != nil {
		if err := validation.Struct(in.Driver.New); err != nil {
			return err
		}
	}
	return nil
}

// resolveCompany fetches the referenced company or finds one by exact name,
// creating it when no match exists.
func (s *TransactionService) resolveCompany(ctx context.Context, ref models.CompanyRef) (*models.Company, bool, error) {
	if ref.ID != nil {
		c, err := s.Companies.Get(ctx, *ref.ID)
		return c, false, err
	}
	c, err := s.Companies.FindByName(ctx, strings.TrimSpace(ref.New.Name))
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}
	c, err = createCompany(ctx, s.Codes, s.Companies, ref.New)
	return c, err == nil, err
}

// resolveDriver fetches the referenced driver or finds one by iqama id,
// creating it when no match exists.
func (s *TransactionService) resolveDriver(ctx context.Context, ref models.DriverRef) (*models.Driver, bool, error) {
	if ref.ID != nil {
		d, err := s.Drivers.Get(ctx, *ref.ID)
		return d, false, err
	}
	d, err := s.Drivers.FindByIqama(ctx, strings.TrimSpace(ref.New.IqamaID))
	if err == nil {
		return d, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}
	d, err = createDriver(ctx, s.Codes, s.Drivers, ref.New)
	return d, err == nil, err
}

// findLoad accepts a numeric id or a rental code.
func (s *TransactionService) findLoad(ctx context.Context, idOrCode string) (*models.Load, error) {
	idOrCode = strings.TrimSpace(idOrCode)
	if id, err := strconv.Atoi(idOrCode); err == nil {
		return s.Loads.Get(ctx, id)
	}
	return s.Loads.GetByRentalCode(ctx, idOrCode)
}

// Get returns the load with both payment legs. A leg that was never created
// or has been deleted is nil.
func (s *TransactionService) Get(ctx context.Context, idOrCode string) (*models.RentalTransaction, error) {
	load, err := s.findLoad(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments.ListByLoad(ctx, load.ID)
	if err != nil {
		return nil, err
	}
	tx := &models.RentalTransaction{Load: load}
	for _, p := range payments {
		switch p.PaymentType {
		case models.PaymentVehicleAcquisition:
			if tx.AcquisitionPayment == nil {
				tx.AcquisitionPayment = p
			}
		case models.PaymentDriverRental:
			if tx.RentalPayment == nil {
				tx.RentalPayment = p
			}
		}
	}
	return tx, nil
}

type transactionPatch struct {
	acquisitionDate *time.Time
	rentalDate      *time.Time
}

func parseTransactionPatch(req *models.UpdateRentalTransactionRequest) (*transactionPatch, error) {
	fields := map[string]string{}
	if req.AcquisitionCost != nil && req.AcquisitionCost.IsNegative() {
		fields["acquisition_cost"] = "must not be negative"
	}
	if req.RentalAmount != nil && req.RentalAmount.IsNegative() {
		fields["rental_amount"] = "must not be negative"
	}
	for name, v := range map[string]*string{"from_location": req.FromLocation, "to_location": req.ToLocation, "vehicle_type": req.VehicleType} {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields[name] = "must not be empty"
		}
	}
	patch := &transactionPatch{}
	if req.AcquisitionDate != nil {
		t, err := timeutil.ParseDate(*req.AcquisitionDate)
		if err != nil {
			fields["acquisition_date"] = "must be a valid date"
		}
		patch.acquisitionDate = &t
	}
	if req.RentalDate != nil {
		t, err := timeutil.ParseDate(*req.RentalDate)
		if err != nil {
			fields["rental_date"] = "must be a valid date"
		}
		patch.rentalDate = &t
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation(fields)
	}
	return patch, nil
}

// Update patches the load and then each linked payment on its own. An
// amount change is checked against that leg's paid amount only.
func (s *TransactionService) Update(ctx context.Context, idOrCode string, req *models.UpdateRentalTransactionRequest) (*models.RentalTransaction, error) {
	patch, err := parseTransactionPatch(req)
	if err != nil {
		return nil, err
	}

	var loadID int
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.findLoad(ctx, idOrCode)
		if err != nil {
			return err
		}
		if err := s.Loads.Lock(ctx, found.ID); err != nil {
			return err
		}
		load, err := s.Loads.Get(ctx, found.ID)
		if err != nil {
			return err
		}
		loadID = load.ID

		setString(&load.VehicleType, req.VehicleType)
		setString(&load.PlateNo, req.PlateNo)
		setString(&load.FromLocation, req.FromLocation)
		setString(&load.ToLocation, req.ToLocation)
		if req.Notes != nil {
			load.Notes = *req.Notes
		}
		if req.AcquisitionCost != nil {
			load.AcquisitionCost = *req.AcquisitionCost
		}
		if req.RentalAmount != nil {
			load.RentalAmount = *req.RentalAmount
			if load.RentalType == models.RentalPerJob {
				load.RentalPrice = *req.RentalAmount
			}
		}
		if patch.rentalDate != nil {
			load.StartDate = patch.rentalDate
		}
		if err := s.Loads.Update(ctx, load); err != nil {
			return err
		}

		payments, err := s.Payments.ListByLoad(ctx, load.ID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if err := s.patchLeg(ctx, p.ID, req, patch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Transaction] load %d updated", loadID)
	return s.Get(ctx, strconv.Itoa(loadID))
}

func (s *TransactionService) patchLeg(ctx context.Context, id int, req *models.UpdateRentalTransactionRequest, patch *transactionPatch) error {
	if err := s.Payments.Lock(ctx, id); err != nil {
		return err
	}
	p, err := s.Payments.Get(ctx, id)
	if err != nil {
		return err
	}
	setString(&p.VehicleType, req.VehicleType)
	setString(&p.PlateNo, req.PlateNo)
	setString(&p.FromLocation, req.FromLocation)
	setString(&p.ToLocation, req.ToLocation)

	switch p.PaymentType {
	case models.PaymentVehicleAcquisition:
		if req.AcquisitionCost != nil {
			if err := p.SetTotal(*req.AcquisitionCost); err != nil {
				return err
			}
		}
		if patch.acquisitionDate != nil {
			p.PaymentDate = *patch.acquisitionDate
		}
	case models.PaymentDriverRental:
		if req.RentalAmount != nil {
			if err := p.SetTotal(*req.RentalAmount); err != nil {
				return err
			}
		}
		if patch.rentalDate != nil {
			p.PaymentDate = *patch.rentalDate
		}
	}
	return s.Payments.Update(ctx, p)
}
