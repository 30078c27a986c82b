package services

import (
	"context"
	"log"
	"strings"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"
	"fleet-backend/internal/validation"
)

// VehicleService registers vehicles. A vehicle bought with a cost gets an
// acquisition payment from its company to the broker.
type VehicleService struct {
	Tx         Transactor
	Vehicles   VehicleStore
	Companies  CompanyStore
	Payments   PaymentStore
	Codes      *CodeService
	BrokerName string
}

func NewVehicleService(tx Transactor, vehicles VehicleStore, companies CompanyStore, payments PaymentStore, codes *CodeService, brokerName string) *VehicleService {
	return &VehicleService{
		Tx:         tx,
		Vehicles:   vehicles,
		Companies:  companies,
		Payments:   payments,
		Codes:      codes,
		BrokerName: brokerName,
	}
}

func (s *VehicleService) Create(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if req.AcquisitionCost.IsNegative() {
		fields["acquisition_cost"] = "must not be negative"
	}
	if req.AcquisitionCost.IsPositive() && req.CompanyID == nil {
		fields["company_id"] = "is required when acquisition_cost is set"
	}
	acquired := timeutil.Now()
	if req.AcquisitionDate != "" {
		t, err := timeutil.ParseDate(req.AcquisitionDate)
		if err != nil {
			fields["acquisition_date"] = "must be a valid date"
		}
		acquired = t
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldValidation(fields)
	}

	var company *models.Company
	if req.CompanyID != nil {
		c, err := s.Companies.Get(ctx, *req.CompanyID)
		if err != nil {
			return nil, err
		}
		company = c
	}

	v := &models.Vehicle{
		PlateNo:         strings.TrimSpace(req.PlateNo),
		VehicleType:     strings.TrimSpace(req.VehicleType),
		Model:           req.Model,
		CompanyID:       req.CompanyID,
		Status:          models.VehicleAvailable,
		AcquisitionCost: req.AcquisitionCost,
		AcquisitionDate: &acquired,
	}
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Vehicles.Create(ctx, v); err != nil {
			return err
		}
		if !v.AcquisitionCost.IsPositive() {
			return nil
		}
		p := &models.Payment{
			PaymentType: models.PaymentVehicleAcquisition,
			Payer:       company.Name,
			PayerID:     &company.ID,
			Payee:       s.BrokerName,
			CompanyID:   &company.ID,
			VehicleID:   &v.ID,
			VehicleType: v.VehicleType,
			PlateNo:     v.PlateNo,
			PaymentDate: acquired,
		}
		p.TotalAmount = v.AcquisitionCost
		return createPayment(ctx, s.Codes, s.Payments, p)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateLedgerCaches(ctx)
	log.Printf("[Fleet] vehicle %s registered", v.PlateNo)
	return v, nil
}

func (s *VehicleService) Get(ctx context.Context, id int) (*models.Vehicle, error) {
	return s.Vehicles.Get(ctx, id)
}

func (s *VehicleService) List(ctx context.Context) ([]*models.Vehicle, error) {
	return s.Vehicles.List(ctx)
}
