package services

import (
	"context"
	"log"
	"strings"

	"fleet-backend/internal/models"
	"fleet-backend/internal/validation"
)

type DriverService struct {
	Tx      Transactor
	Drivers DriverStore
	Codes   *CodeService
}

func NewDriverService(tx Transactor, drivers DriverStore, codes *CodeService) *DriverService {
	return &DriverService{Tx: tx, Drivers: drivers, Codes: codes}
}

// createDriver issues a driver code and inserts the driver.
func createDriver(ctx context.Context, codes *CodeService, store DriverStore, nd *models.NewDriver) (*models.Driver, error) {
	code, err := codes.NextDriverCode(ctx)
	if err != nil {
		return nil, err
	}
	d := &models.Driver{
		Code:          code,
		Name:          strings.TrimSpace(nd.Name),
		IqamaID:       strings.TrimSpace(nd.IqamaID),
		Phone:         nd.Phone,
		LicenseNumber: nd.LicenseNumber,
		Nationality:   nd.Nationality,
	}
	if err := store.Create(ctx, d); err != nil {
		return nil, err
	}
	log.Printf("[Fleet] driver %s created: %s", d.Code, d.Name)
	return d, nil
}

func (s *DriverService) Create(ctx context.Context, req *models.NewDriver) (*models.Driver, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var d *models.Driver
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = createDriver(ctx, s.Codes, s.Drivers, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DriverService) Get(ctx context.Context, id int) (*models.Driver, error) {
	return s.Drivers.Get(ctx, id)
}

func (s *DriverService) List(ctx context.Context) ([]*models.Driver, error) {
	return s.Drivers.List(ctx)
}
