package services

import (
	"context"
	"log"
	"strings"

	"fleet-backend/internal/models"
	"fleet-backend/internal/validation"
)

type CompanyService struct {
	Tx        Transactor
	Companies CompanyStore
	Codes     *CodeService
}

func NewCompanyService(tx Transactor, companies CompanyStore, codes *CodeService) *CompanyService {
	return &CompanyService{Tx: tx, Companies: companies, Codes: codes}
}

// createCompany issues a company code and inserts the company.
func createCompany(ctx context.Context, codes *CodeService, store CompanyStore, nc *models.NewCompany) (*models.Company, error) {
	code, err := codes.NextCompanyCode(ctx)
	if err != nil {
		return nil, err
	}
	c := &models.Company{
		Code:     code,
		Name:     strings.TrimSpace(nc.Name),
		Phone:    nc.Phone,
		Email:    nc.Email,
		Address:  nc.Address,
		CRNumber: nc.CRNumber,
	}
	if err := store.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("[Fleet] company %s created: %s", c.Code, c.Name)
	return c, nil
}

func (s *CompanyService) Create(ctx context.Context, req *models.NewCompany) (*models.Company, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var c *models.Company
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = createCompany(ctx, s.Codes, s.Companies, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, id int) (*models.Company, error) {
	return s.Companies.Get(ctx, id)
}

func (s *CompanyService) List(ctx context.Context) ([]*models.Company, error) {
	return s.Companies.List(ctx)
}
