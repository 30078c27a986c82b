package services

import (
	"context"
	"strings"

	"fleet-backend/internal/models"
	"fleet-backend/internal/validation"
)

type CustomerService struct {
	Customers CustomerStore
}

func NewCustomerService(customers CustomerStore) *CustomerService {
	return &CustomerService{Customers: customers}
}

func (s *CustomerService) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Address:   strings.TrimSpace(req.Address),
		VATNumber: req.VATNumber,
		Notes:     req.Notes,
	}
	if err := s.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, id int) (*models.Customer, error) {
	return s.Customers.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]*models.Customer, error) {
	return s.Customers.List(ctx)
}
