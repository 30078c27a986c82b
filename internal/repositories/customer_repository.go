package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/models"
)

type CustomerRepository struct {
	DB Pool
}

func NewCustomerRepository(db Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, phone, email, address, vat_number, notes, created_at, updated_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.VATNumber, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO customers (name, phone, email, address, vat_number, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Email, c.Address, c.VATNumber, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	c, err := scanCustomer(conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "customer", id)
	}
	return c, nil
}

// List returns customers alphabetically, the order the bill form's picker shows them in.
func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	rows, err := conn(ctx, r.DB).Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
