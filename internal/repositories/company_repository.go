package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/models"
)

type CompanyRepository struct {
	DB Pool
}

func NewCompanyRepository(db Pool) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

const companyColumns = `id, code, name, phone, email, address, cr_number, created_at, updated_at`

func scanCompany(row rowScanner) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CRNumber, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO companies (code, name, phone, email, address, cr_number)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Phone, c.Email, c.Address, c.CRNumber,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.BusinessRule("company %q already exists", c.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) Get(ctx context.Context, id int) (*models.Company, error) {
	c, err := scanCompany(conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "company", id)
	}
	return c, nil
}

// FindByName matches the company name exactly.
func (r *CompanyRepository) FindByName(ctx context.Context, name string) (*models.Company, error) {
	c, err := scanCompany(conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name=$1`, name))
	if err != nil {
		return nil, wrapNotFound(err, "company", name)
	}
	return c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
