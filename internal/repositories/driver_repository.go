package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/models"
)

type DriverRepository struct {
	DB Pool
}

func NewDriverRepository(db Pool) *DriverRepository {
	return &DriverRepository{DB: db}
}

const driverColumns = `id, code, name, iqama_id, phone, license_number, nationality, created_at, updated_at`

func scanDriver(row rowScanner) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.IqamaID, &d.Phone, &d.LicenseNumber, &d.Nationality, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *DriverRepository) Create(ctx context.Context, d *models.Driver) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO drivers (code, name, iqama_id, phone, license_number, nationality)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		d.Code, d.Name, d.IqamaID, d.Phone, d.LicenseNumber, d.Nationality,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.BusinessRule("driver with iqama id %s already exists", d.IqamaID)
	}
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *DriverRepository) Get(ctx context.Context, id int) (*models.Driver, error) {
	d, err := scanDriver(conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "driver", id)
	}
	return d, nil
}

func (r *DriverRepository) FindByIqama(ctx context.Context, iqamaID string) (*models.Driver, error) {
	d, err := scanDriver(conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE iqama_id=$1`, iqamaID))
	if err != nil {
		return nil, wrapNotFound(err, "driver", iqamaID)
	}
	return d, nil
}

func (r *DriverRepository) List(ctx context.Context) ([]*models.Driver, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []*models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
