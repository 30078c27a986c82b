package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/models"
)

type VehicleRepository struct {
	DB Pool
}

func NewVehicleRepository(db Pool) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

const vehicleColumns = `id, plate_no, vehicle_type, model, company_id, status,
	acquisition_cost, acquisition_date, created_at, updated_at`

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.PlateNo, &v.VehicleType, &v.Model, &v.CompanyID, &v.Status,
		&v.AcquisitionCost, &v.AcquisitionDate, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO vehicles (plate_no, vehicle_type, model, company_id, status, acquisition_cost, acquisition_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		v.PlateNo, v.VehicleType, v.Model, v.CompanyID, v.Status, v.AcquisitionCost, v.AcquisitionDate,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.BusinessRule("vehicle with plate %s already exists", v.PlateNo)
	}
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) Get(ctx context.Context, id int) (*models.Vehicle, error) {
	v, err := scanVehicle(conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "vehicle", id)
	}
	return v, nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]*models.Vehicle, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY plate_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []*models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, id int, status models.VehicleStatus) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE vehicles SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("vehicle", id)
	}
	return nil
}
