package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/models"
)

type LoadRepository struct {
	DB Pool
}

func NewLoadRepository(db Pool) *LoadRepository {
	return &LoadRepository{DB: db}
}

const loadColumns = `id, rental_code, vehicle_id, vehicle_type, plate_no, company_id, driver_id,
	from_location, to_location, rental_type, rental_price_per_day, rental_price, price_per_km, distance_km,
	start_date, end_date, days_rented, rental_amount, acquisition_cost, status, notes, created_at, updated_at`

func scanLoad(row rowScanner) (*models.Load, error) {
	var l models.Load
	err := row.Scan(&l.ID, &l.RentalCode, &l.VehicleID, &l.VehicleType, &l.PlateNo, &l.CompanyID, &l.DriverID,
		&l.FromLocation, &l.ToLocation, &l.RentalType, &l.RentalPricePerDay, &l.RentalPrice, &l.PricePerKm, &l.DistanceKm,
		&l.StartDate, &l.EndDate, &l.DaysRented, &l.RentalAmount, &l.AcquisitionCost, &l.Status, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *LoadRepository) Create(ctx context.Context, l *models.Load) error {
	err := conn(ctx, r.DB).QueryRow(ctx,
		`INSERT INTO loads (
			rental_code, vehicle_id, vehicle_type, plate_no, company_id, driver_id,
			from_location, to_location, rental_type, rental_price_per_day, rental_price, price_per_km, distance_km,
			start_date, end_date, days_rented, rental_amount, acquisition_cost, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at`,
		l.RentalCode, l.VehicleID, l.VehicleType, l.PlateNo, l.CompanyID, l.DriverID,
		l.FromLocation, l.ToLocation, l.RentalType, l.RentalPricePerDay, l.RentalPrice, l.PricePerKm, l.DistanceKm,
		l.StartDate, l.EndDate, l.DaysRented, l.RentalAmount, l.AcquisitionCost, l.Status, l.Notes,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create load: %w", err)
	}
	return nil
}

func (r *LoadRepository) Get(ctx context.Context, id int) (*models.Load, error) {
	l, err := scanLoad(conn(ctx, r.DB).QueryRow(ctx, `SELECT `+loadColumns+` FROM loads WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "load", id)
	}
	return l, nil
}

func (r *LoadRepository) GetByRentalCode(ctx context.Context, code string) (*models.Load, error) {
	l, err := scanLoad(conn(ctx, r.DB).QueryRow(ctx, `SELECT `+loadColumns+` FROM loads WHERE rental_code=$1`, code))
	if err != nil {
		return nil, wrapNotFound(err, "load", code)
	}
	return l, nil
}

// Lock takes a row lock on the load for the rest of the current transaction.
func (r *LoadRepository) Lock(ctx context.Context, id int) error {
	var locked int
	err := conn(ctx, r.DB).QueryRow(ctx, `SELECT id FROM loads WHERE id=$1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return wrapNotFound(err, "load", id)
	}
	return nil
}

func (r *LoadRepository) List(ctx context.Context, f models.LoadFilter) ([]*models.Load, error) {
	fb := &filterBuilder{}
	if f.Status != "" {
		fb.add("status = $%d", f.Status)
	}
	if f.CompanyID != nil {
		fb.add("company_id = $%d", *f.CompanyID)
	}
	if f.DriverID != nil {
		fb.add("driver_id = $%d", *f.DriverID)
	}
	query := fb.where(`SELECT `+loadColumns+` FROM loads`) + ` ORDER BY created_at DESC, id DESC`

	rows, err := conn(ctx, r.DB).Query(ctx, query, fb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	defer rows.Close()

	loads := []*models.Load{}
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

func (r *LoadRepository) Update(ctx context.Context, l *models.Load) error {
	tag, err := conn(ctx, r.DB).Exec(ctx,
		`UPDATE loads SET vehicle_id=$1, vehicle_type=$2, plate_no=$3, company_id=$4, driver_id=$5,
		 from_location=$6, to_location=$7, rental_type=$8, rental_price_per_day=$9, rental_price=$10,
		 price_per_km=$11, distance_km=$12, start_date=$13, end_date=$14, days_rented=$15,
		 rental_amount=$16, acquisition_cost=$17, status=$18, notes=$19, updated_at=NOW()
		 WHERE id=$20`,
		l.VehicleID, l.VehicleType, l.PlateNo, l.CompanyID, l.DriverID,
		l.FromLocation, l.ToLocation, l.RentalType, l.RentalPricePerDay, l.RentalPrice,
		l.PricePerKm, l.DistanceKm, l.StartDate, l.EndDate, l.DaysRented,
		l.RentalAmount, l.AcquisitionCost, l.Status, l.Notes, l.ID)
	if err != nil {
		return fmt.Errorf("failed to update load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("load", l.ID)
	}
	return nil
}

func (r *LoadRepository) Delete(ctx context.Context, id int) error {
	tag, err := conn(ctx, r.DB).Exec(ctx, `DELETE FROM loads WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("load", id)
	}
	return nil
}
