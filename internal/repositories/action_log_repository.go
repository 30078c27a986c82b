package repositories

import (
	"context"
	"fmt"

	"fleet-backend/internal/models"
)

type ActionLogRepository struct {
	DB Pool
}

func NewActionLogRepository(db Pool) *ActionLogRepository {
	return &ActionLogRepository{DB: db}
}

// Record stores one action log entry
func (r *ActionLogRepository) Record(ctx context.Context, l *models.ActionLog) error {
	_, err := conn(ctx, r.DB).Exec(ctx,
		`INSERT INTO action_logs (user_id, action_type, target_type, target_id, description, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.UserID, l.ActionType, l.TargetType, l.TargetID, l.Description, l.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to record action log: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first
func (r *ActionLogRepository) List(ctx context.Context, limit int) ([]*models.ActionLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := conn(ctx, r.DB).Query(ctx,
		`SELECT id, user_id, action_type, target_type, target_id, description, ip_address, created_at
		 FROM action_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list action logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.ActionLog{}
	for rows.Next() {
		var l models.ActionLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.ActionType, &l.TargetType, &l.TargetID,
			&l.Description, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
