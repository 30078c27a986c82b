package models

import "time"

// ActionLog records who changed which ledger or rental record.
type ActionLog struct {
	ID          int       `json:"id"`
	UserID      *int      `json:"user_id,omitempty"`
	ActionType  string    `json:"action_type"`
	TargetType  string    `json:"target_type"`
	TargetID    *int      `json:"target_id,omitempty"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
