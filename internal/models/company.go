package models

import "time"

type Company struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CRNumber  string    `json:"cr_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCompany carries the fields for a company created on the fly.
type NewCompany struct {
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address"`
	CRNumber string `json:"cr_number"`
}
