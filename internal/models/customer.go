package models

import "time"

// Customer is a counterparty on income bills (shippers paying the broker).
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	VATNumber string    `json:"vat_number"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCustomerRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Phone     string `json:"phone" validate:"required,max=30"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address" validate:"max=500"`
	VATNumber string `json:"vat_number" validate:"omitempty,numeric,len=15"`
	Notes     string `json:"notes" validate:"max=1000"`
}
