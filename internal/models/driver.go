package models

import "time"

type Driver struct {
	ID            int       `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	IqamaID       string    `json:"iqama_id"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	Nationality   string    `json:"nationality"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewDriver carries the fields for a driver created on the fly. The iqama id
// (residence permit number) identifies a driver uniquely.
type NewDriver struct {
	Name          string `json:"name" validate:"required,max=200"`
	IqamaID       string `json:"iqama_id" validate:"required,max=50"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	Nationality   string `json:"nationality"`
}
