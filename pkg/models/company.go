package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant. Every other entity belongs to a company.
type Company struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	TaxID     string    `db:"tax_id"     json:"tax_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
