package organization

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Organization is the business profile that drives currency, tax and loyalty.
type Organization struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Currency    string          `json:"currency"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LoyaltyRate decimal.Decimal `json:"loyalty_rate"` // points per currency unit spent
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UpdateRequest is the payload for editing the profile.
type UpdateRequest struct {
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Currency    string           `json:"currency"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	LoyaltyRate *decimal.Decimal `json:"loyalty_rate,omitempty"`
}
