package organization

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

// Service reads and edits the organization profile.
type Service interface {
	Get(ctx context.Context) (*Organization, error)
	Update(ctx context.Context, req UpdateRequest) (*Organization, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Get(ctx context.Context) (*Organization, error) {
	return s.repo.Get(ctx)
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*Organization, error) {
	o, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		o.Name = name
	}
	o.Address = req.Address
	o.Phone = req.Phone
	if req.Currency != "" {
		code, err := NormalizeCurrency(req.Currency)
		if err != nil {
			return nil, err
		}
		o.Currency = code
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, apperr.Invalidf("tax_rate must be between 0 and 1")
		}
		o.TaxRate = *req.TaxRate
	}
	if req.LoyaltyRate != nil {
		if req.LoyaltyRate.IsNegative() {
			return nil, apperr.Invalidf("loyalty_rate cannot be negative")
		}
		o.LoyaltyRate = *req.LoyaltyRate
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// NormalizeCurrency upper-cases a three-letter ISO currency code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", apperr.Invalidf("currency must be a three-letter code")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", apperr.Invalidf("currency must be a three-letter code")
		}
	}
	return code, nil
}
