package currency

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/organization"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

// Service manages exchange rates against the organization's base currency.
type Service interface {
	List(ctx context.Context) ([]*Rate, error)
	Set(ctx context.Context, code string, req RateRequest) (*Rate, error)
	Delete(ctx context.Context, code string) error
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error)
}

// Settings supplies the base currency.
type Settings interface {
	Get(ctx context.Context) (*organization.Organization, error)
}

type service struct {
	repo     Repository
	settings Settings
}

func NewService(repo Repository, settings Settings) Service {
	return &service{repo: repo, settings: settings}
}

func (s *service) base(ctx context.Context) (string, error) {
	org, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	return org.Currency, nil
}

func (s *service) List(ctx context.Context) ([]*Rate, error) {
	return s.repo.List(ctx)
}

func (s *service) Set(ctx context.Context, code string, req RateRequest) (*Rate, error) {
	code, err := organization.NormalizeCurrency(code)
	if err != nil {
		return nil, err
	}
	if !req.Rate.IsPositive() {
		return nil, apperr.Invalidf("rate must be > 0")
	}
	base, err := s.base(ctx)
	if err != nil {
		return nil, err
	}
	if code == base {
		return nil, apperr.Invalidf("%s is the base currency and always converts at 1", code)
	}
	rt := &Rate{Code: code, Name: strings.TrimSpace(req.Name), Rate: req.Rate}
	if err := s.repo.Upsert(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) Delete(ctx context.Context, code string) error {
	code, err := organization.NormalizeCurrency(code)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, code)
}

// rateOf returns units of code per unit of base.
func (s *service) rateOf(ctx context.Context, code, base string) (decimal.Decimal, error) {
	if code == base {
		return decimal.NewFromInt(1), nil
	}
	rt, err := s.repo.Get(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return rt.Rate, nil
}

func (s *service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	base, err := s.base(ctx)
	if err != nil {
		return nil, err
	}
	if from == "" {
		from = base
	}
	if to == "" {
		to = base
	}
	if from, err = organization.NormalizeCurrency(from); err != nil {
		return nil, err
	}
	if to, err = organization.NormalizeCurrency(to); err != nil {
		return nil, err
	}
	fromRate, err := s.rateOf(ctx, from, base)
	if err != nil {
		return nil, err
	}
	toRate, err := s.rateOf(ctx, to, base)
	if err != nil {
		return nil, err
	}
	rate := toRate.Div(fromRate)
	return &Conversion{
		Amount: amount,
		From:   from,
		To:     to,
		Rate:   rate.Round(8),
		Result: amount.Mul(toRate).Div(fromRate).Round(2),
	}, nil
}
