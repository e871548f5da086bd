package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines reporting and export logic.
type Service interface {
	Sales(ctx context.Context, rg web.Range) (*SalesSummary, error)
	Daily(ctx context.Context, rg web.Range) ([]*DailySales, error)
	TopProducts(ctx context.Context, rg web.Range, limit int) ([]*TopProduct, error)
	Inventory(ctx context.Context) (*Valuation, error)

	// Export renders a report as csv or pdf.
	Export(ctx context.Context, kind, format string, rg web.Range) (*File, error)
}

// LowStock is the part of the inventory service the low-stock export reads.
type LowStock interface {
	LowStock(ctx context.Context) ([]*inventory.LowStockItem, error)
}

type service struct {
	repo  Repository
	stock LowStock
}

func NewService(repo Repository, stock LowStock) Service {
	return &service{repo: repo, stock: stock}
}

func (s *service) Sales(ctx context.Context, rg web.Range) (*SalesSummary, error) {
	sum, err := s.repo.Sales(ctx, rg.From, rg.To)
	if err != nil {
		return nil, err
	}
	finish(sum)
	return sum, nil
}

// finish derives net and average ticket from the raw sums.
func finish(s *SalesSummary) {
	s.Net = s.Gross.Sub(s.Discounts)
	s.AverageTicket = decimal.Zero
	if s.OrderCount > 0 {
		s.AverageTicket = s.Total.Div(decimal.NewFromInt(s.OrderCount)).Round(2)
	}
}

func (s *service) Daily(ctx context.Context, rg web.Range) ([]*DailySales, error) {
	return s.repo.Daily(ctx, rg.From, rg.To)
}

func (s *service) TopProducts(ctx context.Context, rg web.Range, limit int) ([]*TopProduct, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopProducts(ctx, rg.From, rg.To, limit)
}

func (s *service) Inventory(ctx context.Context) (*Valuation, error) {
	lines, err := s.repo.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	v := &Valuation{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		v.Total = v.Total.Add(l.Value)
	}
	return v, nil
}

var exportKinds = map[string][]string{
	"csv": {"sales", "products", "inventory", "customers"},
	"pdf": {"sales", "inventory", "low-stock"},
}

func supported(kind, format string) bool {
	for _, k := range exportKinds[format] {
		if k == kind {
			return true
		}
	}
	return false
}

func (s *service) Export(ctx context.Context, kind, format string, rg web.Range) (*File, error) {
	kind = strings.ToLower(kind)
	format = strings.ToLower(format)
	if _, ok := exportKinds[format]; !ok {
		return nil, apperr.Invalidf("unsupported export format %q", format)
	}
	if !supported(kind, format) {
		return nil, apperr.Invalidf("report %q cannot be exported as %s", kind, format)
	}

	t, err := s.table(ctx, kind, rg)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-report-%s.%s", kind, rg.To.Format("20060102"), format)
	if format == "csv" {
		body, err := t.csv()
		if err != nil {
			return nil, err
		}
		return &File{Name: name, ContentType: "text/csv", Body: body}, nil
	}
	body, err := t.pdf()
	if err != nil {
		return nil, err
	}
	return &File{Name: name, ContentType: "application/pdf", Body: body}, nil
}

func (s *service) table(ctx context.Context, kind string, rg web.Range) (*table, error) {
	switch kind {
	case "sales":
		orders, err := s.repo.Orders(ctx, rg.From, rg.To)
		if err != nil {
			return nil, err
		}
		sum, err := s.Sales(ctx, rg)
		if err != nil {
			return nil, err
		}
		return salesTable(orders, sum, rg), nil
	case "products":
		rows, err := s.repo.Products(ctx)
		if err != nil {
			return nil, err
		}
		return productsTable(rows), nil
	case "inventory":
		v, err := s.Inventory(ctx)
		if err != nil {
			return nil, err
		}
		return inventoryTable(v), nil
	case "customers":
		rows, err := s.repo.Customers(ctx)
		if err != nil {
			return nil, err
		}
		return customersTable(rows), nil
	case "low-stock":
		items, err := s.stock.LowStock(ctx)
		if err != nil {
			return nil, err
		}
		return lowStockTable(items), nil
	}
	return nil, apperr.Invalidf("unknown report %q", kind)
}
