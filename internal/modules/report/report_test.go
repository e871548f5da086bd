package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeRepo struct {
	summary  SalesSummary
	lines    []*ValuationLine
	orders   []*OrderRow
	products []*ProductRow
}

func (f *fakeRepo) Sales(_ context.Context, from, to time.Time) (*SalesSummary, error) {
	s := f.summary
	s.From, s.To = from, to
	return &s, nil
}
func (f *fakeRepo) Daily(context.Context, time.Time, time.Time) ([]*DailySales, error) {
	return []*DailySales{}, nil
}
func (f *fakeRepo) TopProducts(context.Context, time.Time, time.Time, int) ([]*TopProduct, error) {
	return []*TopProduct{}, nil
}
func (f *fakeRepo) Valuation(context.Context) ([]*ValuationLine, error) { return f.lines, nil }
func (f *fakeRepo) Orders(context.Context, time.Time, time.Time) ([]*OrderRow, error) {
	return f.orders, nil
}
func (f *fakeRepo) Products(context.Context) ([]*ProductRow, error)   { return f.products, nil }
func (f *fakeRepo) Customers(context.Context) ([]*CustomerRow, error) { return nil, nil }

type lowStock []*inventory.LowStockItem

func (l lowStock) LowStock(context.Context) ([]*inventory.LowStockItem, error) { return l, nil }

func fixture() (*fakeRepo, lowStock) {
	repo := &fakeRepo{
		summary: SalesSummary{
			OrderCount: 3,
			Gross:      d("120.00"),
			Discounts:  d("10.00"),
			Tax:        d("17.60"),
			Total:      d("127.60"),
			ByMethod:   []*MethodTotal{{Method: "cash", Count: 2, Amount: d("80.00")}},
		},
		lines: []*ValuationLine{
			{ItemType: "component", ID: uuid.New(), Name: "Espresso beans", Unit: "kg", Quantity: d("2.5"), UnitCost: d("180"), Value: d("450")},
			{ItemType: "product", ID: uuid.New(), Name: "Bottled water", Unit: "pcs", Quantity: d("24"), UnitCost: d("4.5"), Value: d("108")},
		},
		orders: []*OrderRow{{
			Number: "ORD-20260301-AB12", CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			Status: "delivered", OrderType: "takeaway", Channel: "pos", PaymentStatus: "paid",
			Subtotal: d("40"), Discount: d("0"), Tax: d("6.4"), Total: d("46.4"),
		}},
		products: []*ProductRow{{Name: "Latte, large", SKU: "LAT-L", Category: "Coffee", Price: d("35"), Cost: d("9"), Stock: d("0"), Unit: "cup", Active: true}},
	}
	stock := lowStock{{ItemType: "component", ID: uuid.New(), Name: "Milk", Unit: "l", StockQuantity: d("1"), LowStockThreshold: d("5")}}
	return repo, stock
}

func march() web.Range {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return web.Range{From: from, To: from.AddDate(0, 1, 0)}
}

func TestSalesDerivesNetAndAverage(t *testing.T) {
	repo, stock := fixture()
	sum, err := NewService(repo, stock).Sales(context.Background(), march())
	require.NoError(t, err)
	assert.Equal(t, "110", sum.Net.String())
	assert.Equal(t, "42.53", sum.AverageTicket.String())

	repo.summary = SalesSummary{}
	sum, err = NewService(repo, stock).Sales(context.Background(), march())
	require.NoError(t, err)
	assert.True(t, sum.AverageTicket.IsZero())
}

func TestInventoryTotal(t *testing.T) {
	repo, stock := fixture()
	v, err := NewService(repo, stock).Inventory(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.Lines, 2)
	assert.Equal(t, "558", v.Total.String())
}

func TestExportKinds(t *testing.T) {
	repo, stock := fixture()
	svc := NewService(repo, stock)
	ctx := context.Background()

	_, err := svc.Export(ctx, "sales", "xlsx", march())
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	_, err = svc.Export(ctx, "customers", "pdf", march())
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	_, err = svc.Export(ctx, "low-stock", "csv", march())
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestExportProductsCSV(t *testing.T) {
	repo, stock := fixture()
	f, err := NewService(repo, stock).Export(context.Background(), "products", "csv", march())
	require.NoError(t, err)
	assert.Equal(t, "text/csv", f.ContentType)
	assert.Equal(t, "products-report-20260401.csv", f.Name)

	records, err := csv.NewReader(bytes.NewReader(f.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Name", records[0][0])
	assert.Equal(t, []string{"Latte, large", "LAT-L", "Coffee", "35.00", "9.00", "0", "cup", "true"}, records[1])
}

func TestExportPDF(t *testing.T) {
	repo, stock := fixture()
	svc := NewService(repo, stock)
	for _, kind := range []string{"sales", "inventory", "low-stock"} {
		f, err := svc.Export(context.Background(), kind, "PDF", march())
		require.NoError(t, err, kind)
		assert.Equal(t, "application/pdf", f.ContentType)
		assert.True(t, bytes.HasPrefix(f.Body, []byte("%PDF")), kind)
	}
}

func TestSalesTablePeriodIsInclusive(t *testing.T) {
	repo, _ := fixture()
	sum := &SalesSummary{ByMethod: repo.summary.ByMethod}
	tbl := salesTable(repo.orders, sum, march())
	assert.Equal(t, "2026-03-01 to 2026-03-31", tbl.period)
	assert.Contains(t, tbl.summary, "cash: 80.00 (2)")
	assert.Equal(t, "46.40", tbl.rows[0][9])
}

func TestExportHandler(t *testing.T) {
	repo, stock := fixture()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := web.WithIdentity(req.Context(), web.Identity{UserID: uuid.New(), Role: web.RoleManager})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(NewService(repo, stock)).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/export/inventory.csv", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inventory-report-")
	assert.Contains(t, rec.Body.String(), "Espresso beans")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/export/inventory", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportsRequireManager(t *testing.T) {
	repo, stock := fixture()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := web.WithIdentity(req.Context(), web.Identity{UserID: uuid.New(), Role: web.RoleCashier})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(NewService(repo, stock)).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/sales", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostgresSalesByMethod(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rg := march()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE status <> 'cancelled'`)).
		WithArgs(rg.From, rg.To).
		WillReturnRows(sqlmock.NewRows([]string{"count", "gross", "discounts", "tax", "total"}).
			AddRow(int64(2), "80.00", "0.00", "12.80", "92.80"))
	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY p.method`)).
		WithArgs(rg.From, rg.To).
		WillReturnRows(sqlmock.NewRows([]string{"method", "count", "amount"}).
			AddRow("card", int64(1), "46.40").
			AddRow("cash", int64(1), "46.40"))

	sum, err := NewPostgresRepository(db).Sales(context.Background(), rg.From, rg.To)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.OrderCount)
	assert.Equal(t, "92.8", sum.Total.String())
	require.Len(t, sum.ByMethod, 2)
	assert.Equal(t, "card", sum.ByMethod[0].Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}
