package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

var productCols = []string{"id", "name", "description", "sku", "barcode", "category_id", "price", "cost",
	"stock_quantity", "unit", "low_stock_threshold", "track_stock", "is_component_based", "is_active",
	"image_url", "created_at", "updated_at"}

func TestListProductsBuildsFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	categoryID := uuid.New()
	active := true
	now := time.Now()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`AND category_id=$1 AND (name ILIKE $2 OR sku ILIKE $2 OR barcode ILIKE $2) AND is_active=$3 ORDER BY name`)).
		WithArgs(categoryID, "%lat%", true).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(id.String(), "Latte", "", nil, nil, categoryID.String(), "25.00", "8.00",
				"0", "pcs", "0", true, false, true, "", now, now))

	repo := NewPostgresRepository(db)
	list, err := repo.ListProducts(context.Background(), ProductFilter{CategoryID: &categoryID, Search: "lat", Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "", list[0].SKU)
	require.NotNil(t, list[0].CategoryID)
	assert.Equal(t, categoryID, *list[0].CategoryID)
	assert.Equal(t, "25", list[0].Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id=$1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresRepository(db).DeleteProduct(context.Background(), id)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRecipeRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	productID, componentID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM product_components WHERE product_id=$1`)).
		WithArgs(productID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO product_components`)).
		WithArgs(productID, componentID, sqlmock.AnyArg()).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err = NewPostgresRepository(db).ReplaceRecipe(context.Background(), productID, []*RecipeLine{{ComponentID: componentID}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductLogsOpeningStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	actor := uuid.New()
	ctx := web.WithIdentity(context.Background(), web.Identity{UserID: actor, Role: web.RoleManager})
	p := &Product{ID: uuid.New(), Name: "Muffin", Unit: "pcs", TrackStock: true, IsActive: true,
		StockQuantity: decimal.NewFromInt(4)}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET stock_quantity = stock_quantity + $1`)).
		WithArgs("4", p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow("4"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO inventory_logs`)).
		WithArgs(sqlmock.AnyArg(), "product", p.ID, "4", "0", "4", "adjustment",
			sqlmock.AnyArg(), sqlmock.AnyArg(), actor, "opening stock").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresRepository(db).CreateProduct(ctx, p))
	assert.Equal(t, "4", p.StockQuantity.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComponentWithoutStockSkipsLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := &Component{ID: uuid.New(), Name: "Oat milk", Unit: "ml"}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO components`)).
		WithArgs(c.ID, "Oat milk", "ml", "0", "0").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresRepository(db).CreateComponent(context.Background(), c))
	assert.True(t, c.StockQuantity.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComponentRollsBackWhenLedgerFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := &Component{ID: uuid.New(), Name: "Beans", Unit: "g", StockQuantity: decimal.NewFromInt(1000)}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO components`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE components SET stock_quantity = stock_quantity + $1`)).
		WithArgs("1000", c.ID).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow("1000"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO inventory_logs`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	assert.Error(t, NewPostgresRepository(db).CreateComponent(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}
