package purchasing

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
)

var (
	poCols   = []string{"id", "po_number", "supplier_id", "status", "notes", "expected_at", "total_cost", "created_by", "created_at", "updated_at"}
	itemCols = []string{"id", "product_id", "name", "quantity_ordered", "quantity_received", "unit_cost"}
)

type receiptFixture struct {
	poID, beansLine, beans, cupsLine, cups uuid.UUID
	now                                    time.Time
}

func newReceipt() receiptFixture {
	return receiptFixture{
		poID: uuid.New(), beansLine: uuid.New(), beans: uuid.New(),
		cupsLine: uuid.New(), cups: uuid.New(), now: time.Now(),
	}
}

// expectLoad queues the locked reads Receive starts with.
func (f receiptFixture) expectLoad(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM purchase_orders WHERE id=$1 FOR UPDATE`)).
		WithArgs(f.poID).
		WillReturnRows(sqlmock.NewRows(poCols).AddRow(f.poID.String(), "PO-20261019-AB12", uuid.New().String(),
			"ordered", "", nil, "225", nil, f.now, f.now))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE OF i`)).
		WithArgs(f.poID).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(f.beansLine.String(), f.beans.String(), "Beans", "10", "0", "12.5").
			AddRow(f.cupsLine.String(), f.cups.String(), "Cups", "100", "100", "1"))
}

func TestReceiveBooksStockAndCost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newReceipt()
	user := uuid.New()
	f.expectLoad(mock)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE purchase_order_items SET quantity_received = quantity_received + $1 WHERE id=$2`)).
		WithArgs("4", f.beansLine).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET stock_quantity = stock_quantity + $1`)).
		WithArgs("4", f.beans).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow("4"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO inventory_logs`)).
		WithArgs(sqlmock.AnyArg(), "product", f.beans, "4", "0", "4", "purchase", "purchase_order", f.poID, user, "first crate").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(f.now))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET cost=$1, updated_at=NOW() WHERE id=$2`)).
		WithArgs("12.5", f.beans).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE purchase_orders SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`)).
		WithArgs("partially_received", f.poID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(f.now))
	mock.ExpectCommit()

	po, err := NewPostgresRepository(db).Receive(context.Background(), f.poID, ReceiveRequest{
		Items:      []ReceiptLine{{ItemID: f.beansLine, Quantity: decimal.NewFromInt(4)}},
		UpdateCost: true,
		Notes:      "first crate",
	}, &user)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyReceived, po.Status)
	require.Len(t, po.Items, 2)
	assert.Equal(t, "4", po.Items[0].QuantityReceived.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveCompletesOrderWithoutCostUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newReceipt()
	f.expectLoad(mock)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE purchase_order_items`)).
		WithArgs("10", f.beansLine).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET stock_quantity`)).
		WithArgs("10", f.beans).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow("10"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO inventory_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(f.now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE purchase_orders SET status=$1`)).
		WithArgs("received", f.poID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(f.now))
	mock.ExpectCommit()

	po, err := NewPostgresRepository(db).Receive(context.Background(), f.poID, ReceiveRequest{
		Items: []ReceiptLine{{ItemID: f.beansLine, Quantity: decimal.NewFromInt(10)}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, po.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveRejectsOverReceiptBeforeWriting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newReceipt()
	f.expectLoad(mock)
	mock.ExpectRollback()

	_, err = NewPostgresRepository(db).Receive(context.Background(), f.poID, ReceiveRequest{
		Items: []ReceiptLine{{ItemID: f.beansLine, Quantity: decimal.NewFromInt(11)}},
	}, nil)
	assert.True(t, errors.Is(err, apperr.ErrUnprocessable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiveRollsBackWhenLedgerFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newReceipt()
	f.expectLoad(mock)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE purchase_order_items`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET stock_quantity`)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow("4"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO inventory_logs`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = NewPostgresRepository(db).Receive(context.Background(), f.poID, ReceiveRequest{
		Items: []ReceiptLine{{ItemID: f.beansLine, Quantity: decimal.NewFromInt(4)}},
	}, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
