package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/customer"
	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/modules/shift"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

type postgresRepo struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

type rowScanner interface{ Scan(dest ...interface{}) error }

const orderColumns = `id,order_number,status,order_type,channel,customer_id,cashier_id,courier_id,shift_id,
	table_number,delivery_address,subtotal,discount,tax,total,currency,payment_status,loyalty_points,notes,
	created_at,updated_at`

func optionalID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{Items: []*Item{}}
	var customerID, cashierID, courierID, shiftID uuid.NullUUID
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.OrderType, &o.Channel,
		&customerID, &cashierID, &courierID, &shiftID,
		&o.TableNumber, &o.DeliveryAddress, &o.Subtotal, &o.Discount, &o.Tax, &o.Total,
		&o.Currency, &o.PaymentStatus, &o.LoyaltyPoints, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	o.CustomerID = optionalID(customerID)
	o.CashierID = optionalID(cashierID)
	o.CourierID = optionalID(courierID)
	o.ShiftID = optionalID(shiftID)
	return o, nil
}

// Create inserts the order and all its items inside a single transaction.
func (r *postgresRepo) Create(ctx context.Context, o *Order, moves []inventory.Adjustment, loyaltyRate decimal.Decimal) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if o.CashierID != nil {
			shiftID, err := shift.OpenID(ctx, tx, *o.CashierID)
			if err != nil {
				return err
			}
			o.ShiftID = shiftID
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id,order_number,status,order_type,channel,customer_id,cashier_id,shift_id,
				table_number,delivery_address,subtotal,discount,tax,total,currency,payment_status,notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
			RETURNING created_at, updated_at`,
			o.ID, o.OrderNumber, o.Status, o.OrderType, o.Channel, o.CustomerID, o.CashierID, o.ShiftID,
			o.TableNumber, o.DeliveryAddress, o.Subtotal, o.Discount, o.Tax, o.Total, o.Currency,
			o.PaymentStatus, o.Notes).
			Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return apperr.FromDB(err, "order")
		}

		for _, it := range o.Items {
			options, err := json.Marshal(it.Options)
			if err != nil {
				return err
			}
			err = tx.QueryRowContext(ctx, `
				INSERT INTO order_items (id,order_id,product_id,product_name,quantity,unit_price,line_total,options,notes)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
				RETURNING created_at`,
				it.ID, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
				options, it.Notes).
				Scan(&it.CreatedAt)
			if err != nil {
				return apperr.FromDB(err, "order item")
			}
		}

		for _, m := range moves {
			m.ReferenceID = &o.ID
			m.UserID = o.CashierID
			if _, err := inventory.Apply(ctx, tx, m); err != nil {
				return err
			}
		}

		if o.CustomerID != nil {
			points, err := customer.CreditPurchase(ctx, tx, *o.CustomerID, o.Total, loyaltyRate)
			if err != nil {
				return err
			}
			if points > 0 {
				if _, err := tx.ExecContext(ctx,
					`UPDATE orders SET loyalty_points=$1 WHERE id=$2`, points, o.ID); err != nil {
					return err
				}
			}
			o.LoyaltyPoints = points
		}
		return nil
	})
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, number)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, arg interface{}) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, map[uuid.UUID]*Order{o.ID: o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	if f.ShiftID != nil {
		args = append(args, *f.ShiftID)
		query += fmt.Sprintf(` AND shift_id=$%d`, len(args))
	}
	if f.CourierID != nil {
		args = append(args, *f.CourierID)
		query += fmt.Sprintf(` AND courier_id=$%d`, len(args))
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	byID := map[uuid.UUID]*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}
	return orders, r.attachItems(ctx, byID)
}

// attachItems loads the items of every order in byID with one query.
func (r *postgresRepo) attachItems(ctx context.Context, byID map[uuid.UUID]*Order) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,order_id,product_id,product_name,quantity,unit_price,line_total,options,notes,created_at
		FROM order_items WHERE order_id = ANY($1::uuid[])
		ORDER BY created_at, id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		it := &Item{}
		var productID uuid.NullUUID
		var options []byte
		if err := rows.Scan(&it.ID, &it.OrderID, &productID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.LineTotal, &options, &it.Notes, &it.CreatedAt); err != nil {
			return err
		}
		it.ProductID = optionalID(productID)
		it.Options = []SelectedOption{}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &it.Options); err != nil {
				return fmt.Errorf("decode options of item %s: %w", it.ID, err)
			}
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus changes status only if it still equals from.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflictf("order %s changed concurrently", id)
	}
	return nil
}

func (r *postgresRepo) Cancel(ctx context.Context, o *Order, userID *uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
			StatusCancelled, o.ID, o.Status)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.Conflictf("order %s changed concurrently", o.OrderNumber)
		}
		if _, err := inventory.Reverse(ctx, tx, inventory.RefOrder, o.ID, inventory.ReasonCancellation, userID); err != nil {
			return err
		}
		if o.CustomerID != nil {
			return customer.DebitPurchase(ctx, tx, *o.CustomerID, o.Total, o.LoyaltyPoints)
		}
		return nil
	})
}

func (r *postgresRepo) AssignCourier(ctx context.Context, id uuid.UUID, courierID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET courier_id=$1, updated_at=NOW()
		WHERE id=$2 AND status NOT IN ('delivered','cancelled')`, courierID, id)
	if err != nil {
		return apperr.FromDB(err, "order")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflictf("order %s can no longer be assigned", id)
	}
	return nil
}
