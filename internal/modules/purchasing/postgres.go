package purchasing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

type rowScanner interface{ Scan(dest ...interface{}) error }

const orderColumns = `id,po_number,supplier_id,status,notes,expected_at,total_cost,created_by,created_at,updated_at`

func scanOrder(row rowScanner) (*PurchaseOrder, error) {
	po := &PurchaseOrder{Items: []*Item{}}
	var expectedAt sql.NullTime
	var createdBy uuid.NullUUID
	err := row.Scan(&po.ID, &po.PONumber, &po.SupplierID, &po.Status, &po.Notes,
		&expectedAt, &po.TotalCost, &createdBy, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "purchase order")
	}
	if expectedAt.Valid {
		t := expectedAt.Time
		po.ExpectedAt = &t
	}
	if createdBy.Valid {
		id := createdBy.UUID
		po.CreatedBy = &id
	}
	return po, nil
}

// Create inserts the purchase order and all its items inside a single transaction.
func (r *postgresRepo) Create(ctx context.Context, po *PurchaseOrder) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO purchase_orders (id,po_number,supplier_id,status,notes,expected_at,total_cost,created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING created_at, updated_at`,
			po.ID, po.PONumber, po.SupplierID, po.Status, po.Notes, po.ExpectedAt, po.TotalCost, po.CreatedBy).
			Scan(&po.CreatedAt, &po.UpdatedAt)
		if err != nil {
			return apperr.FromDB(err, "purchase order")
		}
		return insertItems(ctx, tx, po)
	})
}

func insertItems(ctx context.Context, tx *sql.Tx, po *PurchaseOrder) error {
	for _, it := range po.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_order_items (id,purchase_order_id,product_id,quantity_ordered,quantity_received,unit_cost)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			it.ID, po.ID, it.ProductID, it.QuantityOrdered, it.QuantityReceived, it.UnitCost)
		if err != nil {
			return apperr.FromDB(err, "purchase order item")
		}
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	po, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	po.Items, err = listItems(ctx, r.db, po.ID, false)
	return po, err
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE 1=1`
	args := []interface{}{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if f.SupplierID != nil {
		args = append(args, *f.SupplierID)
		query += fmt.Sprintf(` AND supplier_id=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*PurchaseOrder{}
	byID := map[uuid.UUID]*PurchaseOrder{}
	ids := []string{}
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, po)
		byID[po.ID] = po
		ids = append(ids, po.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT i.purchase_order_id, i.id, i.product_id, p.name, i.quantity_ordered, i.quantity_received, i.unit_cost
		FROM purchase_order_items i JOIN products p ON p.id = i.product_id
		WHERE i.purchase_order_id = ANY($1::uuid[])
		ORDER BY p.name`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var poID uuid.UUID
		it := &Item{}
		if err := itemRows.Scan(&poID, &it.ID, &it.ProductID, &it.ProductName,
			&it.QuantityOrdered, &it.QuantityReceived, &it.UnitCost); err != nil {
			return nil, err
		}
		if po, ok := byID[poID]; ok {
			po.Items = append(po.Items, it)
		}
	}
	return orders, itemRows.Err()
}

func listItems(ctx context.Context, q database.Querier, poID uuid.UUID, lock bool) ([]*Item, error) {
	query := `
		SELECT i.id, i.product_id, p.name, i.quantity_ordered, i.quantity_received, i.unit_cost
		FROM purchase_order_items i JOIN products p ON p.id = i.product_id
		WHERE i.purchase_order_id=$1 ORDER BY p.name`
	if lock {
		query += ` FOR UPDATE OF i`
	}
	rows, err := q.QueryContext(ctx, query, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Item{}
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName,
			&it.QuantityOrdered, &it.QuantityReceived, &it.UnitCost); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Replace(ctx context.Context, po *PurchaseOrder) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE purchase_orders
			SET supplier_id=$1, notes=$2, expected_at=$3, total_cost=$4, updated_at=NOW()
			WHERE id=$5 AND status=$6
			RETURNING updated_at`,
			po.SupplierID, po.Notes, po.ExpectedAt, po.TotalCost, po.ID, StatusDraft).
			Scan(&po.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Conflictf("purchase order %s is no longer a draft", po.PONumber)
		}
		if err != nil {
			return apperr.FromDB(err, "purchase order")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id=$1`, po.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, po)
	})
}

// UpdateStatus changes status only if it still equals from.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchase_orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflictf("purchase order %s changed concurrently", id)
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM purchase_orders WHERE id=$1 AND status IN ('draft','cancelled')`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("purchase order %s not found", id)
	}
	return nil
}

func (r *postgresRepo) Receive(ctx context.Context, id uuid.UUID, req ReceiveRequest, userID *uuid.UUID) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		po, err = scanOrder(tx.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if po.Items, err = listItems(ctx, tx, po.ID, true); err != nil {
			return err
		}

		bookings, err := planReceipt(po, req.Items)
		if err != nil {
			return err
		}
		for _, b := range bookings {
			if _, err := tx.ExecContext(ctx,
				`UPDATE purchase_order_items SET quantity_received = quantity_received + $1 WHERE id=$2`,
				b.quantity, b.item.ID); err != nil {
				return apperr.FromDB(err, "purchase order item")
			}
			_, err := inventory.Apply(ctx, tx, inventory.Adjustment{
				ItemType:      inventory.ItemProduct,
				ItemID:        b.item.ProductID,
				Delta:         b.quantity,
				Reason:        inventory.ReasonPurchase,
				ReferenceType: inventory.RefPurchaseOrder,
				ReferenceID:   &po.ID,
				UserID:        userID,
				Notes:         req.Notes,
			})
			if err != nil {
				return err
			}
			if req.UpdateCost {
				if _, err := tx.ExecContext(ctx,
					`UPDATE products SET cost=$1, updated_at=NOW() WHERE id=$2`,
					b.item.UnitCost, b.item.ProductID); err != nil {
					return err
				}
			}
		}
		return tx.QueryRowContext(ctx,
			`UPDATE purchase_orders SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`,
			po.Status, po.ID).Scan(&po.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}
