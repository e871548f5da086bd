package pos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/modules/order"
	"github.com/georgemunganga/cafepos/internal/modules/shift"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const paymentColumns = `id,order_id,shift_id,cashier_id,method,amount,change_given,currency,reference,status,notes,created_at,updated_at`

func lockOrder(ctx context.Context, q database.Querier, id uuid.UUID) (*OrderRef, error) {
	o := &OrderRef{}
	err := q.QueryRowContext(ctx, `
		SELECT id, order_number, status, payment_status, total, currency
		FROM orders WHERE id=$1 FOR UPDATE`, id).
		Scan(&o.ID, &o.Number, &o.Status, &o.PaymentStatus, &o.Total, &o.Currency)
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return o, nil
}

func setPaymentStatus(ctx context.Context, q database.Querier, o *OrderRef, status order.PaymentStatus) error {
	_, err := q.ExecContext(ctx,
		`UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`, status, o.ID)
	if err == nil {
		o.PaymentStatus = status
	}
	return err
}

func (r *postgresRepo) Pay(ctx context.Context, p *Payment) (*OrderRef, error) {
	var ref *OrderRef
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		if err := settle(o, p); err != nil {
			return err
		}
		if p.CashierID != nil {
			if p.ShiftID, err = shift.OpenID(ctx, tx, *p.CashierID); err != nil {
				return err
			}
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO payments (id,order_id,shift_id,cashier_id,method,amount,change_given,currency,reference,status,notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING created_at, updated_at`,
			p.ID, p.OrderID, p.ShiftID, p.CashierID, p.Method, p.Amount, p.ChangeGiven,
			p.Currency, p.Reference, p.Status, p.Notes).
			Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return apperr.FromDB(err, "payment")
		}
		if err := setPaymentStatus(ctx, tx, o, order.PaymentPaid); err != nil {
			return err
		}
		ref = o
		return nil
	})
	return ref, err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scan(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id=$1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := []*Payment{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *postgresRepo) Refund(ctx context.Context, id uuid.UUID, notes string) (*Payment, *OrderRef, error) {
	var (
		refunded *Payment
		ref      *OrderRef
	)
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		p, err := scan(tx.QueryRowContext(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if p.Status != StatusCompleted {
			return apperr.Conflictf("payment %s is already %s", id, p.Status)
		}
		o, err := lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, `
			UPDATE payments SET status=$1, notes=$2, updated_at=NOW()
			WHERE id=$3
			RETURNING updated_at`, StatusRefunded, notes, id).Scan(&p.UpdatedAt)
		if err != nil {
			return err
		}
		p.Status = StatusRefunded
		p.Notes = notes
		if err := setPaymentStatus(ctx, tx, o, order.PaymentRefunded); err != nil {
			return err
		}
		refunded, ref = p, o
		return nil
	})
	return refunded, ref, err
}

// ── scanner ───────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scan(row rowScanner) (*Payment, error) {
	p := &Payment{}
	var shiftID, cashierID uuid.NullUUID
	err := row.Scan(&p.ID, &p.OrderID, &shiftID, &cashierID, &p.Method, &p.Amount, &p.ChangeGiven,
		&p.Currency, &p.Reference, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("payment not found")
	}
	if err != nil {
		return nil, err
	}
	if shiftID.Valid {
		id := shiftID.UUID
		p.ShiftID = &id
	}
	if cashierID.Valid {
		id := cashierID.UUID
		p.CashierID = &id
	}
	return p, nil
}
