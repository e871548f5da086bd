package shift

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

type rowScanner interface{ Scan(dest ...interface{}) error }

// OpenID returns the id of the user's open shift, or nil when none is open.
func OpenID(ctx context.Context, q database.Querier, userID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRowContext(ctx,
		`SELECT id FROM shifts WHERE user_id=$1 AND closed_at IS NULL`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CashTaken sums cash kept in the drawer for the shift: tendered amounts
// minus change, for payments that were not refunded.
func CashTaken(ctx context.Context, q database.Querier, shiftID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount - change_given), 0)
		FROM payments
		WHERE shift_id=$1 AND method='cash' AND status='completed'`, shiftID).Scan(&total)
	return total, err
}

const shiftSelect = `
	SELECT s.id, s.user_id, s.opened_at, s.closed_at, s.opening_cash, s.closing_cash,
		s.expected_cash, s.cash_difference, s.notes,
		(SELECT COUNT(*) FROM orders o WHERE o.shift_id = s.id AND o.status <> 'cancelled'),
		(SELECT COALESCE(SUM(o.total), 0) FROM orders o WHERE o.shift_id = s.id AND o.status <> 'cancelled')
	FROM shifts s`

func scanShift(row rowScanner) (*Shift, error) {
	s := &Shift{}
	var closedAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.OpenedAt, &closedAt, &s.OpeningCash, &s.ClosingCash,
		&s.ExpectedCash, &s.CashDifference, &s.Notes, &s.OrderCount, &s.SalesTotal)
	if err != nil {
		return nil, apperr.FromDB(err, "shift")
	}
	if closedAt.Valid {
		t := closedAt.Time
		s.ClosedAt = &t
	}
	return s, nil
}

func (r *postgresRepo) Open(ctx context.Context, s *Shift) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shifts (id, user_id, opening_cash, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING opened_at`,
		s.ID, s.UserID, s.OpeningCash, s.Notes).Scan(&s.OpenedAt)
	err = apperr.FromDB(err, "shift")
	if errors.Is(err, apperr.ErrConflict) {
		return apperr.Conflictf("a shift is already open for this user")
	}
	return err
}

func (r *postgresRepo) Current(ctx context.Context, userID uuid.UUID) (*Shift, error) {
	s, err := scanShift(r.db.QueryRowContext(ctx, shiftSelect+` WHERE s.user_id=$1 AND s.closed_at IS NULL`, userID))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFoundf("no open shift")
	}
	return s, err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Shift, error) {
	return scanShift(r.db.QueryRowContext(ctx, shiftSelect+` WHERE s.id=$1`, id))
}

func (r *postgresRepo) List(ctx context.Context, userID *uuid.UUID, limit int) ([]*Shift, error) {
	query := shiftSelect + ` WHERE 1=1`
	args := []interface{}{}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(` AND s.user_id=$%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY s.opened_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shifts := []*Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func (r *postgresRepo) Close(ctx context.Context, userID uuid.UUID, closingCash decimal.Decimal, notes string) (*Shift, error) {
	var closed *Shift
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var id uuid.UUID
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM shifts WHERE user_id=$1 AND closed_at IS NULL FOR UPDATE`, userID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFoundf("no open shift")
		}
		if err != nil {
			return err
		}
		s, err := scanShift(tx.QueryRowContext(ctx, shiftSelect+` WHERE s.id=$1`, id))
		if err != nil {
			return err
		}
		cash, err := CashTaken(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		cashUp(s, cash, closingCash, notes)

		err = tx.QueryRowContext(ctx, `
			UPDATE shifts
			SET closed_at=NOW(), closing_cash=$1, expected_cash=$2, cash_difference=$3, notes=$4
			WHERE id=$5
			RETURNING closed_at`,
			s.ClosingCash, s.ExpectedCash, s.CashDifference, s.Notes, s.ID).Scan(&s.ClosedAt)
		if err != nil {
			return err
		}
		closed = s
		return nil
	})
	return closed, err
}
