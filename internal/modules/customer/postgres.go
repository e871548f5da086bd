package customer

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

type rowScanner interface{ Scan(dest ...interface{}) error }

const columns = `id,name,email,phone,address,notes,loyalty_points,total_spent,created_at,updated_at`

func scan(row rowScanner) (*Customer, error) {
	c := &Customer{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes,
		&c.LoyaltyPoints, &c.TotalSpent, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "customer")
	}
	return c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c *Customer) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (id,name,email,phone,address,notes) VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING loyalty_points, total_spent, created_at, updated_at`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes).
		Scan(&c.LoyaltyPoints, &c.TotalSpent, &c.CreatedAt, &c.UpdatedAt)
	return apperr.FromDB(err, "customer")
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM customers WHERE id=$1`, id))
}

func (r *postgresRepo) List(ctx context.Context, search string) ([]*Customer, error) {
	query := `SELECT ` + columns + ` FROM customers`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []*Customer{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, c *Customer) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE customers SET name=$1, email=$2, phone=$3, address=$4, notes=$5, updated_at=NOW()
		WHERE id=$6
		RETURNING loyalty_points, total_spent, updated_at`,
		c.Name, c.Email, c.Phone, c.Address, c.Notes, c.ID).
		Scan(&c.LoyaltyPoints, &c.TotalSpent, &c.UpdatedAt)
	return apperr.FromDB(err, "customer")
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return apperr.FromDB(err, "customer")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("customer %s not found", id)
	}
	return nil
}

func (r *postgresRepo) ListOrders(ctx context.Context, id uuid.UUID) ([]*OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_number, status, total, payment_status, created_at
		FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []*OrderSummary{}
	for rows.Next() {
		o := &OrderSummary{}
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.Total, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
