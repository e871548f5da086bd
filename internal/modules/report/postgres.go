package report

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const inPeriod = `status <> 'cancelled' AND created_at >= $1 AND created_at < $2`

func (r *postgresRepo) Sales(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	s := &SalesSummary{From: from, To: to, ByMethod: []*MethodTotal{}}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(SUM(discount), 0),
			COALESCE(SUM(tax), 0), COALESCE(SUM(total), 0)
		FROM orders WHERE `+inPeriod, from, to).
		Scan(&s.OrderCount, &s.Gross, &s.Discounts, &s.Tax, &s.Total)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.method, COUNT(*), COALESCE(SUM(p.amount - p.change_given), 0)
		FROM payments p JOIN orders o ON o.id = p.order_id
		WHERE p.status = 'completed' AND o.status <> 'cancelled'
			AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY p.method
		ORDER BY p.method`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m := &MethodTotal{}
		if err := rows.Scan(&m.Method, &m.Count, &m.Amount); err != nil {
			return nil, err
		}
		s.ByMethod = append(s.ByMethod, m)
	}
	return s, rows.Err()
}

func (r *postgresRepo) Daily(ctx context.Context, from, to time.Time) ([]*DailySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders WHERE `+inPeriod+`
		GROUP BY day
		ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	days := []*DailySales{}
	for rows.Next() {
		d := &DailySales{}
		if err := rows.Scan(&d.Day, &d.OrderCount, &d.Total); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *postgresRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.product_id, i.product_name, SUM(i.quantity), SUM(i.line_total)
		FROM order_items i JOIN orders o ON o.id = i.order_id
		WHERE o.status <> 'cancelled' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY i.product_id, i.product_name
		ORDER BY 3 DESC, 4 DESC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	top := []*TopProduct{}
	for rows.Next() {
		p := &TopProduct{}
		var id uuid.NullUUID
		if err := rows.Scan(&id, &p.Name, &p.Quantity, &p.Revenue); err != nil {
			return nil, err
		}
		if id.Valid {
			pid := id.UUID
			p.ProductID = &pid
		}
		top = append(top, p)
	}
	return top, rows.Err()
}

func (r *postgresRepo) Valuation(ctx context.Context) ([]*ValuationLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT 'product', id, name, unit, stock_quantity, cost, stock_quantity * cost
		FROM products WHERE track_stock AND NOT is_component_based
		UNION ALL
		SELECT 'component', id, name, unit, stock_quantity, cost_per_unit, stock_quantity * cost_per_unit
		FROM components
		ORDER BY 1, 3`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []*ValuationLine{}
	for rows.Next() {
		l := &ValuationLine{}
		if err := rows.Scan(&l.ItemType, &l.ID, &l.Name, &l.Unit, &l.Quantity, &l.UnitCost, &l.Value); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) Orders(ctx context.Context, from, to time.Time) ([]*OrderRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_number, created_at, status, order_type, channel, payment_status, subtotal, discount, tax, total
		FROM orders WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*OrderRow{}
	for rows.Next() {
		o := &OrderRow{}
		if err := rows.Scan(&o.Number, &o.CreatedAt, &o.Status, &o.OrderType, &o.Channel, &o.PaymentStatus,
			&o.Subtotal, &o.Discount, &o.Tax, &o.Total); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *postgresRepo) Products(ctx context.Context) ([]*ProductRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name, COALESCE(p.sku, ''), COALESCE(c.name, ''), p.price, p.cost, p.stock_quantity, p.unit, p.is_active
		FROM products p LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*ProductRow{}
	for rows.Next() {
		p := &ProductRow{}
		if err := rows.Scan(&p.Name, &p.SKU, &p.Category, &p.Price, &p.Cost, &p.Stock, &p.Unit, &p.Active); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *postgresRepo) Customers(ctx context.Context) ([]*CustomerRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, email, phone, loyalty_points, total_spent, created_at
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*CustomerRow{}
	for rows.Next() {
		c := &CustomerRow{}
		if err := rows.Scan(&c.Name, &c.Email, &c.Phone, &c.LoyaltyPoints, &c.TotalSpent, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
