package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Adjust(ctx context.Context, adj Adjustment) (*LogEntry, error) {
	var entry *LogEntry
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		entry, err = Apply(ctx, tx, adj)
		return err
	})
	return entry, err
}

func (r *postgresRepo) ListLogs(ctx context.Context, f LogFilter) ([]*LogEntry, error) {
	query := `
		SELECT l.id, l.item_type, l.item_id, COALESCE(p.name, c.name, ''), l.delta,
		       l.quantity_before, l.quantity_after, l.reason, COALESCE(l.reference_type, ''),
		       l.reference_id, l.user_id, l.notes, l.created_at
		FROM inventory_logs l
		LEFT JOIN products p ON l.item_type = 'product' AND p.id = l.item_id
		LEFT JOIN components c ON l.item_type = 'component' AND c.id = l.item_id
		WHERE 1=1`
	args := []interface{}{}
	if f.ItemType != "" {
		args = append(args, f.ItemType)
		query += fmt.Sprintf(` AND l.item_type=$%d`, len(args))
	}
	if f.ItemID != nil {
		args = append(args, *f.ItemID)
		query += fmt.Sprintf(` AND l.item_id=$%d`, len(args))
	}
	if f.Reason != "" {
		args = append(args, f.Reason)
		query += fmt.Sprintf(` AND l.reason=$%d`, len(args))
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(` ORDER BY l.created_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*LogEntry{}
	for rows.Next() {
		e := &LogEntry{}
		var refID, userID uuid.NullUUID
		if err := rows.Scan(&e.ID, &e.ItemType, &e.ItemID, &e.ItemName, &e.Delta,
			&e.QuantityBefore, &e.QuantityAfter, &e.Reason, &e.ReferenceType,
			&refID, &userID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if refID.Valid {
			id := refID.UUID
			e.ReferenceID = &id
		}
		if userID.Valid {
			id := userID.UUID
			e.UserID = &id
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// LowStock lists active stock-tracked products and all components whose
// quantity is at or below their threshold.
func (r *postgresRepo) LowStock(ctx context.Context) ([]*LowStockItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT 'product', id, name, unit, stock_quantity, low_stock_threshold FROM products
		WHERE is_active AND track_stock AND NOT is_component_based AND stock_quantity <= low_stock_threshold
		UNION ALL
		SELECT 'component', id, name, unit, stock_quantity, low_stock_threshold FROM components
		WHERE stock_quantity <= low_stock_threshold
		ORDER BY 5, 3`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*LowStockItem{}
	for rows.Next() {
		it := &LowStockItem{}
		if err := rows.Scan(&it.ItemType, &it.ID, &it.Name, &it.Unit, &it.StockQuantity, &it.LowStockThreshold); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
