package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

type rowScanner interface{ Scan(dest ...interface{}) error }

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func expectOne(res sql.Result, err error, what string, id uuid.UUID) error {
	if err != nil {
		return apperr.FromDB(err, what)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("%s %s not found", what, id)
	}
	return nil
}

// ── categories ────────────────────────────────────────────────────────────────

const categoryColumns = `id,name,description,sort_order,created_at,updated_at`

func scanCategory(row rowScanner) (*Category, error) {
	c := &Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, apperr.FromDB(err, "category")
	}
	return c, nil
}

func (r *postgresRepo) CreateCategory(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id,name,description,sort_order) VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Description, c.SortOrder).Scan(&c.CreatedAt, &c.UpdatedAt)
	return apperr.FromDB(err, "category")
}

func (r *postgresRepo) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id))
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresRepo) UpdateCategory(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE categories SET name=$1, description=$2, sort_order=$3, updated_at=NOW()
		WHERE id=$4 RETURNING updated_at`,
		c.Name, c.Description, c.SortOrder, c.ID).Scan(&c.UpdatedAt)
	return apperr.FromDB(err, "category")
}

func (r *postgresRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return expectOne(res, err, "category", id)
}

// ── products ──────────────────────────────────────────────────────────────────

const productColumns = `id,name,description,sku,barcode,category_id,price,cost,stock_quantity,unit,
	low_stock_threshold,track_stock,is_component_based,is_active,image_url,created_at,updated_at`

func scanProduct(row rowScanner) (*Product, error) {
	p := &Product{}
	var sku, barcode sql.NullString
	var categoryID uuid.NullUUID
	err := row.Scan(&p.ID, &p.Name, &p.Description, &sku, &barcode, &categoryID,
		&p.Price, &p.Cost, &p.StockQuantity, &p.Unit, &p.LowStockThreshold,
		&p.TrackStock, &p.IsComponentBased, &p.IsActive, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	p.SKU = sku.String
	p.Barcode = barcode.String
	if categoryID.Valid {
		id := categoryID.UUID
		p.CategoryID = &id
	}
	return p, nil
}

// CreateProduct inserts p at zero stock and books any opening quantity as an
// adjustment so the ledger accounts for it.
func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	opening := p.StockQuantity
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products
			  (id,name,description,sku,barcode,category_id,price,cost,stock_quantity,unit,
			   low_stock_threshold,track_stock,is_component_based,is_active,image_url)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,$10,$11,$12,$13,$14)
			RETURNING created_at, updated_at`,
			p.ID, p.Name, p.Description, nullString(p.SKU), nullString(p.Barcode), p.CategoryID,
			p.Price, p.Cost, p.Unit, p.LowStockThreshold,
			p.TrackStock, p.IsComponentBased, p.IsActive, p.ImageURL).
			Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return apperr.FromDB(err, "product")
		}
		p.StockQuantity = decimal.Zero
		entry, err := openingStock(ctx, tx, inventory.ItemProduct, p.ID, opening)
		if err != nil || entry == nil {
			return err
		}
		p.StockQuantity = entry.QuantityAfter
		return nil
	})
}

func openingStock(ctx context.Context, tx *sql.Tx, itemType string, id uuid.UUID, qty decimal.Decimal) (*inventory.LogEntry, error) {
	if qty.IsZero() {
		return nil, nil
	}
	return inventory.Apply(ctx, tx, inventory.Adjustment{
		ItemType: itemType,
		ItemID:   id,
		Delta:    qty,
		Reason:   inventory.ReasonAdjustment,
		UserID:   web.ActorID(ctx),
		Notes:    "opening stock",
	})
}

func (r *postgresRepo) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *postgresRepo) ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	n := 1
	if f.CategoryID != nil {
		query += fmt.Sprintf(` AND category_id=$%d`, n)
		args = append(args, *f.CategoryID)
		n++
	}
	if f.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d)`, n, n, n)
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if f.Active != nil {
		query += fmt.Sprintf(` AND is_active=$%d`, n)
		args = append(args, *f.Active)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct leaves stock_quantity alone; stock only moves through inventory.
func (r *postgresRepo) UpdateProduct(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, sku=$3, barcode=$4, category_id=$5, price=$6, cost=$7,
		    unit=$8, low_stock_threshold=$9, track_stock=$10, is_component_based=$11,
		    is_active=$12, image_url=$13, updated_at=NOW()
		WHERE id=$14
		RETURNING stock_quantity, updated_at`,
		p.Name, p.Description, nullString(p.SKU), nullString(p.Barcode), p.CategoryID, p.Price, p.Cost,
		p.Unit, p.LowStockThreshold, p.TrackStock, p.IsComponentBased,
		p.IsActive, p.ImageURL, p.ID).
		Scan(&p.StockQuantity, &p.UpdatedAt)
	return apperr.FromDB(err, "product")
}

func (r *postgresRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	return expectOne(res, err, "product", id)
}

// ── components ────────────────────────────────────────────────────────────────

const componentColumns = `id,name,unit,stock_quantity,cost_per_unit,low_stock_threshold,created_at,updated_at`

func scanComponent(row rowScanner) (*Component, error) {
	c := &Component{}
	err := row.Scan(&c.ID, &c.Name, &c.Unit, &c.StockQuantity, &c.CostPerUnit,
		&c.LowStockThreshold, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "component")
	}
	return c, nil
}

func (r *postgresRepo) CreateComponent(ctx context.Context, c *Component) error {
	opening := c.StockQuantity
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO components (id,name,unit,stock_quantity,cost_per_unit,low_stock_threshold)
			VALUES ($1,$2,$3,0,$4,$5)
			RETURNING created_at, updated_at`,
			c.ID, c.Name, c.Unit, c.CostPerUnit, c.LowStockThreshold).
			Scan(&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return apperr.FromDB(err, "component")
		}
		c.StockQuantity = decimal.Zero
		entry, err := openingStock(ctx, tx, inventory.ItemComponent, c.ID, opening)
		if err != nil || entry == nil {
			return err
		}
		c.StockQuantity = entry.QuantityAfter
		return nil
	})
}

func (r *postgresRepo) GetComponent(ctx context.Context, id uuid.UUID) (*Component, error) {
	return scanComponent(r.db.QueryRowContext(ctx, `SELECT `+componentColumns+` FROM components WHERE id=$1`, id))
}

func (r *postgresRepo) ListComponents(ctx context.Context) ([]*Component, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+componentColumns+` FROM components ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	components := []*Component{}
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *postgresRepo) UpdateComponent(ctx context.Context, c *Component) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE components SET name=$1, unit=$2, cost_per_unit=$3, low_stock_threshold=$4, updated_at=NOW()
		WHERE id=$5
		RETURNING stock_quantity, updated_at`,
		c.Name, c.Unit, c.CostPerUnit, c.LowStockThreshold, c.ID).
		Scan(&c.StockQuantity, &c.UpdatedAt)
	return apperr.FromDB(err, "component")
}

func (r *postgresRepo) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM components WHERE id=$1`, id)
	return expectOne(res, err, "component", id)
}

// ── recipes ───────────────────────────────────────────────────────────────────

func (r *postgresRepo) GetRecipe(ctx context.Context, productID uuid.UUID) ([]*RecipeLine, error) {
	return GetRecipe(ctx, r.db, productID)
}

// GetRecipe reads a product's component lines with q, which may be a transaction.
func GetRecipe(ctx context.Context, q database.Querier, productID uuid.UUID) ([]*RecipeLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT pc.component_id, c.name, c.unit, pc.quantity
		FROM product_components pc JOIN components c ON c.id = pc.component_id
		WHERE pc.product_id=$1 ORDER BY c.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []*RecipeLine{}
	for rows.Next() {
		l := &RecipeLine{}
		if err := rows.Scan(&l.ComponentID, &l.ComponentName, &l.Unit, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) ReplaceRecipe(ctx context.Context, productID uuid.UUID, lines []*RecipeLine) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_components WHERE product_id=$1`, productID); err != nil {
			return err
		}
		for _, l := range lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_components (product_id, component_id, quantity) VALUES ($1,$2,$3)`,
				productID, l.ComponentID, l.Quantity)
			if err != nil {
				return apperr.FromDB(err, "recipe component")
			}
		}
		return nil
	})
}

// ── option groups ─────────────────────────────────────────────────────────────

func (r *postgresRepo) ListOptionGroups(ctx context.Context, productID uuid.UUID) ([]*OptionGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,product_id,name,required,multi_select,sort_order,created_at,updated_at
		FROM option_groups WHERE product_id=$1 ORDER BY sort_order, name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*OptionGroup{}
	byID := map[uuid.UUID]*OptionGroup{}
	for rows.Next() {
		g := &OptionGroup{Options: []*Option{}}
		if err := rows.Scan(&g.ID, &g.ProductID, &g.Name, &g.Required, &g.MultiSelect,
			&g.SortOrder, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
		byID[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.group_id, o.name, o.price_delta, o.sort_order
		FROM options o JOIN option_groups g ON g.id = o.group_id
		WHERE g.product_id=$1 ORDER BY o.sort_order, o.name`, productID)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()
	for optRows.Next() {
		o := &Option{}
		var groupID uuid.UUID
		if err := optRows.Scan(&o.ID, &groupID, &o.Name, &o.PriceDelta, &o.SortOrder); err != nil {
			return nil, err
		}
		if g, ok := byID[groupID]; ok {
			g.Options = append(g.Options, o)
		}
	}
	return groups, optRows.Err()
}

func (r *postgresRepo) GetOptionGroup(ctx context.Context, id uuid.UUID) (*OptionGroup, error) {
	g := &OptionGroup{Options: []*Option{}}
	err := r.db.QueryRowContext(ctx, `
		SELECT id,product_id,name,required,multi_select,sort_order,created_at,updated_at
		FROM option_groups WHERE id=$1`, id).
		Scan(&g.ID, &g.ProductID, &g.Name, &g.Required, &g.MultiSelect, &g.SortOrder, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "option group")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price_delta, sort_order FROM options WHERE group_id=$1 ORDER BY sort_order, name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		o := &Option{}
		if err := rows.Scan(&o.ID, &o.Name, &o.PriceDelta, &o.SortOrder); err != nil {
			return nil, err
		}
		g.Options = append(g.Options, o)
	}
	return g, rows.Err()
}

func (r *postgresRepo) SaveOptionGroup(ctx context.Context, g *OptionGroup) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO option_groups (id,product_id,name,required,multi_select,sort_order)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO UPDATE
			SET name=EXCLUDED.name, required=EXCLUDED.required, multi_select=EXCLUDED.multi_select,
			    sort_order=EXCLUDED.sort_order, updated_at=NOW()
			RETURNING created_at, updated_at`,
			g.ID, g.ProductID, g.Name, g.Required, g.MultiSelect, g.SortOrder).
			Scan(&g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return apperr.FromDB(err, "option group")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE group_id=$1`, g.ID); err != nil {
			return err
		}
		for _, o := range g.Options {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO options (id, group_id, name, price_delta, sort_order) VALUES ($1,$2,$3,$4,$5)`,
				o.ID, g.ID, o.Name, o.PriceDelta, o.SortOrder)
			if err != nil {
				return apperr.FromDB(err, "option")
			}
		}
		return nil
	})
}

func (r *postgresRepo) DeleteOptionGroup(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM option_groups WHERE id=$1`, id)
	return expectOne(res, err, "option group", id)
}
