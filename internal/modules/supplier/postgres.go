package supplier

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL supplier repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanSupplier(row rowScanner) (*Supplier, error) {
	s := &Supplier{}
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.ContactName,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.Notes,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromDB(err, "supplier")
	}
	return s, nil
}

func (r *postgresRepository) CreateSupplier(ctx context.Context, s *Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, contact_name, email, phone, address, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.Notes, s.IsActive).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	return apperr.FromDB(err, "supplier")
}

func (r *postgresRepository) GetSupplierByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	query := `
		SELECT id, name, contact_name, email, phone, address, notes, is_active, created_at, updated_at
		FROM suppliers
		WHERE id = $1
	`
	return scanSupplier(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRepository) ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	query := `
		SELECT id, name, contact_name, email, phone, address, notes, is_active, created_at, updated_at
		FROM suppliers
		WHERE is_active OR NOT $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []*Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *postgresRepository) UpdateSupplier(ctx context.Context, s *Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $1, contact_name = $2, email = $3, phone = $4, address = $5, notes = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.Notes, s.IsActive, s.ID).
		Scan(&s.UpdatedAt)
	return apperr.FromDB(err, "supplier")
}

// DeleteSupplier fails with an invalid-input error while purchase orders still
// reference the supplier.
func (r *postgresRepository) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return apperr.FromDB(err, "supplier")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("supplier %s not found", id)
	}
	return nil
}
