package organization

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Get(ctx context.Context) (*Organization, error) {
	o := &Organization{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id,name,address,phone,currency,tax_rate,loyalty_rate,created_at,updated_at
		FROM organizations ORDER BY created_at LIMIT 1`).
		Scan(&o.ID, &o.Name, &o.Address, &o.Phone, &o.Currency, &o.TaxRate, &o.LoyaltyRate,
			&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "organization")
	}
	return o, nil
}

func (r *postgresRepo) Update(ctx context.Context, o *Organization) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE organizations
		SET name=$1, address=$2, phone=$3, currency=$4, tax_rate=$5, loyalty_rate=$6, updated_at=NOW()
		WHERE id=$7
		RETURNING updated_at`,
		o.Name, o.Address, o.Phone, o.Currency, o.TaxRate, o.LoyaltyRate, o.ID).
		Scan(&o.UpdatedAt)
	return apperr.FromDB(err, "organization")
}
