package currency

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) List(ctx context.Context) ([]*Rate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name, rate, updated_at FROM currency_rates ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rates := []*Rate{}
	for rows.Next() {
		rt := &Rate{}
		if err := rows.Scan(&rt.Code, &rt.Name, &rt.Rate, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, rt)
	}
	return rates, rows.Err()
}

func (r *postgresRepo) Get(ctx context.Context, code string) (*Rate, error) {
	rt := &Rate{}
	err := r.db.QueryRowContext(ctx,
		`SELECT code, name, rate, updated_at FROM currency_rates WHERE code=$1`, code).
		Scan(&rt.Code, &rt.Name, &rt.Rate, &rt.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "currency "+code)
	}
	return rt, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, rt *Rate) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO currency_rates (code, name, rate) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name=EXCLUDED.name, rate=EXCLUDED.rate, updated_at=NOW()
		RETURNING updated_at`,
		rt.Code, rt.Name, rt.Rate).Scan(&rt.UpdatedAt)
	return apperr.FromDB(err, "currency")
}

func (r *postgresRepo) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM currency_rates WHERE code=$1`, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("currency %s not found", code)
	}
	return nil
}
