package achievement

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

type rowScanner interface{ Scan(dest ...interface{}) error }

const columns = `a.id, a.code, a.name, a.description, a.metric, a.threshold, a.points, a.created_at`

func scanAchievement(row rowScanner, extra ...interface{}) (*Achievement, error) {
	a := &Achievement{}
	dest := append([]interface{}{&a.ID, &a.Code, &a.Name, &a.Description, &a.Metric,
		&a.Threshold, &a.Points, &a.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, apperr.FromDB(err, "achievement")
	}
	return a, nil
}

func (r *postgresRepo) query(ctx context.Context, query string, args ...interface{}) ([]*Achievement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, a *Achievement) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO achievements (id, code, name, description, metric, threshold, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		a.ID, a.Code, a.Name, a.Description, a.Metric, a.Threshold, a.Points).Scan(&a.CreatedAt)
	return apperr.FromDB(err, "achievement")
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Achievement, error) {
	return scanAchievement(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM achievements a WHERE a.id=$1`, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]*Achievement, error) {
	return r.query(ctx, `SELECT `+columns+` FROM achievements a ORDER BY a.metric, a.threshold`)
}

func (r *postgresRepo) Update(ctx context.Context, a *Achievement) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE achievements SET code=$1, name=$2, description=$3, metric=$4, threshold=$5, points=$6
		WHERE id=$7`,
		a.Code, a.Name, a.Description, a.Metric, a.Threshold, a.Points, a.ID)
	if err != nil {
		return apperr.FromDB(err, "achievement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("achievement not found")
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM achievements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("achievement not found")
	}
	return nil
}

func (r *postgresRepo) Metrics(ctx context.Context, userID uuid.UUID) (Metrics, error) {
	var m Metrics
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(o.total), 0), COALESCE(SUM(i.qty), 0)
		FROM orders o
		LEFT JOIN (SELECT order_id, SUM(quantity) AS qty FROM order_items GROUP BY order_id) i ON i.order_id = o.id
		WHERE o.cashier_id=$1 AND o.status <> 'cancelled'`, userID).
		Scan(&m.OrdersCount, &m.SalesTotal, &m.ItemsSold)
	return m, err
}

func (r *postgresRepo) Unearned(ctx context.Context, userID uuid.UUID) ([]*Achievement, error) {
	return r.query(ctx, `
		SELECT `+columns+` FROM achievements a
		WHERE NOT EXISTS (
			SELECT 1 FROM user_achievements ua WHERE ua.achievement_id = a.id AND ua.user_id = $1)
		ORDER BY a.threshold`, userID)
}

func (r *postgresRepo) Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, achievementID)
	if err != nil {
		return false, apperr.FromDB(err, "user achievement")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *postgresRepo) Earned(ctx context.Context, userID uuid.UUID) ([]*Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+`, ua.earned_at
		FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id=$1
		ORDER BY ua.earned_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*Achievement{}
	for rows.Next() {
		var earned time.Time
		a, err := scanAchievement(rows, &earned)
		if err != nil {
			return nil, err
		}
		a.EarnedAt = &earned
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *postgresRepo) Leaderboard(ctx context.Context, from, to time.Time, limit int) ([]*Standing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, TRIM(u.first_name || ' ' || u.last_name),
			COALESCE(p.points, 0), COALESCE(p.earned, 0),
			COALESCE(s.orders, 0), COALESCE(s.sales, 0)
		FROM users u
		LEFT JOIN (
			SELECT ua.user_id, SUM(a.points) AS points, COUNT(*) AS earned
			FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
			GROUP BY ua.user_id
		) p ON p.user_id = u.id
		LEFT JOIN (
			SELECT cashier_id, COUNT(*) AS orders, SUM(total) AS sales
			FROM orders
			WHERE status <> 'cancelled' AND created_at >= $1 AND created_at < $2
			GROUP BY cashier_id
		) s ON s.cashier_id = u.id
		WHERE u.is_active AND (p.user_id IS NOT NULL OR s.cashier_id IS NOT NULL)
		ORDER BY 3 DESC, 6 DESC, u.id
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	board := []*Standing{}
	for rows.Next() {
		s := &Standing{}
		if err := rows.Scan(&s.UserID, &s.Name, &s.Points, &s.Achievements, &s.OrdersCount, &s.SalesTotal); err != nil {
			return nil, err
		}
		s.Rank = len(board) + 1
		board = append(board, s)
	}
	return board, rows.Err()
}
