package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Dump(ctx context.Context, w io.Writer, tables []string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// One snapshot for the whole dump.
		if _, err := tx.ExecContext(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY`); err != nil {
			return err
		}
		for _, t := range tables {
			if err := dumpTable(ctx, tx, w, t); err != nil {
				return fmt.Errorf("dump %s: %w", t, err)
			}
		}
		return nil
	})
}

func dumpTable(ctx context.Context, q database.Querier, w io.Writer, table string) error {
	rows, err := q.QueryContext(ctx, `SELECT * FROM `+pq.QuoteIdentifier(table)+` ORDER BY 1`)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES (", table, strings.Join(quoted, ", "))

	fmt.Fprintf(w, "\n-- %s\n", table)
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	lits := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range values {
			lits[i] = literal(v)
		}
		if _, err := io.WriteString(w, prefix+strings.Join(lits, ", ")+");\n"); err != nil {
			return err
		}
	}
	return rows.Err()
}

// literal renders a scanned driver value as a PostgreSQL literal.
func literal(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return pq.QuoteLiteral(x.Format(time.RFC3339Nano))
	case []byte:
		return pq.QuoteLiteral(string(x))
	case string:
		return pq.QuoteLiteral(x)
	default:
		return pq.QuoteLiteral(fmt.Sprint(x))
	}
}

func (r *postgresRepo) Replace(ctx context.Context, tables []string, stmts []string) error {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = pq.QuoteIdentifier(t)
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE `+strings.Join(quoted, ", ")+` CASCADE`); err != nil {
			return err
		}
		for i, s := range stmts {
			if err := execOne(ctx, tx, s); err != nil {
				var pqErr *pq.Error
				if errors.As(err, &pqErr) {
					return apperr.Invalidf("statement %d: %s", i+1, pqErr.Message)
				}
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// execOne runs s as a prepared statement. The extended protocol refuses more
// than one command, so nothing can ride along behind the INSERT.
func execOne(ctx context.Context, tx *sql.Tx, s string) error {
	stmt, err := tx.PrepareContext(ctx, s)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.ExecContext(ctx)
	return err
}
