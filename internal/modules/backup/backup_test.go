package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type recordingRepo struct {
	tables []string
	stmts  []string
}

func (r *recordingRepo) Dump(context.Context, io.Writer, []string) error { return nil }

func (r *recordingRepo) Replace(_ context.Context, tables, stmts []string) error {
	r.tables, r.stmts = tables, stmts
	return nil
}

func TestSplit(t *testing.T) {
	script := []byte(`-- cafepos backup
INSERT INTO customers (id, name, notes) VALUES ('a', 'O''Brien; Sons', NULL);
-- orders
INSERT INTO orders (id, notes) VALUES ('b', E'line\'; still quoted');

`)
	stmts, err := split(script)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `INSERT INTO customers (id, name, notes) VALUES ('a', 'O''Brien; Sons', NULL)`, stmts[0])
	assert.True(t, strings.HasSuffix(stmts[1], `E'line\'; still quoted')`))

	_, err = split([]byte(`INSERT INTO users (id) VALUES ('oops);`))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestSplitSkipsCommentsAndQuotedText(t *testing.T) {
	// A quote inside a comment must not hide the separators around it.
	stmts, err := split([]byte(`INSERT INTO currency_rates (code, rate) VALUES ('USD', 1) /* ' */; DROP TABLE orders; /* ' */`))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `DROP TABLE orders`, stmts[1])

	stmts, err = split([]byte(`INSERT INTO "customers" ("id", "na;me") VALUES ('a', $body$it's; fine$body$);
/* outer /* nested ; */ still comment ; */
INSERT INTO customers (id, notes) VALUES ('b', $$x;y$$);`))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `$body$it's; fine$body$`)
	assert.Contains(t, stmts[0], `"na;me"`)
	assert.Equal(t, `INSERT INTO customers (id, notes) VALUES ('b', $$x;y$$)`, stmts[1])

	for _, bad := range []string{
		`INSERT INTO users (id) VALUES ('1') /* open`,
		`INSERT INTO users ("id) VALUES ('1');`,
		`INSERT INTO users (id) VALUES ($q$1);`,
	} {
		_, err := split([]byte(bad))
		assert.True(t, errors.Is(err, apperr.ErrInvalid), bad)
	}
}

func TestRestoreRejectsCommentSmuggledStatement(t *testing.T) {
	repo := &recordingRepo{}
	_, err := NewService(repo).Restore(context.Background(),
		[]byte(`INSERT INTO currency_rates (code, rate) VALUES ('USD', 1) /* ' */; DROP TABLE orders; /* ' */`))
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	assert.Nil(t, repo.stmts)
}

func TestReplaceRunsStatementsPrepared(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "users" CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO users (id) VALUES ('1')`)).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO users (id) VALUES ('2'); DELETE FROM orders`)).
		WillReturnError(&pq.Error{Code: "42601", Message: "cannot insert multiple commands into a prepared statement"})
	mock.ExpectRollback()

	err = NewPostgresRepository(db).Replace(context.Background(), []string{"users"}, []string{
		`INSERT INTO users (id) VALUES ('1')`,
		`INSERT INTO users (id) VALUES ('2'); DELETE FROM orders`,
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	assert.Contains(t, err.Error(), "statement 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreRejectsForeignStatements(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	for _, script := range []string{
		`DROP TABLE users;`,
		`INSERT INTO pg_authid (rolname) VALUES ('x');`,
		`INSERT INTO users (id) VALUES ('1'); DELETE FROM orders;`,
		`-- nothing here`,
	} {
		_, err := svc.Restore(ctx, []byte(script))
		assert.True(t, errors.Is(err, apperr.ErrInvalid), script)
	}
	assert.Nil(t, repo.stmts)
}

func TestRestoreCountsRows(t *testing.T) {
	repo := &recordingRepo{}
	res, err := NewService(repo).Restore(context.Background(), []byte(`
INSERT INTO "users" ("id") VALUES ('1');
insert into users (id) values ('2');
INSERT INTO currency_rates (code, rate) VALUES ('USD', 0.037);
`))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Statements)
	assert.Equal(t, map[string]int{"users": 2, "currency_rates": 1}, res.Rows)
	assert.Equal(t, Tables, repo.tables)
	assert.Len(t, repo.stmts, 3)
}

func TestLiteral(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "NULL", literal(nil))
	assert.Equal(t, "true", literal(true))
	assert.Equal(t, "42", literal(int64(42)))
	assert.Equal(t, "'12.50'", literal([]byte("12.50")))
	assert.Equal(t, "'O''Brien'", literal("O'Brien"))
	assert.Equal(t, "'2026-03-01T09:30:00Z'", literal(ts))
}

func TestDumpWritesInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "currency_rates" ORDER BY 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "rate", "updated_at"}).
			AddRow([]byte("USD"), []byte("US dollar"), []byte("0.037"), updated).
			AddRow([]byte("EUR"), nil, []byte("0.034"), updated))
	mock.ExpectCommit()

	var buf bytes.Buffer
	err = NewPostgresRepository(db).Dump(context.Background(), &buf, []string{"currency_rates"})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `INSERT INTO currency_rates ("code", "name", "rate", "updated_at") VALUES ('USD', 'US dollar', '0.037', '2026-03-01T08:00:00Z');`)
	assert.Contains(t, out, `VALUES ('EUR', NULL, '0.034',`)
	assert.NoError(t, mock.ExpectationsWereMet())

	stmts, err := split(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}

func TestReplaceRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "users", "orders" CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO users`)).
		ExpectExec().
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = NewPostgresRepository(db).Replace(context.Background(), []string{"users", "orders"},
		[]string{`INSERT INTO users (id) VALUES ('1')`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
