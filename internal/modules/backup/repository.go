package backup

import (
	"context"
	"io"
)

type Repository interface {
	// Dump writes INSERT statements for every row of tables, in order.
	Dump(ctx context.Context, w io.Writer, tables []string) error
	// Replace truncates tables and runs stmts in a single transaction.
	Replace(ctx context.Context, tables []string, stmts []string) error
}
