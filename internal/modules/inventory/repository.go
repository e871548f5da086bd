package inventory

import "context"

// Repository defines stock ledger storage.
type Repository interface {
	// Adjust applies a single movement in its own transaction.
	Adjust(ctx context.Context, adj Adjustment) (*LogEntry, error)
	ListLogs(ctx context.Context, f LogFilter) ([]*LogEntry, error)
	LowStock(ctx context.Context) ([]*LowStockItem, error)
}
