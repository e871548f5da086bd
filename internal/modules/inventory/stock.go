package inventory

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

func tableFor(itemType string) (string, error) {
	switch itemType {
	case ItemProduct:
		return "products", nil
	case ItemComponent:
		return "components", nil
	}
	return "", apperr.Invalidf("item_type must be product or component")
}

// Apply moves stock and writes the ledger row using q, so callers can run it
// inside their own transaction.
func Apply(ctx context.Context, q database.Querier, adj Adjustment) (*LogEntry, error) {
	table, err := tableFor(adj.ItemType)
	if err != nil {
		return nil, err
	}

	query := `UPDATE ` + table + ` SET stock_quantity = stock_quantity + $1, updated_at = NOW() WHERE id = $2`
	if !adj.AllowNegative {
		query += ` AND stock_quantity + $1 >= 0`
	}
	query += ` RETURNING stock_quantity`

	var after decimal.Decimal
	err = q.QueryRowContext(ctx, query, adj.Delta, adj.ItemID).Scan(&after)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, explainMiss(ctx, q, table, adj)
	}
	if err != nil {
		return nil, err
	}

	entry := &LogEntry{
		ID:             uuid.New(),
		ItemType:       adj.ItemType,
		ItemID:         adj.ItemID,
		Delta:          adj.Delta,
		QuantityBefore: after.Sub(adj.Delta),
		QuantityAfter:  after,
		Reason:         adj.Reason,
		ReferenceType:  adj.ReferenceType,
		ReferenceID:    adj.ReferenceID,
		UserID:         adj.UserID,
		Notes:          adj.Notes,
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO inventory_logs
		  (id,item_type,item_id,delta,quantity_before,quantity_after,reason,reference_type,reference_id,user_id,notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		entry.ID, entry.ItemType, entry.ItemID, entry.Delta, entry.QuantityBefore, entry.QuantityAfter,
		entry.Reason, nullString(entry.ReferenceType), entry.ReferenceID, entry.UserID, entry.Notes).
		Scan(&entry.CreatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "inventory log")
	}
	return entry, nil
}

// explainMiss tells a missing item apart from a movement that would go negative.
func explainMiss(ctx context.Context, q database.Querier, table string, adj Adjustment) error {
	var current decimal.Decimal
	err := q.QueryRowContext(ctx, `SELECT stock_quantity FROM `+table+` WHERE id = $1`, adj.ItemID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("%s %s not found", adj.ItemType, adj.ItemID)
	}
	if err != nil {
		return err
	}
	return apperr.Unprocessablef("insufficient stock for %s %s: have %s, change %s",
		adj.ItemType, adj.ItemID, current.String(), adj.Delta.String())
}

// Reverse undoes every movement recorded against a reference by applying the
// negated deltas with the given reason. Rows already carrying that reason are
// skipped, as are movements of items that no longer exist. Stock may go
// negative.
func Reverse(ctx context.Context, q database.Querier, refType string, refID uuid.UUID, reason string, userID *uuid.UUID) ([]*LogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT item_type, item_id, delta FROM inventory_logs
		WHERE reference_type=$1 AND reference_id=$2 AND reason <> $3
		ORDER BY created_at, id`, refType, refID, reason)
	if err != nil {
		return nil, err
	}
	var moves []Adjustment
	for rows.Next() {
		a := Adjustment{}
		if err := rows.Scan(&a.ItemType, &a.ItemID, &a.Delta); err != nil {
			rows.Close()
			return nil, err
		}
		moves = append(moves, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]*LogEntry, 0, len(moves))
	for _, m := range moves {
		ref := refID
		entry, err := Apply(ctx, q, Adjustment{
			ItemType:      m.ItemType,
			ItemID:        m.ItemID,
			Delta:         m.Delta.Neg(),
			Reason:        reason,
			ReferenceType: refType,
			ReferenceID:   &ref,
			UserID:        userID,
			AllowNegative: true,
		})
		if errors.Is(err, apperr.ErrNotFound) {
			// The item was deleted after the movement; there is no stock left to restore.
			slog.WarnContext(ctx, "skip reversal of deleted item",
				"item_type", m.ItemType, "item_id", m.ItemID, "reference_type", refType, "reference_id", refID)
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
