package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item types whose stock is tracked.
const (
	ItemProduct   = "product"
	ItemComponent = "component"
)

// Reasons recorded on stock movements.
const (
	ReasonSale         = "sale"
	ReasonPurchase     = "purchase"
	ReasonAdjustment   = "adjustment"
	ReasonWaste        = "waste"
	ReasonReturn       = "return"
	ReasonCancellation = "cancellation"
)

// Reference types linking a movement to the document that caused it.
const (
	RefOrder         = "order"
	RefPurchaseOrder = "purchase_order"
)

// Adjustment is one signed stock movement.
type Adjustment struct {
	ItemType      string
	ItemID        uuid.UUID
	Delta         decimal.Decimal
	Reason        string
	ReferenceType string
	ReferenceID   *uuid.UUID
	UserID        *uuid.UUID
	Notes         string
	// AllowNegative lets the movement take stock below zero.
	AllowNegative bool
}

// LogEntry is a row of the stock ledger.
type LogEntry struct {
	ID             uuid.UUID       `json:"id"`
	ItemType       string          `json:"item_type"`
	ItemID         uuid.UUID       `json:"item_id"`
	ItemName       string          `json:"item_name,omitempty"`
	Delta          decimal.Decimal `json:"delta"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reason         string          `json:"reason"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID      `json:"reference_id,omitempty"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
}

// LowStockItem is a product or component at or below its threshold.
type LowStockItem struct {
	ItemType          string          `json:"item_type"`
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// LogFilter narrows ledger listings. Zero values match everything.
type LogFilter struct {
	ItemType string
	ItemID   *uuid.UUID
	Reason   string
	Limit    int
}
