package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusOrdered           Status = "ordered"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

// PurchaseOrder is a request to a supplier for stock.
type PurchaseOrder struct {
	ID         uuid.UUID       `json:"id"`
	PONumber   string          `json:"po_number"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Status     Status          `json:"status"`
	Notes      string          `json:"notes"`
	ExpectedAt *time.Time      `json:"expected_at,omitempty"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	CreatedBy  *uuid.UUID      `json:"created_by,omitempty"`
	Items      []*Item         `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Item is one product line of a purchase order.
type Item struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name,omitempty"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// Outstanding is the quantity still expected for the line.
func (it *Item) Outstanding() decimal.Decimal {
	return it.QuantityOrdered.Sub(it.QuantityReceived)
}

// ItemRequest is a requested purchase line.
type ItemRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// OrderRequest is the payload for creating or replacing a draft purchase order.
type OrderRequest struct {
	SupplierID uuid.UUID     `json:"supplier_id"`
	Notes      string        `json:"notes"`
	ExpectedAt *time.Time    `json:"expected_at"`
	Items      []ItemRequest `json:"items"`
}

// ReceiptLine is a quantity arriving for one purchase order line.
type ReceiptLine struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceiveRequest books arriving goods. UpdateCost copies each line's unit cost
// onto the product.
type ReceiveRequest struct {
	Items      []ReceiptLine `json:"items"`
	UpdateCost bool          `json:"update_cost"`
	Notes      string        `json:"notes"`
}

// Filter narrows purchase order listings.
type Filter struct {
	Status     Status
	SupplierID *uuid.UUID
}
