package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Type tells the kitchen and the courier how the order leaves the counter.
type Type string

const (
	TypeDineIn   Type = "dine_in"
	TypeTakeaway Type = "takeaway"
	TypeDelivery Type = "delivery"
)

// Channel indicates how the order was placed.
type Channel string

const (
	ChannelPOS    Channel = "pos"
	ChannelKiosk  Channel = "kiosk"
	ChannelOnline Channel = "online"
)

// PaymentStatus tracks settlement of the order total.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Order is a sale rung up at the till, the kiosk or online.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Status          Status          `json:"status"`
	OrderType       Type            `json:"order_type"`
	Channel         Channel         `json:"channel"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"` // nil for walk-in orders
	CashierID       *uuid.UUID      `json:"cashier_id,omitempty"`
	CourierID       *uuid.UUID      `json:"courier_id,omitempty"`
	ShiftID         *uuid.UUID      `json:"shift_id,omitempty"`
	TableNumber     string          `json:"table_number,omitempty"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	LoyaltyPoints   int64           `json:"loyalty_points"`
	Notes           string          `json:"notes,omitempty"`
	Items           []*Item         `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Item is a single line of an order. Name and price are copied at sale time.
type Item struct {
	ID          uuid.UUID        `json:"id"`
	OrderID     uuid.UUID        `json:"order_id"`
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	LineTotal   decimal.Decimal  `json:"line_total"`
	Options     []SelectedOption `json:"options"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SelectedOption is a modifier chosen for an item.
type SelectedOption struct {
	OptionID   uuid.UUID       `json:"option_id"`
	Group      string          `json:"group"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// CartItem describes one requested line.
type CartItem struct {
	ProductID uuid.UUID   `json:"product_id"`
	Quantity  int         `json:"quantity"`
	OptionIDs []uuid.UUID `json:"option_ids"`
	Notes     string      `json:"notes"`
}

// PlaceOrderRequest is the payload for creating a new order.
type PlaceOrderRequest struct {
	OrderType       Type            `json:"order_type"`
	Channel         Channel         `json:"channel"`
	CustomerID      *uuid.UUID      `json:"customer_id"`
	TableNumber     string          `json:"table_number"`
	DeliveryAddress string          `json:"delivery_address"`
	Discount        decimal.Decimal `json:"discount"`
	Notes           string          `json:"notes"`
	Items           []CartItem      `json:"items"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// AssignCourierRequest hands a delivery order to a courier.
type AssignCourierRequest struct {
	CourierID uuid.UUID `json:"courier_id"`
}

// Filter narrows order listings.
type Filter struct {
	Status    Status
	From      *time.Time
	To        *time.Time
	ShiftID   *uuid.UUID
	CourierID *uuid.UUID
	Limit     int
}
