package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/order"
)

// Method represents how an order was paid.
type Method string

const (
	MethodCash        Method = "cash"
	MethodCard        Method = "card"
	MethodMobileMoney Method = "mobile_money"
	MethodVoucher     Method = "voucher"
)

// Status represents the state of a payment.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// Payment records money taken at the counter for an order.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ShiftID     *uuid.UUID      `json:"shift_id,omitempty"`
	CashierID   *uuid.UUID      `json:"cashier_id,omitempty"`
	Method      Method          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	ChangeGiven decimal.Decimal `json:"change_given"`
	Currency    string          `json:"currency"`
	Reference   string          `json:"reference,omitempty"`
	Status      Status          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderRef is the part of an order that payments read and change.
type OrderRef struct {
	ID            uuid.UUID
	Number        string
	Status        order.Status
	PaymentStatus order.PaymentStatus
	Total         decimal.Decimal
	Currency      string
}

// PayRequest is the payload for paying an order.
type PayRequest struct {
	Method    Method          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// RefundRequest is the payload for refunding a payment.
type RefundRequest struct {
	Reason string `json:"reason"`
}
