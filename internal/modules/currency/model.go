package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is how many units of Code one unit of the base currency buys.
type Rate struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type RateRequest struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// Conversion is the result of converting Amount from one currency to another.
type Conversion struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Rate   decimal.Decimal `json:"rate"`
	Result decimal.Decimal `json:"result"`
}
