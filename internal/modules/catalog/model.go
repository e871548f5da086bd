package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products on the POS screen.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a sellable item. Component-based products draw stock from their
// recipe instead of their own stock column.
type Product struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	SKU               string          `json:"sku,omitempty"`
	Barcode           string          `json:"barcode,omitempty"`
	CategoryID        *uuid.UUID      `json:"category_id,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	TrackStock        bool            `json:"track_stock"`
	IsComponentBased  bool            `json:"is_component_based"`
	IsActive          bool            `json:"is_active"`
	ImageURL          string          `json:"image_url,omitempty"`
	Components        []*RecipeLine   `json:"components,omitempty"`
	OptionGroups      []*OptionGroup  `json:"option_groups,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Component is a raw material (beans, milk, cups) consumed by products.
type Component struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RecipeLine is the quantity of one component used per unit of a product.
type RecipeLine struct {
	ComponentID   uuid.UUID       `json:"component_id"`
	ComponentName string          `json:"component_name,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// OptionGroup is a set of modifiers offered for a product (size, milk, extras).
type OptionGroup struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Required    bool      `json:"required"`
	MultiSelect bool      `json:"multi_select"`
	SortOrder   int       `json:"sort_order"`
	Options     []*Option `json:"options"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Option is a single modifier with its price adjustment.
type Option struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	SortOrder  int             `json:"sort_order"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Active     *bool
}
