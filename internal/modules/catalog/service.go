package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
)

// Service defines catalog business logic.
type Service interface {
	CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req ProductRequest) (*Product, error)
	// GetProduct returns the product with its recipe and option groups.
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateComponent(ctx context.Context, req ComponentRequest) (*Component, error)
	GetComponent(ctx context.Context, id uuid.UUID) (*Component, error)
	ListComponents(ctx context.Context) ([]*Component, error)
	UpdateComponent(ctx context.Context, id uuid.UUID, req ComponentRequest) (*Component, error)
	DeleteComponent(ctx context.Context, id uuid.UUID) error

	GetRecipe(ctx context.Context, productID uuid.UUID) ([]*RecipeLine, error)
	SetRecipe(ctx context.Context, productID uuid.UUID, lines []RecipeLineRequest) ([]*RecipeLine, error)

	ListOptionGroups(ctx context.Context, productID uuid.UUID) ([]*OptionGroup, error)
	CreateOptionGroup(ctx context.Context, productID uuid.UUID, req OptionGroupRequest) (*OptionGroup, error)
	UpdateOptionGroup(ctx context.Context, id uuid.UUID, req OptionGroupRequest) (*OptionGroup, error)
	DeleteOptionGroup(ctx context.Context, id uuid.UUID) error
}

// CategoryRequest holds the editable fields of a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// ProductRequest holds the data for creating or updating a product.
// StockQuantity is honoured on create only.
type ProductRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode"`
	CategoryID        *uuid.UUID      `json:"category_id"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	TrackStock        *bool           `json:"track_stock"`
	IsComponentBased  bool            `json:"is_component_based"`
	IsActive          *bool           `json:"is_active"`
	ImageURL          string          `json:"image_url"`
}

// ComponentRequest holds the data for a component. StockQuantity is honoured
// on create only.
type ComponentRequest struct {
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// RecipeLineRequest is one component line of a bundle recipe.
type RecipeLineRequest struct {
	ComponentID uuid.UUID       `json:"component_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// OptionGroupRequest holds a modifier group and its full option list.
type OptionGroupRequest struct {
	Name        string          `json:"name"`
	Required    bool            `json:"required"`
	MultiSelect bool            `json:"multi_select"`
	SortOrder   int             `json:"sort_order"`
	Options     []OptionRequest `json:"options"`
}

type OptionRequest struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

type service struct {
	repo   Repository
	events events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, events: publisher}
}

func (s *service) changed(ctx context.Context, entity string, id uuid.UUID) {
	s.events.Publish(ctx, events.Event{Type: events.CatalogUpdate, Entity: entity, ID: id.String()})
}

// ── categories ────────────────────────────────────────────────────────────────

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalidf("name is required")
	}
	c := &Category{ID: uuid.New(), Name: name, Description: req.Description, SortOrder: req.SortOrder}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.changed(ctx, "category", c.ID)
	return c, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalidf("name is required")
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = req.Description
	c.SortOrder = req.SortOrder
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.changed(ctx, "category", c.ID)
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "category", id)
	return nil
}

// ── products ──────────────────────────────────────────────────────────────────

func validateProduct(req ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Invalidf("name is required")
	}
	if req.Price.IsNegative() {
		return apperr.Invalidf("price cannot be negative")
	}
	if req.Cost.IsNegative() {
		return apperr.Invalidf("cost cannot be negative")
	}
	if req.LowStockThreshold.IsNegative() {
		return apperr.Invalidf("low_stock_threshold cannot be negative")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	if req.StockQuantity.IsNegative() {
		return nil, apperr.Invalidf("stock_quantity cannot be negative")
	}
	p := &Product{ID: uuid.New(), TrackStock: true, IsActive: true, StockQuantity: req.StockQuantity}
	applyProduct(p, req)
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.changed(ctx, "product", p.ID)
	return p, nil
}

func applyProduct(p *Product, req ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.SKU = strings.TrimSpace(req.SKU)
	p.Barcode = strings.TrimSpace(req.Barcode)
	p.CategoryID = req.CategoryID
	p.Price = req.Price.Round(2)
	p.Cost = req.Cost.Round(2)
	p.Unit = req.Unit
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	p.LowStockThreshold = req.LowStockThreshold
	if req.TrackStock != nil {
		p.TrackStock = *req.TrackStock
	}
	p.IsComponentBased = req.IsComponentBased
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.ImageURL = req.ImageURL
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsComponentBased {
		if p.Components, err = s.repo.GetRecipe(ctx, id); err != nil {
			return nil, err
		}
	}
	if p.OptionGroups, err = s.repo.ListOptionGroups(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.ListProducts(ctx, f)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProduct(p, req)
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.changed(ctx, "product", p.ID)
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "product", id)
	return nil
}

// ── components ────────────────────────────────────────────────────────────────

func validateComponent(req ComponentRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Invalidf("name is required")
	}
	if req.CostPerUnit.IsNegative() || req.LowStockThreshold.IsNegative() {
		return apperr.Invalidf("cost_per_unit and low_stock_threshold cannot be negative")
	}
	return nil
}

func (s *service) CreateComponent(ctx context.Context, req ComponentRequest) (*Component, error) {
	if err := validateComponent(req); err != nil {
		return nil, err
	}
	if req.StockQuantity.IsNegative() {
		return nil, apperr.Invalidf("stock_quantity cannot be negative")
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	c := &Component{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(req.Name),
		Unit:              unit,
		StockQuantity:     req.StockQuantity,
		CostPerUnit:       req.CostPerUnit,
		LowStockThreshold: req.LowStockThreshold,
	}
	if err := s.repo.CreateComponent(ctx, c); err != nil {
		return nil, err
	}
	s.changed(ctx, "component", c.ID)
	return c, nil
}

func (s *service) GetComponent(ctx context.Context, id uuid.UUID) (*Component, error) {
	return s.repo.GetComponent(ctx, id)
}

func (s *service) ListComponents(ctx context.Context) ([]*Component, error) {
	return s.repo.ListComponents(ctx)
}

func (s *service) UpdateComponent(ctx context.Context, id uuid.UUID, req ComponentRequest) (*Component, error) {
	if err := validateComponent(req); err != nil {
		return nil, err
	}
	c, err := s.repo.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	if req.Unit != "" {
		c.Unit = req.Unit
	}
	c.CostPerUnit = req.CostPerUnit
	c.LowStockThreshold = req.LowStockThreshold
	if err := s.repo.UpdateComponent(ctx, c); err != nil {
		return nil, err
	}
	s.changed(ctx, "component", c.ID)
	return c, nil
}

func (s *service) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteComponent(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "component", id)
	return nil
}

// ── recipes ───────────────────────────────────────────────────────────────────

func (s *service) GetRecipe(ctx context.Context, productID uuid.UUID) ([]*RecipeLine, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.GetRecipe(ctx, productID)
}

func (s *service) SetRecipe(ctx context.Context, productID uuid.UUID, req []RecipeLineRequest) ([]*RecipeLine, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{}
	lines := make([]*RecipeLine, 0, len(req))
	for _, l := range req {
		if l.ComponentID == uuid.Nil {
			return nil, apperr.Invalidf("component_id is required")
		}
		if !l.Quantity.IsPositive() {
			return nil, apperr.Invalidf("quantity must be greater than zero for component %s", l.ComponentID)
		}
		if seen[l.ComponentID] {
			return nil, apperr.Invalidf("component %s listed twice", l.ComponentID)
		}
		seen[l.ComponentID] = true
		lines = append(lines, &RecipeLine{ComponentID: l.ComponentID, Quantity: l.Quantity})
	}
	if err := s.repo.ReplaceRecipe(ctx, productID, lines); err != nil {
		return nil, err
	}
	s.changed(ctx, "product", productID)
	return s.repo.GetRecipe(ctx, productID)
}

// ── option groups ─────────────────────────────────────────────────────────────

func (s *service) ListOptionGroups(ctx context.Context, productID uuid.UUID) ([]*OptionGroup, error) {
	return s.repo.ListOptionGroups(ctx, productID)
}

func buildOptions(g *OptionGroup, req OptionGroupRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperr.Invalidf("name is required")
	}
	if len(req.Options) == 0 {
		return apperr.Invalidf("option group needs at least one option")
	}
	g.Name = name
	g.Required = req.Required
	g.MultiSelect = req.MultiSelect
	g.SortOrder = req.SortOrder
	g.Options = make([]*Option, 0, len(req.Options))
	for i, o := range req.Options {
		optName := strings.TrimSpace(o.Name)
		if optName == "" {
			return apperr.Invalidf("option name is required")
		}
		g.Options = append(g.Options, &Option{ID: uuid.New(), Name: optName, PriceDelta: o.PriceDelta.Round(2), SortOrder: i})
	}
	return nil
}

func (s *service) CreateOptionGroup(ctx context.Context, productID uuid.UUID, req OptionGroupRequest) (*OptionGroup, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	g := &OptionGroup{ID: uuid.New(), ProductID: productID}
	if err := buildOptions(g, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveOptionGroup(ctx, g); err != nil {
		return nil, err
	}
	s.changed(ctx, "product", productID)
	return g, nil
}

func (s *service) UpdateOptionGroup(ctx context.Context, id uuid.UUID, req OptionGroupRequest) (*OptionGroup, error) {
	g, err := s.repo.GetOptionGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := buildOptions(g, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveOptionGroup(ctx, g); err != nil {
		return nil, err
	}
	s.changed(ctx, "product", g.ProductID)
	return g, nil
}

func (s *service) DeleteOptionGroup(ctx context.Context, id uuid.UUID) error {
	g, err := s.repo.GetOptionGroup(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOptionGroup(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "product", g.ProductID)
	return nil
}
