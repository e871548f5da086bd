package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
)

type memRepo struct {
	categories map[uuid.UUID]*Category
	products   map[uuid.UUID]*Product
	components map[uuid.UUID]*Component
	recipes    map[uuid.UUID][]*RecipeLine
	groups     map[uuid.UUID]*OptionGroup
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[uuid.UUID]*Category{},
		products:   map[uuid.UUID]*Product{},
		components: map[uuid.UUID]*Component{},
		recipes:    map[uuid.UUID][]*RecipeLine{},
		groups:     map[uuid.UUID]*OptionGroup{},
	}
}

func (m *memRepo) CreateCategory(_ context.Context, c *Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return apperr.Conflictf("category already exists")
		}
	}
	m.categories[c.ID] = c
	return nil
}

func (m *memRepo) GetCategory(_ context.Context, id uuid.UUID) (*Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, apperr.NotFoundf("category not found")
	}
	return c, nil
}

func (m *memRepo) ListCategories(context.Context) ([]*Category, error) {
	out := []*Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) UpdateCategory(_ context.Context, c *Category) error {
	m.categories[c.ID] = c
	return nil
}

func (m *memRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return apperr.NotFoundf("category not found")
	}
	delete(m.categories, id)
	return nil
}

func (m *memRepo) CreateProduct(_ context.Context, p *Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memRepo) GetProduct(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFoundf("product not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListProducts(_ context.Context, f ProductFilter) ([]*Product, error) {
	out := []*Product{}
	for _, p := range m.products {
		if f.Active != nil && p.IsActive != *f.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) UpdateProduct(_ context.Context, p *Product) error {
	// stock is owned by the stored row
	p.StockQuantity = m.products[p.ID].StockQuantity
	m.products[p.ID] = p
	return nil
}

func (m *memRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *memRepo) CreateComponent(_ context.Context, c *Component) error {
	m.components[c.ID] = c
	return nil
}

func (m *memRepo) GetComponent(_ context.Context, id uuid.UUID) (*Component, error) {
	c, ok := m.components[id]
	if !ok {
		return nil, apperr.NotFoundf("component not found")
	}
	return c, nil
}

func (m *memRepo) ListComponents(context.Context) ([]*Component, error) {
	out := []*Component{}
	for _, c := range m.components {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) UpdateComponent(_ context.Context, c *Component) error {
	m.components[c.ID] = c
	return nil
}

func (m *memRepo) DeleteComponent(_ context.Context, id uuid.UUID) error {
	delete(m.components, id)
	return nil
}

func (m *memRepo) GetRecipe(_ context.Context, productID uuid.UUID) ([]*RecipeLine, error) {
	return m.recipes[productID], nil
}

func (m *memRepo) ReplaceRecipe(_ context.Context, productID uuid.UUID, lines []*RecipeLine) error {
	for _, l := range lines {
		if _, ok := m.components[l.ComponentID]; !ok {
			return apperr.Invalidf("recipe component references a missing record")
		}
	}
	m.recipes[productID] = lines
	return nil
}

func (m *memRepo) ListOptionGroups(_ context.Context, productID uuid.UUID) ([]*OptionGroup, error) {
	out := []*OptionGroup{}
	for _, g := range m.groups {
		if g.ProductID == productID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memRepo) GetOptionGroup(_ context.Context, id uuid.UUID) (*OptionGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, apperr.NotFoundf("option group not found")
	}
	return g, nil
}

func (m *memRepo) SaveOptionGroup(_ context.Context, g *OptionGroup) error {
	m.groups[g.ID] = g
	return nil
}

func (m *memRepo) DeleteOptionGroup(_ context.Context, id uuid.UUID) error {
	delete(m.groups, id)
	return nil
}

func newTestService() (Service, *memRepo, <-chan events.Event) {
	repo := newMemRepo()
	bus := events.NewBus()
	ch, _ := bus.Subscribe(16)
	return NewService(repo, bus), repo, ch
}

func TestCreateProductDefaultsAndEvent(t *testing.T) {
	svc, repo, ch := newTestService()

	p, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:          " Latte ",
		Price:         decimal.RequireFromString("25.499"),
		StockQuantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "Latte", p.Name)
	assert.Equal(t, "pcs", p.Unit)
	assert.True(t, p.TrackStock)
	assert.True(t, p.IsActive)
	assert.Equal(t, "25.5", p.Price.String())
	assert.True(t, repo.products[p.ID].StockQuantity.Equal(decimal.NewFromInt(10)))

	ev := <-ch
	assert.Equal(t, events.CatalogUpdate, ev.Type)
	assert.Equal(t, "product", ev.Entity)
	assert.Equal(t, p.ID.String(), ev.ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []ProductRequest{
		{Name: ""},
		{Name: "Tea", Price: decimal.NewFromInt(-1)},
		{Name: "Tea", Cost: decimal.NewFromInt(-1)},
		{Name: "Tea", StockQuantity: decimal.NewFromInt(-3)},
	}
	for _, req := range cases {
		_, err := svc.CreateProduct(ctx, req)
		assert.True(t, errors.Is(err, apperr.ErrInvalid), "request %+v", req)
	}
}

func TestUpdateProductKeepsStock(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductRequest{Name: "Muffin", Price: decimal.NewFromInt(15), StockQuantity: decimal.NewFromInt(4)})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateProduct(ctx, p.ID, ProductRequest{
		Name: "Blueberry Muffin", Price: decimal.NewFromInt(18), StockQuantity: decimal.NewFromInt(99), IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Blueberry Muffin", updated.Name)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.StockQuantity.Equal(decimal.NewFromInt(4)))

	_, err = svc.UpdateProduct(ctx, uuid.New(), ProductRequest{Name: "Ghost"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSetRecipe(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductRequest{Name: "Cappuccino", Price: decimal.NewFromInt(30), IsComponentBased: true})
	require.NoError(t, err)
	beans, err := svc.CreateComponent(ctx, ComponentRequest{Name: "Beans", Unit: "g", StockQuantity: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	milk, err := svc.CreateComponent(ctx, ComponentRequest{Name: "Milk", Unit: "ml", StockQuantity: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	lines, err := svc.SetRecipe(ctx, p.ID, []RecipeLineRequest{
		{ComponentID: beans.ID, Quantity: decimal.NewFromInt(18)},
		{ComponentID: milk.ID, Quantity: decimal.NewFromInt(150)},
	})
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Components, 2)

	_, err = svc.SetRecipe(ctx, p.ID, []RecipeLineRequest{{ComponentID: beans.ID, Quantity: decimal.Zero}})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = svc.SetRecipe(ctx, p.ID, []RecipeLineRequest{
		{ComponentID: beans.ID, Quantity: decimal.NewFromInt(1)},
		{ComponentID: beans.ID, Quantity: decimal.NewFromInt(2)},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = svc.SetRecipe(ctx, uuid.New(), nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestOptionGroups(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductRequest{Name: "Flat White", Price: decimal.NewFromInt(28)})
	require.NoError(t, err)

	g, err := svc.CreateOptionGroup(ctx, p.ID, OptionGroupRequest{
		Name:     "Size",
		Required: true,
		Options: []OptionRequest{
			{Name: "Small"},
			{Name: "Large", PriceDelta: decimal.RequireFromString("5.005")},
		},
	})
	require.NoError(t, err)
	require.Len(t, g.Options, 2)
	assert.Equal(t, 1, g.Options[1].SortOrder)
	assert.Equal(t, "5.01", g.Options[1].PriceDelta.StringFixed(2))

	_, err = svc.CreateOptionGroup(ctx, p.ID, OptionGroupRequest{Name: "Milk"})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	updated, err := svc.UpdateOptionGroup(ctx, g.ID, OptionGroupRequest{Name: "Cup size", Options: []OptionRequest{{Name: "Regular"}}})
	require.NoError(t, err)
	assert.Equal(t, "Cup size", updated.Name)
	assert.Len(t, repo.groups[g.ID].Options, 1)

	require.NoError(t, svc.DeleteOptionGroup(ctx, g.ID))
	assert.Empty(t, repo.groups)

	err = svc.DeleteOptionGroup(ctx, g.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCategoryCRUD(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Coffee", SortOrder: 1})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CategoryRequest{Name: "Coffee"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.CreateCategory(ctx, CategoryRequest{Name: "  "})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	c, err = svc.UpdateCategory(ctx, c.ID, CategoryRequest{Name: "Hot drinks", SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "Hot drinks", c.Name)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	assert.True(t, errors.Is(svc.DeleteCategory(ctx, c.ID), apperr.ErrNotFound))
}
