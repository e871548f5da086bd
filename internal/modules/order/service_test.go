package order

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/modules/achievement"
	"github.com/georgemunganga/cafepos/internal/modules/catalog"
	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/modules/organization"
	"github.com/georgemunganga/cafepos/internal/modules/user"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

type memRepo struct {
	orders    map[uuid.UUID]*Order
	moves     []inventory.Adjustment
	cancelled []uuid.UUID
}

func newMemRepo() *memRepo { return &memRepo{orders: map[uuid.UUID]*Order{}} }

func (m *memRepo) Create(_ context.Context, o *Order, moves []inventory.Adjustment, _ decimal.Decimal) error {
	m.orders[o.ID] = o
	m.moves = append(m.moves, moves...)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFoundf("order not found")
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, apperr.NotFoundf("order not found")
}

func (m *memRepo) List(context.Context, Filter) ([]*Order, error) { return nil, nil }

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, _, to Status) error {
	m.orders[id].Status = to
	return nil
}

func (m *memRepo) Cancel(_ context.Context, o *Order, _ *uuid.UUID) error {
	m.orders[o.ID].Status = StatusCancelled
	m.cancelled = append(m.cancelled, o.ID)
	return nil
}

func (m *memRepo) AssignCourier(_ context.Context, id uuid.UUID, courierID uuid.UUID) error {
	m.orders[id].CourierID = &courierID
	return nil
}

type stubCatalog map[uuid.UUID]*catalog.Product

func (c stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, apperr.NotFoundf("product not found")
	}
	return p, nil
}

type stubSettings struct{ org organization.Organization }

func (s stubSettings) Get(context.Context) (*organization.Organization, error) {
	o := s.org
	return &o, nil
}

type stubUsers map[uuid.UUID]*user.User

func (u stubUsers) GetUser(_ context.Context, id uuid.UUID) (*user.User, error) {
	found, ok := u[id]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	return found, nil
}

type countingAwarder struct{ calls []uuid.UUID }

func (a *countingAwarder) Evaluate(_ context.Context, userID uuid.UUID) ([]*achievement.Achievement, error) {
	a.calls = append(a.calls, userID)
	return nil, nil
}

type fixture struct {
	svc     Service
	repo    *memRepo
	awards  *countingAwarder
	bus     *events.Bus
	latte   *catalog.Product
	muffin  *catalog.Product
	retired *catalog.Product
	courier *user.User
	cashier *user.User
}

func newFixture() *fixture {
	p, _, _, _, _ := latte()
	muffin := &catalog.Product{ID: uuid.New(), Name: "Muffin", Price: d("18"), TrackStock: true, IsActive: true}
	retired := &catalog.Product{ID: uuid.New(), Name: "Pumpkin spice", Price: d("40")}
	courier := &user.User{ID: uuid.New(), Role: web.RoleCourier, IsActive: true}
	cashier := &user.User{ID: uuid.New(), Role: web.RoleCashier, IsActive: true}

	f := &fixture{
		repo:    newMemRepo(),
		awards:  &countingAwarder{},
		bus:     events.NewBus(),
		latte:   p,
		muffin:  muffin,
		retired: retired,
		courier: courier,
		cashier: cashier,
	}
	f.svc = NewService(f.repo, Deps{
		Catalog:  stubCatalog{p.ID: p, muffin.ID: muffin, retired.ID: retired},
		Settings: stubSettings{org: organization.Organization{Currency: "ZMW", TaxRate: d("0.16"), LoyaltyRate: d("1")}},
		Users:    stubUsers{courier.ID: courier, cashier.ID: cashier},
		Awards:   f.awards,
		Events:   f.bus,
	})
	return f
}

func cashierCtx() (context.Context, uuid.UUID) {
	id := uuid.New()
	return web.WithIdentity(context.Background(), web.Identity{UserID: id, Role: web.RoleCashier}), id
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture()
	ch, unsub := f.bus.Subscribe(4)
	defer unsub()
	ctx, cashierID := cashierCtx()
	size := f.latte.OptionGroups[0].Options[1]

	o, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		Items: []CartItem{
			{ProductID: f.latte.ID, Quantity: 1, OptionIDs: []uuid.UUID{size.ID}},
			{ProductID: f.muffin.ID, Quantity: 2},
		},
		Discount: d("5.50"),
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{4}$`), o.OrderNumber)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, TypeTakeaway, o.OrderType)
	assert.Equal(t, ChannelPOS, o.Channel)
	assert.Equal(t, PaymentUnpaid, o.PaymentStatus)
	assert.Equal(t, "ZMW", o.Currency)
	require.NotNil(t, o.CashierID)
	assert.Equal(t, cashierID, *o.CashierID)

	// 39.50 + 2 × 18 = 75.50, less 5.50 discount, 16% tax on 70
	assert.Equal(t, "75.5", o.Subtotal.String())
	assert.Equal(t, "5.5", o.Discount.String())
	assert.Equal(t, "11.2", o.Tax.String())
	assert.Equal(t, "81.2", o.Total.String())
	for _, it := range o.Items {
		assert.Equal(t, o.ID, it.OrderID)
	}

	require.Len(t, f.repo.moves, 1)
	assert.Equal(t, "-2", f.repo.moves[0].Delta.String())

	ev := <-ch
	assert.Equal(t, events.OrderUpdate, ev.Type)
	assert.Equal(t, o.OrderNumber, ev.OrderNumber)
	assert.Equal(t, []uuid.UUID{cashierID}, f.awards.calls)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture()
	ctx, _ := cashierCtx()
	size := f.latte.OptionGroups[0].Options[0]
	latteLine := CartItem{ProductID: f.latte.ID, Quantity: 1, OptionIDs: []uuid.UUID{size.ID}}

	cases := []struct {
		name string
		req  PlaceOrderRequest
		kind error
	}{
		{"empty", PlaceOrderRequest{}, apperr.ErrInvalid},
		{"zero quantity", PlaceOrderRequest{Items: []CartItem{{ProductID: f.muffin.ID}}}, apperr.ErrInvalid},
		{"unknown product", PlaceOrderRequest{Items: []CartItem{{ProductID: uuid.New(), Quantity: 1}}}, apperr.ErrInvalid},
		{"inactive product", PlaceOrderRequest{Items: []CartItem{{ProductID: f.retired.ID, Quantity: 1}}}, apperr.ErrUnprocessable},
		{"delivery without address", PlaceOrderRequest{OrderType: TypeDelivery, Items: []CartItem{latteLine}}, apperr.ErrInvalid},
		{"unknown type", PlaceOrderRequest{OrderType: "drive_thru", Items: []CartItem{latteLine}}, apperr.ErrInvalid},
		{"unknown channel", PlaceOrderRequest{Channel: "fax", Items: []CartItem{latteLine}}, apperr.ErrInvalid},
		{"negative discount", PlaceOrderRequest{Discount: d("-1"), Items: []CartItem{latteLine}}, apperr.ErrInvalid},
		{"required option", PlaceOrderRequest{Items: []CartItem{{ProductID: f.latte.ID, Quantity: 1}}}, apperr.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, tc.req)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
		})
	}
	assert.Empty(t, f.repo.orders)
}

func TestKioskOrdersUseKioskChannel(t *testing.T) {
	f := newFixture()
	ctx := web.WithIdentity(context.Background(), web.Identity{UserID: uuid.New(), Role: web.RoleKiosk})

	o, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		Channel: ChannelPOS,
		Items:   []CartItem{{ProductID: f.muffin.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelKiosk, o.Channel)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx, _ := cashierCtx()
	o, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{Items: []CartItem{{ProductID: f.muffin.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, o.ID, "lost")
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	_, err = f.svc.UpdateStatus(ctx, o.ID, StatusDelivered)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	o, err = f.svc.UpdateStatus(ctx, o.ID, StatusReady)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, o.Status)

	_, err = f.svc.UpdateStatus(ctx, o.ID, StatusDelivering)
	assert.True(t, errors.Is(err, apperr.ErrConflict), "takeaway orders are never out for delivery")

	o, err = f.svc.UpdateStatus(ctx, o.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{o.ID}, f.repo.cancelled)

	_, err = f.svc.UpdateStatus(ctx, o.ID, StatusPreparing)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestAssignCourier(t *testing.T) {
	f := newFixture()
	ctx, _ := cashierCtx()
	takeaway, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{Items: []CartItem{{ProductID: f.muffin.ID, Quantity: 1}}})
	require.NoError(t, err)
	delivery, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		OrderType:       TypeDelivery,
		DeliveryAddress: "Plot 12, Kabulonga",
		Items:           []CartItem{{ProductID: f.muffin.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.AssignCourier(ctx, takeaway.ID, f.courier.ID)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = f.svc.AssignCourier(ctx, delivery.ID, f.cashier.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	o, err := f.svc.AssignCourier(ctx, delivery.ID, f.courier.ID)
	require.NoError(t, err)
	require.NotNil(t, o.CourierID)
	assert.Equal(t, f.courier.ID, *o.CourierID)

	_, err = f.svc.UpdateStatus(ctx, delivery.ID, StatusReady)
	require.NoError(t, err)
	o, err = f.svc.UpdateStatus(ctx, delivery.ID, StatusDelivering)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivering, o.Status)
}

func TestGetByNumberNormalizes(t *testing.T) {
	f := newFixture()
	ctx, _ := cashierCtx()
	o, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{Items: []CartItem{{ProductID: f.muffin.ID, Quantity: 1}}})
	require.NoError(t, err)

	got, err := f.svc.GetByNumber(ctx, "  "+strings.ToLower(o.OrderNumber)+" ")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.GetByNumber(ctx, " ")
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}
