package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/modules/achievement"
	"github.com/georgemunganga/cafepos/internal/modules/catalog"
	"github.com/georgemunganga/cafepos/internal/modules/organization"
	"github.com/georgemunganga/cafepos/internal/modules/user"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines order business logic.
type Service interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListOrders(ctx context.Context, f Filter) ([]*Order, error)
	// UpdateStatus advances the order. Cancelling puts consumed stock back
	// and takes back loyalty points.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error)
	AssignCourier(ctx context.Context, id uuid.UUID, courierID uuid.UUID) (*Order, error)
}

// Catalog looks up products with their recipe and option groups.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Settings supplies the tax rate, currency and loyalty rate.
type Settings interface {
	Get(ctx context.Context) (*organization.Organization, error)
}

// Users resolves couriers.
type Users interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Awarder grants achievements after a sale.
type Awarder interface {
	Evaluate(ctx context.Context, userID uuid.UUID) ([]*achievement.Achievement, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	settings Settings
	users    Users
	awards   Awarder
	events   events.Publisher
	log      *slog.Logger
}

// Deps groups the collaborators of the order service. Awards may be nil.
type Deps struct {
	Catalog  Catalog
	Settings Settings
	Users    Users
	Awards   Awarder
	Events   events.Publisher
	Log      *slog.Logger
}

func NewService(repo Repository, deps Deps) Service {
	if deps.Events == nil {
		deps.Events = events.Discard{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &service{
		repo:     repo,
		catalog:  deps.Catalog,
		settings: deps.Settings,
		users:    deps.Users,
		awards:   deps.Awards,
		events:   deps.Events,
		log:      deps.Log,
	}
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusPreparing, StatusReady, StatusCancelled},
	StatusPreparing:  {StatusReady, StatusCancelled},
	StatusReady:      {StatusDelivering, StatusDelivered, StatusCancelled},
	StatusDelivering: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func canTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func normalizeRequest(ctx context.Context, req *PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return apperr.Invalidf("order must contain at least one item")
	}
	for _, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return apperr.Invalidf("product_id is required")
		}
		if it.Quantity <= 0 {
			return apperr.Invalidf("quantity must be > 0 for product %s", it.ProductID)
		}
	}

	switch req.OrderType {
	case "":
		req.OrderType = TypeTakeaway
	case TypeDineIn, TypeTakeaway, TypeDelivery:
	default:
		return apperr.Invalidf("unknown order_type %q", req.OrderType)
	}
	req.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
	if req.OrderType == TypeDelivery && req.DeliveryAddress == "" {
		return apperr.Invalidf("delivery_address is required for delivery orders")
	}

	if id, ok := web.IdentityFrom(ctx); ok && id.Role == web.RoleKiosk {
		req.Channel = ChannelKiosk
	}
	switch req.Channel {
	case "":
		req.Channel = ChannelPOS
	case ChannelPOS, ChannelKiosk, ChannelOnline:
	default:
		return apperr.Invalidf("unknown channel %q", req.Channel)
	}
	if req.Discount.IsNegative() {
		return apperr.Invalidf("discount cannot be negative")
	}
	return nil
}

// loadProducts fetches every product in the cart once.
func (s *service) loadProducts(ctx context.Context, cart []CartItem) (map[uuid.UUID]*catalog.Product, error) {
	products := make(map[uuid.UUID]*catalog.Product, len(cart))
	for _, it := range cart {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := s.catalog.GetProduct(ctx, it.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalidf("product %s does not exist", it.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, apperr.Unprocessablef("product %s is not available", p.Name)
		}
		products[p.ID] = p
	}
	return products, nil
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := normalizeRequest(ctx, &req); err != nil {
		return nil, err
	}
	org, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	items, subtotal, err := priceItems(req.Items, products)
	if err != nil {
		return nil, err
	}
	discount, tax, total := totals(subtotal, req.Discount, org.TaxRate)

	o := &Order{
		ID:              uuid.New(),
		OrderNumber:     generateOrderNumber(),
		Status:          StatusPending,
		OrderType:       req.OrderType,
		Channel:         req.Channel,
		CustomerID:      req.CustomerID,
		CashierID:       web.ActorID(ctx),
		TableNumber:     strings.TrimSpace(req.TableNumber),
		DeliveryAddress: req.DeliveryAddress,
		Subtotal:        subtotal,
		Discount:        discount,
		Tax:             tax,
		Total:           total,
		Currency:        org.Currency,
		PaymentStatus:   PaymentUnpaid,
		Notes:           req.Notes,
		Items:           items,
	}
	for _, it := range o.Items {
		it.OrderID = o.ID
	}

	if err := s.repo.Create(ctx, o, stockMoves(req.Items, products), org.LoyaltyRate); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	if s.awards != nil && o.CashierID != nil {
		if _, err := s.awards.Evaluate(ctx, *o.CashierID); err != nil {
			s.log.Warn("evaluate achievements", "user_id", *o.CashierID, "error", err)
		}
	}
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, apperr.Invalidf("order number is required")
	}
	return s.repo.GetByNumber(ctx, number)
}

func (s *service) ListOrders(ctx context.Context, f Filter) ([]*Order, error) {
	if f.Status != "" {
		if _, ok := validTransitions[f.Status]; !ok {
			return nil, apperr.Invalidf("unknown status %q", f.Status)
		}
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}
	return s.repo.List(ctx, f)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	if _, known := validTransitions[status]; !known {
		return nil, apperr.Invalidf("unknown status %q", status)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(o.Status, status) {
		return nil, apperr.Conflictf("cannot transition order from %s to %s", o.Status, status)
	}
	if status == StatusDelivering && o.OrderType != TypeDelivery {
		return nil, apperr.Conflictf("only delivery orders can be out for delivery")
	}

	if status == StatusCancelled {
		err = s.repo.Cancel(ctx, o, web.ActorID(ctx))
	} else {
		err = s.repo.UpdateStatus(ctx, id, o.Status, status)
	}
	if err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.publish(ctx, o)
	if status == StatusCancelled {
		s.events.Publish(ctx, events.Event{Type: events.InventoryUpdate, Entity: "order", ID: o.ID.String()})
	}
	return o, nil
}

func (s *service) AssignCourier(ctx context.Context, id uuid.UUID, courierID uuid.UUID) (*Order, error) {
	if courierID == uuid.Nil {
		return nil, apperr.Invalidf("courier_id is required")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OrderType != TypeDelivery {
		return nil, apperr.Conflictf("order %s is not a delivery order", o.OrderNumber)
	}
	if o.Status == StatusDelivered || o.Status == StatusCancelled {
		return nil, apperr.Conflictf("order %s is already %s", o.OrderNumber, o.Status)
	}
	u, err := s.users.GetUser(ctx, courierID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Invalidf("courier %s does not exist", courierID)
	}
	if err != nil {
		return nil, err
	}
	if u.Role != web.RoleCourier || !u.IsActive {
		return nil, apperr.Invalidf("user %s is not an active courier", courierID)
	}
	if err := s.repo.AssignCourier(ctx, id, courierID); err != nil {
		return nil, err
	}
	o.CourierID = &courierID
	s.publish(ctx, o)
	return o, nil
}

func (s *service) publish(ctx context.Context, o *Order) {
	s.events.Publish(ctx, events.Event{
		Type:        events.OrderUpdate,
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
	})
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
