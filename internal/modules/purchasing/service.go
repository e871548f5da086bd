package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// Service defines purchasing business logic.
type Service interface {
	Create(ctx context.Context, req OrderRequest) (*PurchaseOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	List(ctx context.Context, f Filter) ([]*PurchaseOrder, error)
	// Update replaces a draft order's supplier, notes and lines.
	Update(ctx context.Context, id uuid.UUID, req OrderRequest) (*PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*PurchaseOrder, error)
	// Delete removes draft or cancelled orders.
	Delete(ctx context.Context, id uuid.UUID) error
	Receive(ctx context.Context, id uuid.UUID, req ReceiveRequest) (*PurchaseOrder, error)
}

type service struct {
	repo   Repository
	events events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, events: publisher}
}

// validTransitions lists manual status changes. Receiving moves orders
// into partially_received and received.
var validTransitions = map[Status][]Status{
	StatusDraft:             {StatusOrdered, StatusCancelled},
	StatusOrdered:           {StatusCancelled},
	StatusPartiallyReceived: {},
	StatusReceived:          {},
	StatusCancelled:         {},
}

func buildItems(req OrderRequest) ([]*Item, decimal.Decimal, error) {
	if req.SupplierID == uuid.Nil {
		return nil, decimal.Zero, apperr.Invalidf("supplier_id is required")
	}
	if len(req.Items) == 0 {
		return nil, decimal.Zero, apperr.Invalidf("purchase order must contain at least one item")
	}
	seen := map[uuid.UUID]bool{}
	items := make([]*Item, 0, len(req.Items))
	total := decimal.Zero
	for _, ir := range req.Items {
		if ir.ProductID == uuid.Nil {
			return nil, decimal.Zero, apperr.Invalidf("product_id is required")
		}
		if seen[ir.ProductID] {
			return nil, decimal.Zero, apperr.Invalidf("product %s listed twice", ir.ProductID)
		}
		seen[ir.ProductID] = true
		if !ir.Quantity.IsPositive() {
			return nil, decimal.Zero, apperr.Invalidf("quantity must be > 0 for product %s", ir.ProductID)
		}
		if ir.UnitCost.IsNegative() {
			return nil, decimal.Zero, apperr.Invalidf("unit_cost cannot be negative for product %s", ir.ProductID)
		}
		cost := ir.UnitCost.Round(2)
		items = append(items, &Item{
			ID:               uuid.New(),
			ProductID:        ir.ProductID,
			QuantityOrdered:  ir.Quantity,
			QuantityReceived: decimal.Zero,
			UnitCost:         cost,
		})
		total = total.Add(ir.Quantity.Mul(cost))
	}
	return items, total.Round(2), nil
}

func (s *service) Create(ctx context.Context, req OrderRequest) (*PurchaseOrder, error) {
	items, total, err := buildItems(req)
	if err != nil {
		return nil, err
	}
	po := &PurchaseOrder{
		ID:         uuid.New(),
		PONumber:   generatePONumber(),
		SupplierID: req.SupplierID,
		Status:     StatusDraft,
		Notes:      req.Notes,
		ExpectedAt: req.ExpectedAt,
		TotalCost:  total,
		CreatedBy:  web.ActorID(ctx),
		Items:      items,
	}
	if err := s.repo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, f Filter) ([]*PurchaseOrder, error) {
	if f.Status != "" {
		if _, ok := validTransitions[f.Status]; !ok {
			return nil, apperr.Invalidf("unknown status %q", f.Status)
		}
	}
	return s.repo.List(ctx, f)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req OrderRequest) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != StatusDraft {
		return nil, apperr.Conflictf("only draft purchase orders can be edited (current: %s)", po.Status)
	}
	items, total, err := buildItems(req)
	if err != nil {
		return nil, err
	}
	po.SupplierID = req.SupplierID
	po.Notes = req.Notes
	po.ExpectedAt = req.ExpectedAt
	po.TotalCost = total
	po.Items = items
	if err := s.repo.Replace(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, known := validTransitions[status]; !known {
		return nil, apperr.Invalidf("unknown status %q", status)
	}
	valid := false
	for _, next := range validTransitions[po.Status] {
		if next == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperr.Conflictf("cannot transition purchase order from %s to %s", po.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, po.Status, status); err != nil {
		return nil, err
	}
	po.Status = status
	return po, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	po, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if po.Status != StatusDraft && po.Status != StatusCancelled {
		return apperr.Conflictf("only draft or cancelled purchase orders can be deleted (current: %s)", po.Status)
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Receive(ctx context.Context, id uuid.UUID, req ReceiveRequest) (*PurchaseOrder, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Invalidf("receipt must contain at least one item")
	}
	po, err := s.repo.Receive(ctx, id, req, web.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	for _, it := range po.Items {
		s.events.Publish(ctx, events.Event{Type: events.InventoryUpdate, Entity: "product", ID: it.ProductID.String()})
	}
	return po, nil
}

// booking is a validated receipt line.
type booking struct {
	item     *Item
	quantity decimal.Decimal
}

// planReceipt checks lines against po, applies them to the in-memory items and
// sets the resulting status.
func planReceipt(po *PurchaseOrder, lines []ReceiptLine) ([]booking, error) {
	if po.Status != StatusOrdered && po.Status != StatusPartiallyReceived {
		return nil, apperr.Conflictf("cannot receive a %s purchase order", po.Status)
	}
	if len(lines) == 0 {
		return nil, apperr.Invalidf("receipt must contain at least one item")
	}
	byID := make(map[uuid.UUID]*Item, len(po.Items))
	for _, it := range po.Items {
		byID[it.ID] = it
	}
	seen := map[uuid.UUID]bool{}
	bookings := make([]booking, 0, len(lines))
	for _, l := range lines {
		it, ok := byID[l.ItemID]
		if !ok {
			return nil, apperr.Invalidf("item %s is not on purchase order %s", l.ItemID, po.PONumber)
		}
		if seen[l.ItemID] {
			return nil, apperr.Invalidf("item %s listed twice", l.ItemID)
		}
		seen[l.ItemID] = true
		if !l.Quantity.IsPositive() {
			return nil, apperr.Invalidf("quantity must be > 0 for item %s", l.ItemID)
		}
		if l.Quantity.GreaterThan(it.Outstanding()) {
			return nil, apperr.Unprocessablef("cannot receive %s of item %s: only %s outstanding",
				l.Quantity.String(), l.ItemID, it.Outstanding().String())
		}
		bookings = append(bookings, booking{item: it, quantity: l.Quantity})
	}

	for _, b := range bookings {
		b.item.QuantityReceived = b.item.QuantityReceived.Add(b.quantity)
	}
	po.Status = StatusReceived
	for _, it := range po.Items {
		if it.Outstanding().IsPositive() {
			po.Status = StatusPartiallyReceived
			break
		}
	}
	return bookings, nil
}

// generatePONumber creates a human-readable number: PO-YYYYMMDD-XXXX
func generatePONumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("PO-%s-%s", date, suffix)
}
