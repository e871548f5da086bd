package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/catalog"
	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

// selectOptions resolves the chosen option ids against the product's groups.
func selectOptions(p *catalog.Product, ids []uuid.UUID) ([]SelectedOption, decimal.Decimal, error) {
	type choice struct {
		group  *catalog.OptionGroup
		option *catalog.Option
	}
	index := map[uuid.UUID]choice{}
	for _, g := range p.OptionGroups {
		for _, o := range g.Options {
			index[o.ID] = choice{group: g, option: o}
		}
	}

	selected := make([]SelectedOption, 0, len(ids))
	perGroup := map[uuid.UUID]int{}
	seen := map[uuid.UUID]bool{}
	delta := decimal.Zero
	for _, id := range ids {
		c, ok := index[id]
		if !ok {
			return nil, decimal.Zero, apperr.Invalidf("option %s is not offered for %s", id, p.Name)
		}
		if seen[id] {
			return nil, decimal.Zero, apperr.Invalidf("option %s chosen twice for %s", c.option.Name, p.Name)
		}
		seen[id] = true
		perGroup[c.group.ID]++
		delta = delta.Add(c.option.PriceDelta)
		selected = append(selected, SelectedOption{
			OptionID:   id,
			Group:      c.group.Name,
			Name:       c.option.Name,
			PriceDelta: c.option.PriceDelta,
		})
	}

	for _, g := range p.OptionGroups {
		n := perGroup[g.ID]
		if g.Required && n == 0 {
			return nil, decimal.Zero, apperr.Invalidf("%s requires a choice of %s", p.Name, g.Name)
		}
		if !g.MultiSelect && n > 1 {
			return nil, decimal.Zero, apperr.Invalidf("only one %s may be chosen for %s", g.Name, p.Name)
		}
	}
	return selected, delta, nil
}

// priceItems builds order lines from the cart. products must hold every
// product referenced by the cart.
func priceItems(cart []CartItem, products map[uuid.UUID]*catalog.Product) ([]*Item, decimal.Decimal, error) {
	items := make([]*Item, 0, len(cart))
	subtotal := decimal.Zero
	for _, ci := range cart {
		p := products[ci.ProductID]
		options, delta, err := selectOptions(p, ci.OptionIDs)
		if err != nil {
			return nil, decimal.Zero, err
		}
		unit := p.Price.Add(delta)
		if unit.IsNegative() {
			unit = decimal.Zero
		}
		unit = unit.Round(2)
		line := unit.Mul(decimal.NewFromInt(int64(ci.Quantity))).Round(2)
		subtotal = subtotal.Add(line)

		pid := p.ID
		items = append(items, &Item{
			ID:          uuid.New(),
			ProductID:   &pid,
			ProductName: p.Name,
			Quantity:    ci.Quantity,
			UnitPrice:   unit,
			LineTotal:   line,
			Options:     options,
			Notes:       ci.Notes,
		})
	}
	return items, subtotal, nil
}

// totals clips the discount to [0, subtotal] and applies tax after discount.
func totals(subtotal, discount, taxRate decimal.Decimal) (disc, tax, total decimal.Decimal) {
	disc = discount.Round(2)
	if disc.IsNegative() {
		disc = decimal.Zero
	}
	if disc.GreaterThan(subtotal) {
		disc = subtotal
	}
	taxable := subtotal.Sub(disc)
	tax = taxable.Mul(taxRate).Round(2)
	total = taxable.Add(tax)
	return disc, tax, total
}

// stockMoves lists the stock consumed by the cart, one entry per item.
// Component-based products draw on their recipe, others on their own stock
// when tracked.
func stockMoves(cart []CartItem, products map[uuid.UUID]*catalog.Product) []inventory.Adjustment {
	type key struct {
		itemType string
		id       uuid.UUID
	}
	var moves []inventory.Adjustment
	at := map[key]int{}
	add := func(itemType string, id uuid.UUID, qty decimal.Decimal) {
		k := key{itemType, id}
		if i, ok := at[k]; ok {
			moves[i].Delta = moves[i].Delta.Sub(qty)
			return
		}
		at[k] = len(moves)
		moves = append(moves, inventory.Adjustment{
			ItemType:      itemType,
			ItemID:        id,
			Delta:         qty.Neg(),
			Reason:        inventory.ReasonSale,
			ReferenceType: inventory.RefOrder,
			AllowNegative: true,
		})
	}

	for _, ci := range cart {
		p := products[ci.ProductID]
		qty := decimal.NewFromInt(int64(ci.Quantity))
		switch {
		case p.IsComponentBased:
			for _, line := range p.Components {
				add(inventory.ItemComponent, line.ComponentID, line.Quantity.Mul(qty))
			}
		case p.TrackStock:
			add(inventory.ItemProduct, p.ID, qty)
		}
	}
	return moves
}
