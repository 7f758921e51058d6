package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/kingrea/storefront/internal/catalog"
)

// Draft is the configuration in progress while an item is open. It is never
// shared with the cart; committing copies it into a cart line.
type Draft struct {
	Item     catalog.Item
	Quantity int
	Modifier *catalog.Modifier
}

// EffectivePrice is the chosen modifier's price when one is set, otherwise
// the item price. The modifier price replaces the item price.
func (d Draft) EffectivePrice() decimal.Decimal {
	if d.Modifier != nil {
		return d.Modifier.Price
	}
	return d.Item.Price
}

// Total is EffectivePrice × Quantity, the amount shown on the add action.
func (d Draft) Total() decimal.Decimal {
	return d.EffectivePrice().Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// Purchasable reports whether the draft may be committed.
func (d Draft) Purchasable() bool {
	return d.EffectivePrice().IsPositive()
}

// IsChosen reports whether mod is the active modifier.
func (d Draft) IsChosen(mod catalog.Modifier) bool {
	return d.Modifier != nil && d.Modifier.ID == mod.ID
}

func (d Draft) clone() Draft {
	out := d
	out.Item = d.Item.Clone()
	if d.Modifier != nil {
		mod := *d.Modifier
		out.Modifier = &mod
	}
	return out
}
