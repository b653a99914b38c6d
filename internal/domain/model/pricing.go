package model

import "github.com/shopspring/decimal"

// PricingConfig holds the configuration values money math depends on.
type PricingConfig struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold int64
	DefaultShippingCost   int64
}

// PricedLine is a cart line with the unit price the customer is charged.
type PricedLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice int64
}

// Pricing is the server computed breakdown of a cart.
type Pricing struct {
	Lines         []PricedLine
	TaxRate       decimal.Decimal
	ItemsSubtotal int64
	Tax           int64
	Shipping      int64
	Total         int64
}

// Items converts priced lines into order items.
func (p Pricing) Items() []OrderItem {
	items := make([]OrderItem, len(p.Lines))
	for i, l := range p.Lines {
		items[i] = OrderItem{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return items
}
