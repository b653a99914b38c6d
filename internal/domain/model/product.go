package model

// Product is the catalog snapshot needed for pricing and stock.
type Product struct {
	ID                 int64
	Name               string
	Price              int64
	WholesalePrice     *int64
	OnSale             bool
	DiscountPercentage float64
	Stock              int
}

// PriceTier selects between retail and wholesale prices.
type PriceTier string

const (
	PriceTierRetail    PriceTier = "retail"
	PriceTierWholesale PriceTier = "wholesale"
)

// OrderType maps the tier onto the order segment snapshot.
func (t PriceTier) OrderType() OrderType {
	if t == PriceTierWholesale {
		return OrderTypeB2B
	}
	return OrderTypeB2C
}
