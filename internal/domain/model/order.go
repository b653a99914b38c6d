package model

import "time"

// FulfillmentMode describes how an order reaches the customer.
type FulfillmentMode string

const (
	FulfillmentDelivery FulfillmentMode = "delivery"
	FulfillmentPickup   FulfillmentMode = "pickup"
)

// Valid reports whether mode is one of the known fulfillment modes.
func (m FulfillmentMode) Valid() bool {
	return m == FulfillmentDelivery || m == FulfillmentPickup
}

// OrderType is the customer segment snapshot taken at checkout.
type OrderType string

const (
	OrderTypeB2C OrderType = "B2C"
	OrderTypeB2B OrderType = "B2B"
)

// PaymentMethod tags how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodGateway      PaymentMethod = "webpay"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Valid reports whether method is accepted at checkout.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodBankTransfer
}

// ShippingAddress is populated for delivery orders.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PickupLocation is populated for pickup orders.
type PickupLocation struct {
	LocationID   string `json:"location_id"`
	Name         string `json:"name,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// OrderItem is a purchased line with its unit price frozen at checkout.
type OrderItem struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice int64
}

// LineTotal returns quantity times the charged unit price.
func (i OrderItem) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Order is the aggregate root of the checkout subsystem.
type Order struct {
	ID              int64
	UserID          int64
	Items           []OrderItem
	Fulfillment     FulfillmentMode
	ShippingAddress *ShippingAddress
	PickupLocation  *PickupLocation
	PaymentMethod   PaymentMethod
	OrderType       OrderType
	TaxRate         float64
	ItemsSubtotal   int64
	Tax             int64
	Shipping        int64
	Total           int64
	Status          OrderStatus
	PaidAt          *time.Time
	DeliveredAt     *time.Time
	PaymentResult   PaymentResult
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPaid is derived from the paid timestamp set by lifecycle transitions.
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

// IsDelivered is derived from the delivered timestamp set by lifecycle transitions.
func (o *Order) IsDelivered() bool {
	return o.DeliveredAt != nil
}

// UsesGateway reports whether the order is paid through the card gateway.
func (o *Order) UsesGateway() bool {
	return o.PaymentMethod == PaymentMethodGateway
}

// OwnedBy reports whether the identity may act as the order owner.
func (o *Order) OwnedBy(id Identity) bool {
	return id.UserID == o.UserID
}

// ApplyPricing stores server computed money fields.
func (o *Order) ApplyPricing(p Pricing) {
	o.ItemsSubtotal = p.ItemsSubtotal
	o.Tax = p.Tax
	o.Shipping = p.Shipping
	o.Total = p.Total
}

// CheckoutItem is a cart line as submitted by the client.
// UnitPrice is advisory and never used for charging.
type CheckoutItem struct {
	ProductID int64
	Quantity  int
	UnitPrice *int64
}

// CheckoutRequest carries a cart plus fulfillment and payment choices.
// The price fields are advisory and always recomputed.
type CheckoutRequest struct {
	Items           []CheckoutItem
	Fulfillment     FulfillmentMode
	ShippingAddress *ShippingAddress
	PickupLocation  *PickupLocation
	PaymentMethod   PaymentMethod
	ItemsSubtotal   *int64
	Tax             *int64
	Shipping        *int64
	Total           *int64
}

// StatusChange is an operator request to move an order forward.
type StatusChange struct {
	Status OrderStatus
	IsPaid *bool
}

// StatusUpdate is the persisted effect of a transition.
type StatusUpdate struct {
	Status      OrderStatus
	PaidAt      *time.Time
	DeliveredAt *time.Time
}
