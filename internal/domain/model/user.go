package model

import "time"

// Role is the coarse permission level carried by an identity.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the customer account the order subsystem reads for tier and notifications.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      Role
	Wholesale bool
	CreatedAt time.Time
}

// PriceTier returns the price list the user is entitled to.
func (u *User) PriceTier() PriceTier {
	if u != nil && u.Wholesale {
		return PriceTierWholesale
	}
	return PriceTierRetail
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the caller may perform operator actions.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or act on the order.
func (i Identity) CanAccess(o *Order) bool {
	return i.IsAdmin() || o.OwnedBy(i)
}
