package domain

import "github.com/shopspring/decimal"

// Part is a catalog row. Stock is mutated only through the inventory ledger's
// reserve/restock operations; everything else is owned by the catalog.
type Part struct {
	PartID          string          `json:"part_id"`
	Sku             string          `json:"sku"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

// Customer is the profile record the identity collaborator resolves callers to.
type Customer struct {
	CustomerID   string `json:"customer_id"`
	UserID       string `json:"user_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// Role is the caller's resolved role, customer/staff/admin.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Staff reports whether the role may operate on any customer's orders.
func (r Role) Staff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Identity is the caller as resolved by the upstream identity provider. The
// service only scopes and authorizes with it; it never authenticates.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}
