package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the persisted aggregate. Totals and the shipping snapshot are
// computed once at creation and never re-derived afterwards.
type Order struct {
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderItem     `json:"items"`
	StatusHistory []StatusChange  `json:"status_history"`

	Shipping       ShippingSnapshot `json:"shipping"`
	ShippingMethod string           `json:"shipping_method"`
	PaymentMethod  string           `json:"payment_method"`
}

// OrderItem is one line of an order. Unit price, name and SKU are snapshots
// taken from the part at order time; later catalog edits do not touch them.
type OrderItem struct {
	PartID    string          `json:"part_id"`
	PartName  string          `json:"part_name"`
	Sku       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal is computed, never stored.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusChange is one append-only history entry; every order starts with a
// Pending entry written alongside the order itself.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	ChangedAt time.Time   `json:"changed_at"`
}

// AppendStatus moves the order to status and records the history entry.
func (o *Order) AppendStatus(status OrderStatus, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusChange{Status: status, ChangedAt: at})
}

// StockAdjustment is one instruction for the inventory ledger: how much to
// take from (reserve) or return to (restock) a part's stock.
type StockAdjustment struct {
	PartID   string
	Quantity int
}

// Reservations returns one adjustment per distinct part, combining lines
// that reference the same part. A storage transaction may touch each part
// row only once, so duplicates must be merged before they reach the ledger.
func (o *Order) Reservations() []StockAdjustment {
	index := make(map[string]int, len(o.Items))
	adj := make([]StockAdjustment, 0, len(o.Items))
	for _, item := range o.Items {
		if i, ok := index[item.PartID]; ok {
			adj[i].Quantity += item.Quantity
			continue
		}
		index[item.PartID] = len(adj)
		adj = append(adj, StockAdjustment{PartID: item.PartID, Quantity: item.Quantity})
	}
	return adj
}

// OrderLineRequest is a requested (part, quantity) pair; transient input only.
type OrderLineRequest struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddressOverride is the caller-supplied shipping address used when the saved
// profile address is not.
type AddressOverride struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1"`
	// UseSavedAddress defaults to true when omitted.
	UseSavedAddress         *bool            `json:"use_saved_address"`
	ShippingAddressOverride *AddressOverride `json:"shipping_address_override"`
	ShippingMethod          string           `json:"shipping_method"`
	PaymentMethod           string           `json:"payment_method"`
}

// SavedAddress reports whether the saved profile address should be used.
func (r CreateOrderRequest) SavedAddress() bool {
	return r.UseSavedAddress == nil || *r.UseSavedAddress
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
