package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// placeholder stands in for display fields with no value.
const placeholder = "-"

// OrderView is the caller-facing representation of an order.
type OrderView struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	Items      []OrderItemView `json:"items"`

	// StatusHistory is included only when explicitly requested.
	StatusHistory []StatusChangeView `json:"status_history,omitempty"`

	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`
	ShippingMethod  string `json:"shipping_method"`
	PaymentMethod   string `json:"payment_method"`
}

type OrderItemView struct {
	PartID    string          `json:"part_id"`
	PartName  string          `json:"part_name"`
	Sku       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type StatusChangeView struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

func orDash(s string) string {
	if blank(s) {
		return placeholder
	}
	return strings.TrimSpace(s)
}

// NewOrderView renders an order for callers. Name, phone and address come from
// the order's shipping snapshot; the email comes from the customer profile,
// which may be nil for staff reads of orphaned records.
func NewOrderView(o *Order, c *Customer, includeHistory bool) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemView{
			PartID:    item.PartID,
			PartName:  item.PartName,
			Sku:       item.Sku,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}

	email := ""
	if c != nil {
		email = c.Email
	}

	view := OrderView{
		OrderID:         o.OrderID,
		CustomerID:      o.CustomerID,
		CreatedAt:       o.CreatedAt,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Total:           o.Total,
		Status:          string(o.Status),
		Items:           items,
		CustomerName:    orDash(o.Shipping.FirstName + " " + o.Shipping.LastName),
		CustomerEmail:   orDash(email),
		CustomerPhone:   orDash(o.Shipping.Phone),
		DeliveryAddress: orDash(o.Shipping.FormattedAddress()),
		ShippingMethod:  o.ShippingMethod,
		PaymentMethod:   o.PaymentMethod,
	}

	if includeHistory {
		history := make([]StatusChangeView, 0, len(o.StatusHistory))
		for _, h := range o.StatusHistory {
			history = append(history, StatusChangeView{Status: string(h.Status), ChangedAt: h.ChangedAt})
		}
		sort.Slice(history, func(i, j int) bool {
			return history[i].ChangedAt.Before(history[j].ChangedAt)
		})
		view.StatusHistory = history
	}
	return view
}
