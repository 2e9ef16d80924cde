package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
)

// Single-table layout:
//
//	ORDER#<id>    / METADATA   order aggregate (items + history embedded)
//	PART#<id>     / METADATA   catalog row with live stock count
//	CUSTOMER#<id> / PROFILE    customer profile
//
// GSI1 serves per-customer order listing (CUSTOMER#<id> / ORDER#<createdAt>)
// and customer lookup by authenticated subject (USER#<userID> / PROFILE).
// GSI2 serves the staff recent-orders listing under the constant partition
// "ORDER", sorted by creation time.
const (
	skMetadata = "METADATA"
	skProfile  = "PROFILE"

	gsi1Name = "GSI1"
	gsi2Name = "GSI2"

	gsi2OrdersPK = "ORDER"

	stockAttr = "quantity_in_stock"
)

func orderPK(id string) string    { return "ORDER#" + id }
func partPK(id string) string     { return "PART#" + id }
func customerPK(id string) string { return "CUSTOMER#" + id }
func userGSI1PK(id string) string { return "USER#" + id }

type orderItemRecord struct {
	PartID    string `dynamodbav:"part_id"`
	PartName  string `dynamodbav:"part_name"`
	Sku       string `dynamodbav:"sku"`
	Quantity  int    `dynamodbav:"quantity"`
	UnitPrice string `dynamodbav:"unit_price"`
}

type statusChangeRecord struct {
	Status    string    `dynamodbav:"status"`
	ChangedAt time.Time `dynamodbav:"changed_at"`
}

type orderRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	GSI2PK string `dynamodbav:"GSI2PK"`
	GSI2SK string `dynamodbav:"GSI2SK"`

	OrderID       string               `dynamodbav:"order_id"`
	CustomerID    string               `dynamodbav:"customer_id"`
	CreatedAt     time.Time            `dynamodbav:"created_at"`
	Subtotal      string               `dynamodbav:"subtotal"`
	Tax           string               `dynamodbav:"tax"`
	Total         string               `dynamodbav:"total"`
	Status        string               `dynamodbav:"status"`
	Items         []orderItemRecord    `dynamodbav:"items"`
	StatusHistory []statusChangeRecord `dynamodbav:"status_history"`

	ShipFirstName    string `dynamodbav:"ship_first_name"`
	ShipLastName     string `dynamodbav:"ship_last_name"`
	ShipAddressLine1 string `dynamodbav:"ship_address_line1"`
	ShipAddressLine2 string `dynamodbav:"ship_address_line2"`
	ShipCity         string `dynamodbav:"ship_city"`
	ShipState        string `dynamodbav:"ship_state"`
	ShipPostalCode   string `dynamodbav:"ship_postal_code"`
	ShipCountry      string `dynamodbav:"ship_country"`
	ShipPhone        string `dynamodbav:"ship_phone"`
	ShippingMethod   string `dynamodbav:"shipping_method"`
	PaymentMethod    string `dynamodbav:"payment_method"`
}

type partRecord struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`

	PartID          string `dynamodbav:"part_id"`
	Sku             string `dynamodbav:"sku"`
	Name            string `dynamodbav:"name"`
	Price           string `dynamodbav:"price"`
	QuantityInStock int    `dynamodbav:"quantity_in_stock"`
}

type customerRecord struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`

	CustomerID   string `dynamodbav:"customer_id"`
	UserID       string `dynamodbav:"user_id"`
	FirstName    string `dynamodbav:"first_name"`
	LastName     string `dynamodbav:"last_name"`
	Email        string `dynamodbav:"email"`
	Phone        string `dynamodbav:"phone"`
	AddressLine1 string `dynamodbav:"address_line1"`
	AddressLine2 string `dynamodbav:"address_line2"`
	City         string `dynamodbav:"city"`
	State        string `dynamodbav:"state"`
	PostalCode   string `dynamodbav:"postal_code"`
	Country      string `dynamodbav:"country"`
}

func newOrderRecord(o *domain.Order) orderRecord {
	createdAt := o.CreatedAt.UTC().Format(time.RFC3339Nano)

	items := make([]orderItemRecord, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemRecord{
			PartID:    item.PartID,
			PartName:  item.PartName,
			Sku:       item.Sku,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}

	history := make([]statusChangeRecord, 0, len(o.StatusHistory))
	for _, h := range o.StatusHistory {
		history = append(history, statusChangeRecord{Status: string(h.Status), ChangedAt: h.ChangedAt})
	}

	return orderRecord{
		PK:     orderPK(o.OrderID),
		SK:     skMetadata,
		GSI1PK: customerPK(o.CustomerID),
		GSI1SK: "ORDER#" + createdAt,
		GSI2PK: gsi2OrdersPK,
		GSI2SK: createdAt,

		OrderID:       o.OrderID,
		CustomerID:    o.CustomerID,
		CreatedAt:     o.CreatedAt,
		Subtotal:      o.Subtotal.String(),
		Tax:           o.Tax.String(),
		Total:         o.Total.String(),
		Status:        string(o.Status),
		Items:         items,
		StatusHistory: history,

		ShipFirstName:    o.Shipping.FirstName,
		ShipLastName:     o.Shipping.LastName,
		ShipAddressLine1: o.Shipping.AddressLine1,
		ShipAddressLine2: o.Shipping.AddressLine2,
		ShipCity:         o.Shipping.City,
		ShipState:        o.Shipping.State,
		ShipPostalCode:   o.Shipping.PostalCode,
		ShipCountry:      o.Shipping.Country,
		ShipPhone:        o.Shipping.Phone,
		ShippingMethod:   o.ShippingMethod,
		PaymentMethod:    o.PaymentMethod,
	}
}

func (r orderRecord) toDomain() (*domain.Order, error) {
	subtotal, err := decimal.NewFromString(r.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad subtotal %q: %w", r.OrderID, r.Subtotal, err)
	}
	tax, err := decimal.NewFromString(r.Tax)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad tax %q: %w", r.OrderID, r.Tax, err)
	}
	total, err := decimal.NewFromString(r.Total)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad total %q: %w", r.OrderID, r.Total, err)
	}

	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad unit price %q: %w", r.OrderID, item.UnitPrice, err)
		}
		items = append(items, domain.OrderItem{
			PartID:    item.PartID,
			PartName:  item.PartName,
			Sku:       item.Sku,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}

	history := make([]domain.StatusChange, 0, len(r.StatusHistory))
	for _, h := range r.StatusHistory {
		history = append(history, domain.StatusChange{
			Status:    domain.OrderStatus(h.Status),
			ChangedAt: h.ChangedAt,
		})
	}

	return &domain.Order{
		OrderID:       r.OrderID,
		CustomerID:    r.CustomerID,
		CreatedAt:     r.CreatedAt,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Status:        domain.OrderStatus(r.Status),
		Items:         items,
		StatusHistory: history,
		Shipping: domain.ShippingSnapshot{
			FirstName:    r.ShipFirstName,
			LastName:     r.ShipLastName,
			AddressLine1: r.ShipAddressLine1,
			AddressLine2: r.ShipAddressLine2,
			City:         r.ShipCity,
			State:        r.ShipState,
			PostalCode:   r.ShipPostalCode,
			Country:      r.ShipCountry,
			Phone:        r.ShipPhone,
		},
		ShippingMethod: r.ShippingMethod,
		PaymentMethod:  r.PaymentMethod,
	}, nil
}

func (r partRecord) toDomain() (*domain.Part, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, fmt.Errorf("part %s: bad price %q: %w", r.PartID, r.Price, err)
	}
	return &domain.Part{
		PartID:          r.PartID,
		Sku:             r.Sku,
		Name:            r.Name,
		Price:           price,
		QuantityInStock: r.QuantityInStock,
	}, nil
}

func (r customerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		CustomerID:   r.CustomerID,
		UserID:       r.UserID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
	}
}
