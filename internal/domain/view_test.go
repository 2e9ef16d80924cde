package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *Order {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Order{
		OrderID:    "o1",
		CustomerID: "c1",
		CreatedAt:  created,
		Subtotal:   decimal.RequireFromString("137.97"),
		Tax:        decimal.RequireFromString("27.59"),
		Total:      decimal.RequireFromString("165.56"),
		Status:     StatusPending,
		Items: []OrderItem{
			{PartID: "p1", PartName: "Brake Pad Set", Sku: "BRK-001", Quantity: 3, UnitPrice: decimal.RequireFromString("45.99")},
		},
		StatusHistory: []StatusChange{
			{Status: StatusProcessing, ChangedAt: created.Add(time.Hour)},
			{Status: StatusPending, ChangedAt: created},
		},
		Shipping: ShippingSnapshot{
			FirstName:    "Maria",
			LastName:     "Petrova",
			AddressLine1: "12 Vitosha Blvd",
			City:         "Sofia",
			PostalCode:   "1000",
			Country:      "Bulgaria",
			Phone:        "+359881234567",
		},
		ShippingMethod: "Standard",
		PaymentMethod:  "Cash",
	}
}

func TestNewOrderView(t *testing.T) {
	customer := testCustomer()
	view := NewOrderView(testOrder(), customer, false)

	assert.Equal(t, "o1", view.OrderID)
	assert.Equal(t, "Pending", view.Status)
	assert.Equal(t, "Maria Petrova", view.CustomerName)
	assert.Equal(t, "maria@example.com", view.CustomerEmail)
	assert.Equal(t, "+359881234567", view.CustomerPhone)
	assert.Equal(t, "Maria Petrova • 12 Vitosha Blvd • Sofia • 1000 • Bulgaria", view.DeliveryAddress)
	assert.Nil(t, view.StatusHistory)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "Brake Pad Set", view.Items[0].PartName)
	assert.Equal(t, "BRK-001", view.Items[0].Sku)
	assert.True(t, view.Items[0].LineTotal.Equal(decimal.RequireFromString("137.97")))
}

func TestNewOrderView_HistoryAscending(t *testing.T) {
	view := NewOrderView(testOrder(), testCustomer(), true)

	require.Len(t, view.StatusHistory, 2)
	assert.Equal(t, "Pending", view.StatusHistory[0].Status)
	assert.Equal(t, "Processing", view.StatusHistory[1].Status)
	assert.True(t, view.StatusHistory[0].ChangedAt.Before(view.StatusHistory[1].ChangedAt))
}

func TestNewOrderView_Placeholders(t *testing.T) {
	order := testOrder()
	order.Shipping = ShippingSnapshot{}

	view := NewOrderView(order, nil, false)
	assert.Equal(t, "-", view.CustomerName)
	assert.Equal(t, "-", view.CustomerEmail)
	assert.Equal(t, "-", view.CustomerPhone)
	assert.Equal(t, "-", view.DeliveryAddress)
}
