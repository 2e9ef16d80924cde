package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
	"github.com/mertmzzx/carparts-order-service/internal/events"
	"github.com/mertmzzx/carparts-order-service/internal/service"
	"github.com/mertmzzx/carparts-order-service/pkg/middleware"
)

type stubStore struct {
	customer *domain.Customer
	part     *domain.Part
	orders   map[string]*domain.Order
}

func (s *stubStore) GetCustomerByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	if s.customer != nil && s.customer.UserID == userID {
		return s.customer, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (s *stubStore) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	if s.customer != nil && s.customer.CustomerID == id {
		return s.customer, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (s *stubStore) GetPartsByIDs(_ context.Context, ids []string) (map[string]*domain.Part, error) {
	parts := make(map[string]*domain.Part)
	for _, id := range ids {
		if s.part != nil && s.part.PartID == id {
			parts[id] = s.part
		}
	}
	return parts, nil
}

func (s *stubStore) CreateOrder(_ context.Context, order *domain.Order, reservations []domain.StockAdjustment) error {
	for _, adj := range reservations {
		s.part.QuantityInStock -= adj.Quantity
	}
	s.orders[order.OrderID] = order
	return nil
}

func (s *stubStore) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (s *stubStore) OrdersByCustomer(_ context.Context, customerID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (s *stubStore) RecentOrders(_ context.Context, _ int) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *stubStore) UpdateOrderStatus(_ context.Context, order *domain.Order, restocks []domain.StockAdjustment) error {
	for _, adj := range restocks {
		s.part.QuantityInStock += adj.Quantity
	}
	s.orders[order.OrderID] = order
	return nil
}

type noopAudit struct{}

func (noopAudit) Publish(_ context.Context, _ events.AuditEntry) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *stubStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &stubStore{
		customer: &domain.Customer{
			CustomerID:   "c1",
			UserID:       "u1",
			FirstName:    "Maria",
			Email:        "maria@example.com",
			AddressLine1: "12 Vitosha Blvd",
			City:         "Sofia",
			PostalCode:   "1000",
			Country:      "Bulgaria",
		},
		part: &domain.Part{
			PartID:          "p1",
			Sku:             "BRK-001",
			Name:            "Brake Pad Set",
			Price:           decimal.RequireFromString("45.99"),
			QuantityInStock: 10,
		},
		orders: make(map[string]*domain.Order),
	}

	logger := zap.NewNop()
	svc := service.NewOrderService(store, noopAudit{}, logger)
	h := NewOrderHandler(svc, logger)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Identity())
	h.RegisterRoutes(router.Group("/api/v1"))
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func customerHeaders() map[string]string {
	return map[string]string{
		"X-User-Id":    "u1",
		"X-User-Email": "maria@example.com",
		"X-User-Role":  "customer",
	}
}

func staffHeaders() map[string]string {
	return map[string]string{
		"X-User-Id":   "staff-1",
		"X-User-Role": "staff",
	}
}

func createBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"part_id": "p1", "quantity": 3},
		},
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), customerHeaders())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view domain.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Pending", view.Status)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("165.56")))
	assert.Equal(t, 7, store.part.QuantityInStock)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCreateOrderEndpoint_RequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderEndpoint_StaffForbidden(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), staffHeaders())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateOrderEndpoint_InsufficientStock(t *testing.T) {
	router, _ := newTestRouter(t)

	body := map[string]any{
		"items": []map[string]any{{"part_id": "p1", "quantity": 11}},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", body, customerHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough stock")
}

func TestGetOrderEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), customerHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders/"+created.OrderID+"?include_history=true", nil, customerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.StatusHistory, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders/missing", nil, staffHeaders())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), customerHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/orders/"+created.OrderID, nil, customerHeaders())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 10, store.part.QuantityInStock)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), customerHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	body := map[string]any{"status": "Processing"}
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/orders/"+created.OrderID+"/status", body, staffHeaders())
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// customers may not drive the fulfilment pipeline
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/orders/"+created.OrderID+"/status", body, customerHeaders())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body = map[string]any{"status": "bogus"}
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/orders/"+created.OrderID+"/status", body, staffHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyOrdersEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", createBody(), customerHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders/my", nil, customerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var views []domain.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 1)
}
