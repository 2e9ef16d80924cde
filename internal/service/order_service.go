package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
	"github.com/mertmzzx/carparts-order-service/internal/events"
)

// PaymentMethodCash is the single supported payment method. It is recorded on
// the order, never charged.
const PaymentMethodCash = "Cash"

// DefaultShippingMethod applies when the request leaves the method blank.
const DefaultShippingMethod = "Standard"

// DefaultRecentLimit caps the staff recent-orders listing when no limit is given.
const DefaultRecentLimit = 10

// Store is the persistence collaborator. CreateOrder and UpdateOrderStatus
// are atomic: the order write and the stock adjustments commit together or
// not at all.
type Store interface {
	GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	GetPartsByIDs(ctx context.Context, ids []string) (map[string]*domain.Part, error)
	CreateOrder(ctx context.Context, order *domain.Order, reservations []domain.StockAdjustment) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	OrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, order *domain.Order, restocks []domain.StockAdjustment) error
}

// AuditLog receives one entry per successful mutating lifecycle operation.
type AuditLog interface {
	Publish(ctx context.Context, entry events.AuditEntry) error
}

type OrderService struct {
	store  Store
	audit  AuditLog
	logger *zap.Logger
}

func NewOrderService(store Store, audit AuditLog, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:  store,
		audit:  audit,
		logger: logger,
	}
}

// CreateOrder validates the requested lines against a batch-loaded part
// snapshot, prices them, resolves the shipping snapshot and commits the order
// together with the stock reservations in one transaction. Every validation
// runs before any mutation.
func (s *OrderService) CreateOrder(ctx context.Context, identity domain.Identity, req domain.CreateOrderRequest) (*domain.OrderView, error) {
	if identity.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	customer, err := s.store.GetCustomerByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.PartID)
	}
	parts, err := s.store.GetPartsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Quantities are validated per distinct part: lines repeating a part id
	// must fit the stock combined, not just one at a time.
	needed := make(map[string]int, len(req.Items))
	for _, line := range req.Items {
		part, ok := parts[line.PartID]
		if !ok {
			return nil, &domain.PartNotFoundError{PartID: line.PartID}
		}
		if line.Quantity <= 0 {
			return nil, &domain.InvalidQuantityError{PartID: line.PartID, Quantity: line.Quantity}
		}
		needed[line.PartID] += line.Quantity
		if needed[line.PartID] > part.QuantityInStock {
			return nil, &domain.InsufficientStockError{
				PartID:    line.PartID,
				Requested: needed[line.PartID],
				Available: part.QuantityInStock,
			}
		}
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		part := parts[line.PartID]
		items = append(items, domain.OrderItem{
			PartID:    part.PartID,
			PartName:  part.Name,
			Sku:       part.Sku,
			Quantity:  line.Quantity,
			UnitPrice: part.Price,
		})
	}
	pricing := domain.PriceItems(items)

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = PaymentMethodCash
	}
	if !strings.EqualFold(paymentMethod, PaymentMethodCash) {
		return nil, domain.ErrUnsupportedPaymentMethod
	}

	shippingMethod := strings.TrimSpace(req.ShippingMethod)
	if shippingMethod == "" {
		shippingMethod = DefaultShippingMethod
	}

	snapshot, err := domain.ResolveShippingSnapshot(customer, req.SavedAddress(), req.ShippingAddressOverride)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderID:        uuid.New().String(),
		CustomerID:     customer.CustomerID,
		CreatedAt:      now,
		Subtotal:       pricing.Subtotal,
		Tax:            pricing.Tax,
		Total:          pricing.Total,
		Status:         domain.StatusPending,
		Items:          items,
		StatusHistory:  []domain.StatusChange{{Status: domain.StatusPending, ChangedAt: now}},
		Shipping:       snapshot,
		ShippingMethod: shippingMethod,
		PaymentMethod:  PaymentMethodCash,
	}

	if err := s.store.CreateOrder(ctx, order, order.Reservations()); err != nil {
		s.logger.Error("Failed to create order",
			zap.String("order_id", order.OrderID),
			zap.String("customer_id", customer.CustomerID),
			zap.Error(err))
		return nil, err
	}

	s.recordAudit(ctx, identity, order.OrderID, fmt.Sprintf("Placed order #%s", order.OrderID))

	s.logger.Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.String("customer_id", customer.CustomerID),
		zap.String("total", order.Total.String()),
		zap.Int("items", len(order.Items)))

	view := domain.NewOrderView(order, customer, false)
	return &view, nil
}

// GetOrder returns one order. Staff see any order; customers only their own.
func (s *OrderService) GetOrder(ctx context.Context, identity domain.Identity, orderID string, includeHistory bool) (*domain.OrderView, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrderAccess(ctx, identity, order); err != nil {
		return nil, err
	}

	customer := s.customerForDisplay(ctx, order.CustomerID)
	view := domain.NewOrderView(order, customer, includeHistory)
	return &view, nil
}

// MyOrders lists the calling customer's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, identity domain.Identity) ([]domain.OrderView, error) {
	if identity.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	customer, err := s.store.GetCustomerByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.OrdersByCustomer(ctx, customer.CustomerID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, domain.NewOrderView(order, customer, false))
	}
	return views, nil
}

// RecentOrders lists the latest orders across all customers for staff.
func (s *OrderService) RecentOrders(ctx context.Context, identity domain.Identity, limit int) ([]domain.OrderView, error) {
	if !identity.Role.Staff() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	orders, err := s.store.RecentOrders(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.renderOrders(ctx, orders), nil
}

// OrdersForCustomer lists one customer's orders for staff.
func (s *OrderService) OrdersForCustomer(ctx context.Context, identity domain.Identity, customerID string) ([]domain.OrderView, error) {
	if !identity.Role.Staff() {
		return nil, domain.ErrForbidden
	}
	customer, err := s.store.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.OrdersByCustomer(ctx, customer.CustomerID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, domain.NewOrderView(order, customer, false))
	}
	return views, nil
}

// UpdateStatus applies an explicit status-change request through the
// lifecycle rules. Re-submitting the current status is a successful no-op;
// a Cancelled target runs the cancellation procedure.
func (s *OrderService) UpdateStatus(ctx context.Context, identity domain.Identity, orderID, status string) error {
	if !identity.Role.Staff() {
		return domain.ErrForbidden
	}

	target, err := domain.ParseOrderStatus(status)
	if err != nil {
		return err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	kind, err := domain.PlanTransition(order.Status, target)
	if err != nil {
		return err
	}

	switch kind {
	case domain.TransitionNoop:
		return nil
	case domain.TransitionCancel:
		return s.cancel(ctx, identity, order)
	}

	order.AppendStatus(target, time.Now().UTC())
	if err := s.store.UpdateOrderStatus(ctx, order, nil); err != nil {
		s.logger.Error("Failed to update order status",
			zap.String("order_id", order.OrderID),
			zap.String("status", string(target)),
			zap.Error(err))
		return err
	}

	s.recordAudit(ctx, identity, order.OrderID,
		fmt.Sprintf("Changed order #%s status to %s", order.OrderID, target))

	s.logger.Info("Order status changed",
		zap.String("order_id", order.OrderID),
		zap.String("status", string(target)))
	return nil
}

// CancelOrder cancels an order on behalf of its owner or staff, restoring
// stock for every line. Cancelling an already-cancelled order is a no-op.
func (s *OrderService) CancelOrder(ctx context.Context, identity domain.Identity, orderID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.authorizeOrderAccess(ctx, identity, order); err != nil {
		return err
	}

	kind, err := domain.PlanTransition(order.Status, domain.StatusCancelled)
	if err != nil {
		return err
	}
	if kind == domain.TransitionNoop {
		return nil
	}
	return s.cancel(ctx, identity, order)
}

// cancel restocks every line and moves the order to Cancelled in one
// transaction. Callers have already established the transition is legal.
func (s *OrderService) cancel(ctx context.Context, identity domain.Identity, order *domain.Order) error {
	restocks, err := s.restockableLines(ctx, order)
	if err != nil {
		return err
	}
	order.AppendStatus(domain.StatusCancelled, time.Now().UTC())

	if err := s.store.UpdateOrderStatus(ctx, order, restocks); err != nil {
		s.logger.Error("Failed to cancel order",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		return err
	}

	s.recordAudit(ctx, identity, order.OrderID, fmt.Sprintf("Cancelled order #%s", order.OrderID))

	s.logger.Info("Order cancelled",
		zap.String("order_id", order.OrderID),
		zap.Int("restocked_lines", len(restocks)))
	return nil
}

// restockableLines returns the restock adjustments for lines whose part is
// still in the catalog. Quantities for removed parts are dropped and the
// cancellation proceeds without them.
func (s *OrderService) restockableLines(ctx context.Context, order *domain.Order) ([]domain.StockAdjustment, error) {
	all := order.Reservations()
	ids := make([]string, 0, len(all))
	for _, adj := range all {
		ids = append(ids, adj.PartID)
	}
	parts, err := s.store.GetPartsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	restocks := make([]domain.StockAdjustment, 0, len(all))
	for _, adj := range all {
		if _, ok := parts[adj.PartID]; ok {
			restocks = append(restocks, adj)
		}
	}
	return restocks, nil
}

// authorizeOrderAccess lets staff through and requires customers to own the
// order they touch.
func (s *OrderService) authorizeOrderAccess(ctx context.Context, identity domain.Identity, order *domain.Order) error {
	if identity.Role.Staff() {
		return nil
	}
	if identity.Role != domain.RoleCustomer {
		return domain.ErrForbidden
	}

	customer, err := s.store.GetCustomerByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if order.CustomerID != customer.CustomerID {
		return domain.ErrForbidden
	}
	return nil
}

// recordAudit publishes the audit entry for a successful mutation. The
// operation has already committed; a publish failure is logged and dropped.
func (s *OrderService) recordAudit(ctx context.Context, identity domain.Identity, orderID, action string) {
	entry := events.AuditEntry{
		EventID:          uuid.New().String(),
		OrderID:          orderID,
		Action:           action,
		PerformedByID:    identity.UserID,
		PerformedByEmail: identity.Email,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.audit.Publish(ctx, entry); err != nil {
		s.logger.Warn("Audit entry not recorded",
			zap.String("order_id", orderID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// customerForDisplay fetches the order's customer for the email display
// field; a missing profile degrades to placeholders rather than failing the
// read.
func (s *OrderService) customerForDisplay(ctx context.Context, customerID string) *domain.Customer {
	customer, err := s.store.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil
	}
	return customer
}

// renderOrders maps orders to views, fetching each distinct customer once.
func (s *OrderService) renderOrders(ctx context.Context, orders []*domain.Order) []domain.OrderView {
	customers := make(map[string]*domain.Customer)
	views := make([]domain.OrderView, 0, len(orders))
	for _, order := range orders {
		customer, ok := customers[order.CustomerID]
		if !ok {
			customer = s.customerForDisplay(ctx, order.CustomerID)
			customers[order.CustomerID] = customer
		}
		views = append(views, domain.NewOrderView(order, customer, false))
	}
	return views
}
