package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder               = errors.New("order must contain at least one item")
	ErrPartNotFound             = errors.New("part not found")
	ErrInvalidQuantity          = errors.New("quantity must be positive")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrNoSavedAddress           = errors.New("no saved address on file")
	ErrMissingOverride          = errors.New("shipping address is required")
	ErrIncompleteAddress        = errors.New("address line 1, city, postal code and country are required")
	ErrAlreadyFulfilled         = errors.New("order has already been shipped or delivered and cannot be cancelled")
	ErrOrderCancelled           = errors.New("a cancelled order cannot change status")
	ErrOrderDelivered           = errors.New("delivered orders cannot change status")
	ErrInvalidTransition        = errors.New("status transition not allowed")
	ErrInvalidStatus            = errors.New("invalid status value")
	ErrOrderNotFound            = errors.New("order not found")
	ErrCustomerNotFound         = errors.New("customer profile not found")
	ErrForbidden                = errors.New("forbidden")
)

// PartNotFoundError names the offending part; errors.Is matches ErrPartNotFound.
type PartNotFoundError struct {
	PartID string
}

func (e *PartNotFoundError) Error() string {
	return fmt.Sprintf("part %s not found", e.PartID)
}

func (e *PartNotFoundError) Is(target error) bool { return target == ErrPartNotFound }

type InvalidQuantityError struct {
	PartID   string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for part %s must be positive", e.Quantity, e.PartID)
}

func (e *InvalidQuantityError) Is(target error) bool { return target == ErrInvalidQuantity }

// InsufficientStockError tells the caller which part fell short and by how much.
type InsufficientStockError struct {
	PartID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for part %s: requested %d, available %d",
		e.PartID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status value %q", e.Value)
}

func (e *InvalidStatusError) Is(target error) bool { return target == ErrInvalidStatus }
