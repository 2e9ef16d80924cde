package domain

import "strings"

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// statusRank orders the fulfilment pipeline. Cancelled sits outside it and is
// only reachable through the cancellation path.
var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseOrderStatus resolves a caller-supplied status name, case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "processing":
		return StatusProcessing, nil
	case "shipped":
		return StatusShipped, nil
	case "delivered":
		return StatusDelivered, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	return "", &InvalidStatusError{Value: s}
}

// Terminal reports whether no further transition may leave the status.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// TransitionKind is what a planned status change requires of the caller.
type TransitionKind int

const (
	// TransitionNoop means the order is already in the target status.
	TransitionNoop TransitionKind = iota
	// TransitionAdvance moves the order forward along the pipeline.
	TransitionAdvance
	// TransitionCancel requires the cancellation procedure (restock + history).
	TransitionCancel
)

// PlanTransition applies the lifecycle rules and classifies the requested
// change. Re-submitting the current status is an idempotent no-op, including
// re-cancelling a cancelled order. Cancellation is allowed from Pending and
// Processing only; both terminal states reject everything else. Non-cancel
// moves must be strictly forward (skipping stages is allowed, going back is
// not).
func PlanTransition(current, target OrderStatus) (TransitionKind, error) {
	if target == current {
		return TransitionNoop, nil
	}
	if target == StatusCancelled {
		if current == StatusShipped || current == StatusDelivered {
			return 0, ErrAlreadyFulfilled
		}
		return TransitionCancel, nil
	}
	if current == StatusCancelled {
		return 0, ErrOrderCancelled
	}
	if current == StatusDelivered {
		return 0, ErrOrderDelivered
	}
	if statusRank[target] < statusRank[current] {
		return 0, &InvalidTransitionError{From: current, To: target}
	}
	return TransitionAdvance, nil
}
