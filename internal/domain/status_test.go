package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got)

	got, err = ParseOrderStatus("  CANCELLED ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got)

	_, err = ParseOrderStatus("refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPlanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		kind    TransitionKind
		wantErr error
	}{
		{name: "pending to processing", from: StatusPending, to: StatusProcessing, kind: TransitionAdvance},
		{name: "processing to shipped", from: StatusProcessing, to: StatusShipped, kind: TransitionAdvance},
		{name: "shipped to delivered", from: StatusShipped, to: StatusDelivered, kind: TransitionAdvance},
		{name: "skip ahead pending to shipped", from: StatusPending, to: StatusShipped, kind: TransitionAdvance},

		{name: "same status is a noop", from: StatusProcessing, to: StatusProcessing, kind: TransitionNoop},
		{name: "re-cancel is a noop", from: StatusCancelled, to: StatusCancelled, kind: TransitionNoop},
		{name: "re-deliver is a noop", from: StatusDelivered, to: StatusDelivered, kind: TransitionNoop},

		{name: "cancel from pending", from: StatusPending, to: StatusCancelled, kind: TransitionCancel},
		{name: "cancel from processing", from: StatusProcessing, to: StatusCancelled, kind: TransitionCancel},
		{name: "cancel after shipping rejected", from: StatusShipped, to: StatusCancelled, wantErr: ErrAlreadyFulfilled},
		{name: "cancel after delivery rejected", from: StatusDelivered, to: StatusCancelled, wantErr: ErrAlreadyFulfilled},

		{name: "cancelled is terminal", from: StatusCancelled, to: StatusProcessing, wantErr: ErrOrderCancelled},
		{name: "delivered is terminal", from: StatusDelivered, to: StatusShipped, wantErr: ErrOrderDelivered},

		{name: "no backward move once shipped", from: StatusShipped, to: StatusProcessing, wantErr: ErrInvalidTransition},
		{name: "no backward move to pending", from: StatusProcessing, to: StatusPending, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := PlanTransition(tt.from, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusShipped.Terminal())
}
