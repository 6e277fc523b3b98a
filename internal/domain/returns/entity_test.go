package returns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

func TestReturnStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusApproved, StatusRefunded},
		{StatusApproved, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct {
		from, to Status
	}{
		{StatusPending, StatusRefunded}, // refund requires approval first
		{StatusRejected, StatusApproved},
		{StatusRefunded, StatusRefunded},
		{StatusRefunded, StatusPending},
		{StatusCancelled, StatusApproved},
		{StatusApproved, StatusRejected},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTransitionError(t *testing.T) {
	err := StatusPending.TransitionError(StatusRefunded)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReasonIsValid(t *testing.T) {
	valid := []Reason{
		ReasonDefective, ReasonWrongItem, ReasonSizeIssue, ReasonQualityIssue,
		ReasonNotAsDescribed, ReasonChangedMind, ReasonDamagedInTransit, ReasonOther,
	}
	for _, r := range valid {
		assert.True(t, r.IsValid(), "%s should be valid", r)
	}
	assert.False(t, Reason("broken").IsValid())
	assert.False(t, Reason("").IsValid())
}

func TestIsOpen(t *testing.T) {
	assert.True(t, (&Return{Status: StatusPending}).IsOpen())
	assert.True(t, (&Return{Status: StatusApproved}).IsOpen())
	assert.False(t, (&Return{Status: StatusRefunded}).IsOpen())
	assert.False(t, (&Return{Status: StatusRejected}).IsOpen())
	assert.False(t, (&Return{Status: StatusCancelled}).IsOpen())
}

func TestNewReturnNumber(t *testing.T) {
	created := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "RET-20250302-00007", NewReturnNumber(7, created))
}

func deliveredOrder() *order.Order {
	return &order.Order{
		ID:          1,
		Status:      order.StatusDelivered,
		FinalAmount: 74000,
		Items: []order.OrderItem{
			{ID: 10, ProductID: 1, ProductName: "Linen Shirt", Quantity: 2, Price: 40000, Subtotal: 80000},
			{ID: 11, ProductID: 2, ProductName: "Belt", Quantity: 1, Price: 5000, Subtotal: 5000},
		},
	}
}

func TestBuildReturnItemsFullOrder(t *testing.T) {
	o := deliveredOrder()

	items, refund, err := buildReturnItems(o, nil)

	require.NoError(t, err)
	assert.Len(t, items, 2)
	// Line prices sum to 85000 but the discounted order only charged 74000
	assert.Equal(t, int64(74000), refund)
}

func TestBuildReturnItemsPartial(t *testing.T) {
	o := deliveredOrder()

	items, refund, err := buildReturnItems(o, []CreateItemInput{
		{OrderItemID: 10, Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(40000), refund)
	assert.Equal(t, "Linen Shirt", items[0].ProductName)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestBuildReturnItemsRejectsForeignLine(t *testing.T) {
	o := deliveredOrder()

	_, _, err := buildReturnItems(o, []CreateItemInput{
		{OrderItemID: 999, Quantity: 1},
	})

	assert.Error(t, err)
}

func TestBuildReturnItemsRejectsExcessQuantity(t *testing.T) {
	o := deliveredOrder()

	_, _, err := buildReturnItems(o, []CreateItemInput{
		{OrderItemID: 11, Quantity: 2},
	})

	assert.Error(t, err)
}
