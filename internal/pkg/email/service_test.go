// internal/pkg/email/service_test.go
package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func disabledEmailConfig() *config.Config {
	return &config.Config{
		Email: config.EmailConfig{Enabled: false},
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	s := NewService(disabledEmailConfig(), nil)

	html, err := s.render("order_confirmation", OrderConfirmationData{
		CustomerName:  "Priya",
		CustomerEmail: "priya@example.com",
		OrderNumber:   "ORD-20260829-000123",
		Items: []OrderLine{
			{Name: "Linen Shirt", Variant: "Blue / M", Quantity: 2, Subtotal: 179800},
			{Name: "Tote Bag", Quantity: 1, Subtotal: 49900},
		},
		Subtotal:      229700,
		Discount:      20000,
		Shipping:      0,
		Total:         209700,
		PaymentMethod: "cod",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Priya")
	assert.Contains(t, html, "ORD-20260829-000123")
	assert.Contains(t, html, "Linen Shirt")
	assert.Contains(t, html, "Blue / M")
	assert.Contains(t, html, "₹1798.00")
	assert.Contains(t, html, "-₹200.00")
	assert.Contains(t, html, "Free")
}

func TestRenderReturnStatus(t *testing.T) {
	s := NewService(disabledEmailConfig(), nil)

	html, err := s.render("return_status", ReturnStatusData{
		CustomerName: "Priya",
		ReturnNumber: "RET-20260829-000045",
		OrderNumber:  "ORD-20260829-000123",
		Status:       "refunded",
		RefundAmount: 89900,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "RET-20260829-000045")
	assert.Contains(t, html, "refunded")
	assert.Contains(t, html, "₹899.00")
}

func TestRenderReturnStatusApprovedMentionsPendingRefund(t *testing.T) {
	s := NewService(disabledEmailConfig(), nil)

	html, err := s.render("return_status", ReturnStatusData{
		CustomerName: "Priya",
		ReturnNumber: "RET-20260829-000045",
		OrderNumber:  "ORD-20260829-000123",
		Status:       "approved",
		RefundAmount: 89900,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Once we receive the items")
}

func TestSendIsNoOpWhenDisabled(t *testing.T) {
	s := NewService(disabledEmailConfig(), nil)

	err := s.SendOrderConfirmation(context.Background(), OrderConfirmationData{
		CustomerEmail: "priya@example.com",
		OrderNumber:   "ORD-20260829-000123",
	})
	assert.NoError(t, err)
}

func TestRupeesFormatting(t *testing.T) {
	assert.Equal(t, "₹0.00", rupees(0))
	assert.Equal(t, "₹1.00", rupees(100))
	assert.Equal(t, "₹999.50", rupees(99950))
}
