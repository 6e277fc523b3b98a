// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentMethod represents how the shopper pays
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

// validTransitions defines the order state machine. Delivered and cancelled
// are terminal; cancellation is reachable from every non-terminal state.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// IsValid reports whether the value is a known order status
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits the move
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionError builds the rejection for a disallowed move
func (s Status) TransitionError(target Status) error {
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s, target)
}

// Order represents a placed order. Prices and product details are frozen at
// placement time; later catalog edits never change an existing order.
// Monetary amounts are in paise.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Status      Status `gorm:"not null;default:'pending';index" json:"status"`

	// Customer and delivery details captured at checkout
	CustomerName  string `gorm:"not null;size:255" json:"customer_name"`
	CustomerEmail string `gorm:"not null;size:255" json:"customer_email"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`
	AddressLine   string `gorm:"not null;size:500" json:"address_line"`
	City          string `gorm:"not null;size:100" json:"city"`
	State         string `gorm:"not null;size:100" json:"state"`
	PostalCode    string `gorm:"not null;size:20" json:"postal_code"`

	// Money breakdown: TotalAmount is the item subtotal,
	// FinalAmount = TotalAmount - DiscountAmount + ShippingCost
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	DiscountAmount int64  `gorm:"default:0" json:"discount_amount"`
	DiscountCode   string `gorm:"size:50" json:"discount_code"`
	ShippingCost   int64  `gorm:"default:0" json:"shipping_cost"`
	FinalAmount    int64  `gorm:"not null" json:"final_amount"`

	PaymentMethod PaymentMethod `gorm:"not null;size:20;default:'cod'" json:"payment_method"`
	ItemsCount    int           `gorm:"not null" json:"items_count"`
	Notes         string        `gorm:"type:text" json:"notes"`

	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is an order line with product data frozen at placement time
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	ProductName  string    `gorm:"not null;size:255" json:"product_name"`
	ProductImage string    `gorm:"size:500" json:"product_image"`
	Color        string    `gorm:"size:50" json:"color"`
	Size         string    `gorm:"size:50" json:"size"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Price        int64     `gorm:"not null" json:"price"` // Unit price in paise
	Subtotal     int64     `gorm:"not null" json:"subtotal"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusHistory records every status change for auditing
type StatusHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	FromStatus Status    `gorm:"size:20" json:"from_status"`
	ToStatus   Status    `gorm:"not null;size:20" json:"to_status"`
	Comment    string    `gorm:"size:500" json:"comment"`
	CreatedBy  *uint     `gorm:"index" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (OrderItem) TableName() string     { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// IsTerminal reports whether the order reached a final state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// CancellableByCustomer reports whether the shopper may still cancel.
// Once fulfilment starts only staff can cancel.
func (o *Order) CancellableByCustomer() bool {
	return o.Status == StatusPending
}

// NewOrderNumber derives the human-facing order reference from the row ID
// and placement date, e.g. ORD-20250114-00042.
func NewOrderNumber(id uint, placedAt time.Time) string {
	return fmt.Sprintf("ORD-%s-%05d", placedAt.Format("20060102"), id%100000)
}
