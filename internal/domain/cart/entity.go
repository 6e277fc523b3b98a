// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartItem represents a cart line stored in database for authenticated users.
// Line identity is (product, color, size).
type CartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_cart_identity,unique" json:"user_id"`
	ProductID uint           `gorm:"not null;index:idx_cart_identity,unique" json:"product_id"`
	Color     string         `gorm:"size:50;default:'';index:idx_cart_identity,unique" json:"color"`
	Size      string         `gorm:"size:50;default:'';index:idx_cart_identity,unique" json:"size"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart represents a cart for guest users (stored in Redis)
type SessionCart struct {
	SessionID string    `json:"session_id"`
	Items     []Line    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartTotals represents calculated cart totals, in paise
type CartTotals struct {
	ItemCount     int   `json:"item_count"`     // Number of distinct lines
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	Subtotal      int64 `json:"subtotal"`
	ShippingCost  int64 `json:"shipping_cost"`
	TotalAmount   int64 `json:"total_amount"`
}
