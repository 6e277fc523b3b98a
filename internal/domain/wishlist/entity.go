// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"gorm.io/gorm"
)

// Item represents a saved product for an authenticated user. A product
// appears in a user's wishlist at most once.
type Item struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_wishlist_once,unique" json:"user_id"`
	ProductID uint           `gorm:"not null;index:idx_wishlist_once,unique" json:"product_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Item) TableName() string {
	return "wishlist_items"
}

// GuestWishlist is the Redis-backed wishlist for anonymous sessions
type GuestWishlist struct {
	SessionID  string    `json:"session_id"`
	ProductIDs []uint    `json:"product_ids"`
	UpdatedAt  time.Time `json:"updated_at"`
}
