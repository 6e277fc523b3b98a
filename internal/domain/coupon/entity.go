// internal/domain/coupon/entity.go
package coupon

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// DiscountType represents the kind of discount a coupon grants
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Validation failures, surfaced verbatim to the shopper
var (
	ErrNotFound          = errors.New("invalid coupon code")
	ErrInactive          = errors.New("coupon code is not active")
	ErrExpired           = errors.New("coupon code has expired")
	ErrNotYetValid       = errors.New("coupon code is not valid yet")
	ErrUsageLimitReached = errors.New("coupon code usage limit reached")
	ErrBelowMinimum      = errors.New("order amount is below the coupon minimum purchase")
)

// Coupon represents a discount code with eligibility constraints.
// Monetary fields are in paise; DiscountValue is a percentage for the
// percentage type and a paise amount for the fixed type.
type Coupon struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Code              string       `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description       string       `gorm:"size:255" json:"description"`
	DiscountType      DiscountType `gorm:"not null;size:20" json:"discount_type"`
	DiscountValue     int64        `gorm:"not null" json:"discount_value"`
	MinPurchaseAmount *int64       `json:"min_purchase_amount"`
	MaxDiscountAmount *int64       `json:"max_discount_amount"` // Percentage type only
	ValidFrom         time.Time    `gorm:"not null" json:"valid_from"`
	ValidUntil        *time.Time   `json:"valid_until"`
	UsageLimit        *int         `json:"usage_limit"`
	UsageCount        int          `gorm:"default:0" json:"usage_count"`
	IsActive          bool         `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// EligibilityError checks the coupon against an order amount at a point in
// time. Checks run in a fixed order and the first failure wins.
func (c *Coupon) EligibilityError(orderAmount int64, now time.Time) error {
	if !c.IsActive {
		return ErrInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrExpired
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return ErrUsageLimitReached
	}
	if c.MinPurchaseAmount != nil && orderAmount < *c.MinPurchaseAmount {
		return ErrBelowMinimum
	}
	return nil
}

// DiscountFor computes the discount in paise for an order amount. The result
// is clamped so it never exceeds the order amount or the configured cap.
func (c *Coupon) DiscountFor(orderAmount int64) int64 {
	if orderAmount <= 0 {
		return 0
	}

	var discount int64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = orderAmount * c.DiscountValue / 100
		if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
			discount = *c.MaxDiscountAmount
		}
	case DiscountTypeFixed:
		discount = c.DiscountValue
	default:
		return 0
	}

	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// HasRemainingUses reports whether the usage cap still allows redemption
func (c *Coupon) HasRemainingUses() bool {
	return c.UsageLimit == nil || c.UsageCount < *c.UsageLimit
}
