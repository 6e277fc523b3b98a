// internal/domain/coupon/service.go
package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles coupon business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Application represents the result of applying a coupon to an order amount
type Application struct {
	Coupon         *Coupon `json:"coupon"`
	OrderAmount    int64   `json:"order_amount"`
	DiscountAmount int64   `json:"discount_amount"`
	FinalAmount    int64   `json:"final_amount"`
}

// CreateCouponRequest represents admin coupon creation data
type CreateCouponRequest struct {
	Code              string     `json:"code" binding:"required"`
	Description       string     `json:"description"`
	DiscountType      string     `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue     int64      `json:"discount_value" binding:"required,min=1"`
	MinPurchaseAmount *int64     `json:"min_purchase_amount"`
	MaxDiscountAmount *int64     `json:"max_discount_amount"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        *int       `json:"usage_limit"`
}

// UpdateCouponRequest represents admin coupon update data
type UpdateCouponRequest struct {
	Description       *string    `json:"description"`
	DiscountValue     *int64     `json:"discount_value"`
	MinPurchaseAmount *int64     `json:"min_purchase_amount"`
	MaxDiscountAmount *int64     `json:"max_discount_amount"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        *int       `json:"usage_limit"`
	IsActive          *bool      `json:"is_active"`
}

// FindByCode looks a coupon up case-insensitively
func (s *Service) FindByCode(code string) (*Coupon, error) {
	var c Coupon
	result := s.db.Where("LOWER(code) = LOWER(?)", strings.TrimSpace(code)).First(&c)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", result.Error)
	}
	return &c, nil
}

// Validate checks a code against an order amount and computes the discount.
// Validation never mutates usage counts; redemption happens once per placed
// order via Redeem.
func (s *Service) Validate(code string, orderAmount int64) (*Application, error) {
	c, err := s.FindByCode(code)
	if err != nil {
		return nil, err
	}

	if err := c.EligibilityError(orderAmount, time.Now().UTC()); err != nil {
		return nil, err
	}

	discount := c.DiscountFor(orderAmount)
	return &Application{
		Coupon:         c,
		OrderAmount:    orderAmount,
		DiscountAmount: discount,
		FinalAmount:    orderAmount - discount,
	}, nil
}

// RedeemTx increments the coupon's usage count inside an existing
// transaction. The increment is guarded in SQL so concurrent redemptions of
// the last remaining use cannot both succeed.
func (s *Service) RedeemTx(tx *gorm.DB, couponID uint) error {
	result := tx.Model(&Coupon{}).
		Where("id = ? AND is_active = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", couponID, true).
		Update("usage_count", gorm.Expr("usage_count + 1"))

	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUsageLimitReached
	}
	return nil
}

// --- ADMIN OPERATIONS ---

// List retrieves all coupons, newest first
func (s *Service) List() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, nil
}

// ListActive retrieves coupons currently usable by shoppers
func (s *Service) ListActive() ([]Coupon, error) {
	var coupons []Coupon
	now := time.Now().UTC()
	err := s.db.
		Where("is_active = ? AND valid_from <= ?", true, now).
		Where("valid_until IS NULL OR valid_until > ?", now).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve active coupons: %w", err)
	}
	return coupons, nil
}

// Create creates a new coupon
func (s *Service) Create(req *CreateCouponRequest) (*Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("coupon code is required")
	}

	if existing, err := s.FindByCode(code); err == nil && existing != nil {
		return nil, fmt.Errorf("coupon code '%s' already exists", code)
	}

	discountType := DiscountType(req.DiscountType)
	if discountType == DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100")
	}

	validFrom := time.Now().UTC()
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}

	c := Coupon{
		Code:              code,
		Description:       req.Description,
		DiscountType:      discountType,
		DiscountValue:     req.DiscountValue,
		MinPurchaseAmount: req.MinPurchaseAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		ValidFrom:         validFrom,
		ValidUntil:        req.ValidUntil,
		UsageLimit:        req.UsageLimit,
		IsActive:          true,
	}

	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return &c, nil
}

// Update applies a partial update to a coupon
func (s *Service) Update(id uint, req *UpdateCouponRequest) (*Coupon, error) {
	var c Coupon
	if err := s.db.First(&c, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DiscountValue != nil {
		if c.DiscountType == DiscountTypePercentage && *req.DiscountValue > 100 {
			return nil, fmt.Errorf("percentage discount cannot exceed 100")
		}
		updates["discount_value"] = *req.DiscountValue
	}
	if req.MinPurchaseAmount != nil {
		updates["min_purchase_amount"] = *req.MinPurchaseAmount
	}
	if req.MaxDiscountAmount != nil {
		updates["max_discount_amount"] = *req.MaxDiscountAmount
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return &c, nil
	}

	if err := s.db.Model(&c).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	return &c, nil
}

// Delete soft-deletes a coupon
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Coupon{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
