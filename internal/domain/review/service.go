// internal/domain/review/service.go
package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Service handles review business logic and moderation
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new review service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents a shopper submitting a review
type CreateRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

// ListRequest represents review list query parameters
type ListRequest struct {
	ProductID uint   `form:"product_id"`
	Status    Status `form:"status"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
}

// ListResponse represents reviews with pagination
type ListResponse struct {
	Reviews    []Review         `json:"reviews"`
	Pagination order.Pagination `json:"pagination"`
}

// ModerateRequest represents an admin moderation decision
type ModerateRequest struct {
	Status Status `json:"status" binding:"required,oneof=approved rejected"`
}

// Create submits a review for moderation. Each user reviews a product once;
// the verified purchase flag is derived from their delivered orders.
func (s *Service) Create(userID uint, req *CreateRequest) (*Review, error) {
	var existing int64
	err := s.db.Model(&Review{}).
		Where("product_id = ? AND user_id = ?", req.ProductID, userID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyReviewed
	}

	verified, err := s.hasDeliveredPurchase(userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	r := Review{
		ProductID:        req.ProductID,
		UserID:           userID,
		Rating:           req.Rating,
		Title:            req.Title,
		Comment:          req.Comment,
		Status:           StatusPending,
		VerifiedPurchase: verified,
	}
	if err := s.db.Create(&r).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return &r, nil
}

// ListApproved retrieves the approved reviews shown on a product page
func (s *Service) ListApproved(productID uint, page, limit int) (*ListResponse, error) {
	return s.list(&ListRequest{ProductID: productID, Status: StatusApproved, Page: page, Limit: limit})
}

// List retrieves reviews for the admin moderation queue
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	return s.list(req)
}

func (s *Service) list(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Review{})
	if req.ProductID != 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("unknown review status: %s", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []Review
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Reviews: reviews,
		Pagination: order.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Moderate approves or rejects a pending review. Decisions are final.
func (s *Service) Moderate(reviewID uint, req *ModerateRequest, actorID uint) (*Review, error) {
	var r Review
	if err := s.db.First(&r, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}

	if !r.Status.CanTransitionTo(req.Status) {
		return nil, r.Status.TransitionError(req.Status)
	}

	now := time.Now().UTC()
	result := s.db.Model(&Review{}).
		Where("id = ? AND status = ?", r.ID, r.Status).
		Updates(map[string]interface{}{
			"status":       req.Status,
			"moderated_by": actorID,
			"moderated_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to moderate review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, r.Status.TransitionError(req.Status)
	}

	r.Status = req.Status
	r.ModeratedBy = &actorID
	r.ModeratedAt = &now
	return &r, nil
}

// Delete removes a review (author or admin)
func (s *Service) Delete(reviewID uint, userID uint, isAdmin bool) error {
	query := s.db.Where("id = ?", reviewID)
	if !isAdmin {
		query = query.Where("user_id = ?", userID)
	}
	result := query.Delete(&Review{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRatingSummary aggregates approved reviews for a product page
func (s *Service) GetRatingSummary(productID uint) (*RatingSummary, error) {
	summary := &RatingSummary{
		ProductID:    productID,
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	rows := []struct {
		Rating int
		Count  int64
	}{}
	err := s.db.Model(&Review{}).
		Select("rating, COUNT(*) as count").
		Where("product_id = ? AND status = ?", productID, StatusApproved).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	var sum int64
	for _, row := range rows {
		summary.Distribution[row.Rating] = row.Count
		summary.ReviewCount += row.Count
		sum += int64(row.Rating) * row.Count
	}
	if summary.ReviewCount > 0 {
		summary.AverageRating = float64(sum) / float64(summary.ReviewCount)
	}
	return summary, nil
}

// CountPending returns the moderation backlog size
func (s *Service) CountPending() (int64, error) {
	var count int64
	err := s.db.Model(&Review{}).Where("status = ?", StatusPending).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending reviews: %w", err)
	}
	return count, nil
}

func (s *Service) hasDeliveredPurchase(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&order.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, order.StatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return count > 0, nil
}
