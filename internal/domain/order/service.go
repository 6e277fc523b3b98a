// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/realtime"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	publisher *realtime.Publisher
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, publisher *realtime.Publisher) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		publisher: publisher,
	}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    Status `form:"status"`
	UserID    uint   `form:"user_id"`
	Search    string `form:"search"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	SortOrder string `form:"sort_order,default=desc"`
}

// ListResponse represents orders with pagination
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status  Status `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// List retrieves orders for the admin dashboard
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{})
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("unknown order status: %s", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ? OR customer_email ILIKE ?",
			pattern, pattern, pattern)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	direction := "DESC"
	if req.SortOrder == "asc" {
		direction = "ASC"
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").
		Order("created_at " + direction).
		Offset(offset).Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// ListUserOrders retrieves a shopper's own orders, newest first
func (s *Service) ListUserOrders(userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// Get retrieves an order with its items and status history
func (s *Service) Get(orderID uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&o, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetUserOrder retrieves an order only if it belongs to the user
func (s *Service) GetUserOrder(userID, orderID uint) (*Order, error) {
	o, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// GetByNumber retrieves an order by its human-facing reference
func (s *Service) GetByNumber(orderNumber string) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").Where("order_number = ?", orderNumber).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// UpdateStatus moves an order through its state machine. Disallowed moves
// return ErrInvalidTransition. Cancelling restores stock for every line.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, req *UpdateStatusRequest, actorID *uint) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("unknown order status: %s", req.Status)
	}

	o, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(req.Status) {
		return nil, o.Status.TransitionError(req.Status)
	}

	from := o.Status
	now := time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": req.Status}
		switch req.Status {
		case StatusShipped:
			updates["shipped_at"] = now
		case StatusDelivered:
			updates["delivered_at"] = now
		case StatusCancelled:
			updates["cancelled_at"] = now
		}

		// Guard against a concurrent transition on the same order
		result := tx.Model(&Order{}).
			Where("id = ? AND status = ?", o.ID, from).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return from.TransitionError(req.Status)
		}

		history := StatusHistory{
			OrderID:    o.ID,
			FromStatus: from,
			ToStatus:   req.Status,
			Comment:    req.Comment,
			CreatedBy:  actorID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if req.Status == StatusCancelled {
			if err := s.restoreStockTx(tx, o, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.Status = req.Status
	s.publisher.Publish(ctx, realtime.ChannelOrders, realtime.Event{
		Type:      "status_changed",
		EntityID:  o.ID,
		Reference: o.OrderNumber,
		Status:    string(req.Status),
	})

	return o, nil
}

// CancelByCustomer lets a shopper cancel their own order while it is still
// pending. Stock consumed at placement is restored.
func (s *Service) CancelByCustomer(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.GetUserOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CancellableByCustomer() {
		return nil, ErrNotCancellable
	}

	return s.UpdateStatus(ctx, orderID, &UpdateStatusRequest{
		Status:  StatusCancelled,
		Comment: "cancelled by customer",
	}, &userID)
}

// restoreStockTx puts every order line's quantity back into inventory
func (s *Service) restoreStockTx(tx *gorm.DB, o *Order, actorID *uint) error {
	for _, item := range o.Items {
		var prod product.Product
		if err := tx.First(&prod, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return fmt.Errorf("failed to load product for stock restore: %w", err)
		}
		reason := fmt.Sprintf("order %s cancelled", o.OrderNumber)
		if err := product.ChangeStockTx(tx, &prod, item.Quantity, "order_cancelled", reason, actorID); err != nil {
			return err
		}
	}
	return nil
}
