// internal/domain/returns/service.go
package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/realtime"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Service handles return and refund business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	publisher *realtime.Publisher
	mailer    *email.Service
	logger    *logrus.Logger
}

// NewService creates a new returns service
func NewService(db *gorm.DB, cfg *config.Config, publisher *realtime.Publisher, mailer *email.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		publisher: publisher,
		mailer:    mailer,
		logger:    logger,
	}
}

// CreateRequest represents a shopper's return request
type CreateRequest struct {
	OrderID     uint              `json:"order_id" binding:"required"`
	Reason      Reason            `json:"reason" binding:"required"`
	Description string            `json:"description"`
	Items       []CreateItemInput `json:"items"`
}

// CreateItemInput selects an order line (fully or partially) for return.
// When the request carries no items every line of the order is returned.
type CreateItemInput struct {
	OrderItemID uint `json:"order_item_id" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required,min=1"`
}

// ListRequest represents admin list query parameters
type ListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status Status `form:"status"`
	UserID uint   `form:"user_id"`
}

// ListResponse represents returns with pagination
type ListResponse struct {
	Returns    []Return         `json:"returns"`
	Pagination order.Pagination `json:"pagination"`
}

// UpdateStatusRequest represents an admin decision on a return
type UpdateStatusRequest struct {
	Status  Status `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// Stats summarizes return activity for the admin dashboard
type Stats struct {
	Total         int64 `json:"total"`
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	Refunded      int64 `json:"refunded"`
	RefundedTotal int64 `json:"refunded_total"` // Paise paid back to shoppers
}

// Create opens a return request for a delivered order. The refund amount is
// computed from the order's frozen prices and capped at what was actually
// paid; later catalog changes never affect it.
func (s *Service) Create(ctx context.Context, userID uint, req *CreateRequest) (*Return, error) {
	if !req.Reason.IsValid() {
		return nil, ErrInvalidReason
	}

	var o order.Order
	err := s.db.Preload("Items").Where("id = ? AND user_id = ?", req.OrderID, userID).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if o.Status != order.StatusDelivered {
		return nil, ErrOrderNotReturnable
	}

	var openCount int64
	err = s.db.Model(&Return{}).
		Where("order_id = ? AND status IN ?", o.ID, []Status{StatusPending, StatusApproved}).
		Count(&openCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing returns: %w", err)
	}
	if openCount > 0 {
		return nil, ErrOpenReturnExists
	}

	items, refundAmount, err := buildReturnItems(&o, req.Items)
	if err != nil {
		return nil, err
	}

	var ret Return
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ret = Return{
			OrderID:      o.ID,
			UserID:       userID,
			Status:       StatusPending,
			Reason:       req.Reason,
			Description:  req.Description,
			RefundAmount: refundAmount,
		}
		if err := tx.Create(&ret).Error; err != nil {
			return fmt.Errorf("failed to create return: %w", err)
		}

		ret.ReturnNumber = NewReturnNumber(ret.ID, time.Now().UTC())
		if err := tx.Model(&ret).Update("return_number", ret.ReturnNumber).Error; err != nil {
			return fmt.Errorf("failed to set return number: %w", err)
		}

		for i := range items {
			items[i].ReturnID = ret.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create return items: %w", err)
		}
		ret.Items = items

		history := ReturnStatusHistory{
			ReturnID:  ret.ID,
			ToStatus:  StatusPending,
			Comment:   "return requested",
			CreatedBy: &userID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, realtime.ChannelReturns, realtime.Event{
		Type:      "created",
		EntityID:  ret.ID,
		Reference: ret.ReturnNumber,
		Status:    string(ret.Status),
	})

	return &ret, nil
}

// Get retrieves a return with its items and history
func (s *Service) Get(returnID uint) (*Return, error) {
	var ret Return
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&ret, returnID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve return: %w", err)
	}
	return &ret, nil
}

// GetUserReturn retrieves a return only if it belongs to the user
func (s *Service) GetUserReturn(userID, returnID uint) (*Return, error) {
	ret, err := s.Get(returnID)
	if err != nil {
		return nil, err
	}
	if ret.UserID != userID {
		return nil, ErrNotFound
	}
	return ret, nil
}

// ListUserReturns retrieves a shopper's return requests, newest first
func (s *Service) ListUserReturns(userID uint) ([]Return, error) {
	var rets []Return
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve returns: %w", err)
	}
	return rets, nil
}

// List retrieves returns for the admin dashboard
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Return{})
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("unknown return status: %s", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count returns: %w", err)
	}

	var rets []Return
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(req.Limit).
		Find(&rets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve returns: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Returns: rets,
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

// UpdateStatus moves a return through its state machine. The move to
// refunded is a compare-and-swap on the approved status, so processing the
// same refund twice yields ErrAlreadyRefunded instead of a double payout.
func (s *Service) UpdateStatus(ctx context.Context, returnID uint, req *UpdateStatusRequest, actorID *uint) (*Return, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("unknown return status: %s", req.Status)
	}

	ret, err := s.Get(returnID)
	if err != nil {
		return nil, err
	}

	if req.Status == StatusRefunded && ret.Status == StatusRefunded {
		return nil, ErrAlreadyRefunded
	}
	if !ret.Status.CanTransitionTo(req.Status) {
		return nil, ret.Status.TransitionError(req.Status)
	}

	from := ret.Status
	now := time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": req.Status}
		if req.Comment != "" {
			updates["admin_comment"] = req.Comment
		}

		query := tx.Model(&Return{}).Where("id = ? AND status = ?", ret.ID, from)
		if req.Status == StatusRefunded {
			// Refund CAS: the timestamp is set exactly once
			updates["refund_processed_at"] = now
			query = query.Where("refund_processed_at IS NULL")
		}

		result := query.Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update return status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			if req.Status == StatusRefunded {
				return ErrAlreadyRefunded
			}
			return from.TransitionError(req.Status)
		}

		history := ReturnStatusHistory{
			ReturnID:   ret.ID,
			FromStatus: from,
			ToStatus:   req.Status,
			Comment:    req.Comment,
			CreatedBy:  actorID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if req.Status == StatusApproved {
			if err := s.restockTx(tx, ret, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ret.Status = req.Status
	if req.Status == StatusRefunded {
		ret.RefundProcessedAt = &now
	}

	s.publisher.Publish(ctx, realtime.ChannelReturns, realtime.Event{
		Type:      "status_changed",
		EntityID:  ret.ID,
		Reference: ret.ReturnNumber,
		Status:    string(req.Status),
	})

	s.notifyCustomer(ctx, ret)

	return ret, nil
}

// CancelByCustomer lets the shopper withdraw an open return request
func (s *Service) CancelByCustomer(ctx context.Context, userID, returnID uint) (*Return, error) {
	ret, err := s.GetUserReturn(userID, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != StatusPending {
		return nil, ret.Status.TransitionError(StatusCancelled)
	}

	return s.UpdateStatus(ctx, returnID, &UpdateStatusRequest{
		Status:  StatusCancelled,
		Comment: "cancelled by customer",
	}, &userID)
}

// GetStats summarizes return activity for the admin dashboard
func (s *Service) GetStats() (*Stats, error) {
	stats := &Stats{}
	if err := s.db.Model(&Return{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count returns: %w", err)
	}

	counts := []struct {
		Status Status
		Count  int64
	}{}
	err := s.db.Model(&Return{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate return statuses: %w", err)
	}
	for _, c := range counts {
		switch c.Status {
		case StatusPending:
			stats.Pending = c.Count
		case StatusApproved:
			stats.Approved = c.Count
		case StatusRefunded:
			stats.Refunded = c.Count
		}
	}

	err = s.db.Model(&Return{}).
		Where("status = ?", StatusRefunded).
		Select("COALESCE(SUM(refund_amount), 0)").
		Scan(&stats.RefundedTotal).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum refunded amounts: %w", err)
	}

	return stats, nil
}

// restockTx puts accepted goods back into inventory
func (s *Service) restockTx(tx *gorm.DB, ret *Return, actorID *uint) error {
	for _, item := range ret.Items {
		var prod product.Product
		if err := tx.First(&prod, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return fmt.Errorf("failed to load product for restock: %w", err)
		}
		reason := fmt.Sprintf("return %s approved", ret.ReturnNumber)
		if err := product.ChangeStockTx(tx, &prod, item.Quantity, "return_approved", reason, actorID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notifyCustomer(ctx context.Context, ret *Return) {
	if s.mailer == nil {
		return
	}

	var o order.Order
	if err := s.db.First(&o, ret.OrderID).Error; err != nil {
		return
	}

	err := s.mailer.SendReturnStatusUpdate(ctx, email.ReturnStatusData{
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		ReturnNumber:  ret.ReturnNumber,
		OrderNumber:   o.OrderNumber,
		Status:        string(ret.Status),
		RefundAmount:  ret.RefundAmount,
	})
	if err != nil {
		s.log().WithError(err).WithField("return", ret.ReturnNumber).Warn("failed to send return status email")
	}
}

func (s *Service) log() *logrus.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logrus.StandardLogger()
}

// buildReturnItems freezes the returned lines from the order and computes
// the refundable amount, capped at what the shopper actually paid.
func buildReturnItems(o *order.Order, inputs []CreateItemInput) ([]ReturnItem, int64, error) {
	byID := make(map[uint]*order.OrderItem, len(o.Items))
	for i := range o.Items {
		byID[o.Items[i].ID] = &o.Items[i]
	}

	if len(inputs) == 0 {
		inputs = make([]CreateItemInput, 0, len(o.Items))
		for _, item := range o.Items {
			inputs = append(inputs, CreateItemInput{OrderItemID: item.ID, Quantity: item.Quantity})
		}
	}

	items := make([]ReturnItem, 0, len(inputs))
	var refund int64
	for _, input := range inputs {
		line, ok := byID[input.OrderItemID]
		if !ok {
			return nil, 0, fmt.Errorf("order item %d does not belong to this order", input.OrderItemID)
		}
		if input.Quantity < 1 || input.Quantity > line.Quantity {
			return nil, 0, fmt.Errorf("invalid return quantity for '%s'", line.ProductName)
		}

		amount := line.Price * int64(input.Quantity)
		refund += amount
		items = append(items, ReturnItem{
			OrderItemID: line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Color:       line.Color,
			Size:        line.Size,
			Quantity:    input.Quantity,
			Amount:      amount,
		})
	}

	// The discount made the paid total lower than the sum of line prices,
	// so cap the refund at what was actually charged.
	if refund > o.FinalAmount {
		refund = o.FinalAmount
	}
	return items, refund, nil
}
