// internal/domain/user/admin_service.go
package user

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"gorm.io/gorm"
)

// AdminService handles staff-facing customer management
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// CustomerListRequest represents customer list query parameters
type CustomerListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
}

// CustomerSummary is a customer row with aggregated order activity
type CustomerSummary struct {
	User       User  `json:"user"`
	OrderCount int64 `json:"order_count"`
	TotalSpent int64 `json:"total_spent"` // Paise, delivered orders only
}

// CustomerListResponse represents customers with pagination
type CustomerListResponse struct {
	Customers  []CustomerSummary `json:"customers"`
	Pagination order.Pagination  `json:"pagination"`
}

// AddNoteRequest represents a staff note on a customer
type AddNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// ListCustomers retrieves customer accounts with their order activity
func (s *AdminService) ListCustomers(req *CustomerListRequest) (*CustomerListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&User{}).Where("is_admin = ?", false)
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	var users []User
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	customers := make([]CustomerSummary, 0, len(users))
	for _, u := range users {
		u.Password = ""
		summary := CustomerSummary{User: u}

		row := struct {
			Count int64
			Spent int64
		}{}
		err := s.db.Model(&order.Order{}).
			Select("COUNT(*) as count, COALESCE(SUM(CASE WHEN status = ? THEN final_amount ELSE 0 END), 0) as spent", order.StatusDelivered).
			Where("user_id = ?", u.ID).
			Scan(&row).Error
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate customer orders: %w", err)
		}
		summary.OrderCount = row.Count
		summary.TotalSpent = row.Spent

		customers = append(customers, summary)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &CustomerListResponse{
		Customers: customers,
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

// GetCustomer retrieves a single customer with their notes
func (s *AdminService) GetCustomer(userID uint) (*User, []CustomerNote, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to retrieve customer: %w", err)
	}
	u.Password = ""

	var notes []CustomerNote
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notes).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve customer notes: %w", err)
	}
	return &u, notes, nil
}

// AddNote attaches an internal staff note to a customer account
func (s *AdminService) AddNote(userID uint, req *AddNoteRequest, staffID uint) (*CustomerNote, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", err)
	}

	note := CustomerNote{
		UserID:    userID,
		Note:      req.Note,
		CreatedBy: staffID,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer note: %w", err)
	}
	return &note, nil
}

// SetActive enables or disables a customer account
func (s *AdminService) SetActive(userID uint, active bool) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update account state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
