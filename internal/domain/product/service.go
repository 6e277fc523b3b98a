// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents catalog list query parameters
type ListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=20"`
	CategorySlug string `form:"category"`
	Color        string `form:"color"`
	Size         string `form:"size"`
	MinPrice     int64  `form:"min_price"`
	MaxPrice     int64  `form:"max_price"`
	Search       string `form:"search"`
	Featured     bool   `form:"featured"`
	SortBy       string `form:"sort_by,default=created_at"`
	SortOrder    string `form:"sort_order,default=desc"`
}

// ListResponse represents products with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
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

// CreateProductRequest represents admin product creation data
type CreateProductRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	Price             int64  `json:"price" binding:"required,min=1"`
	DiscountedPrice   *int64 `json:"discounted_price"`
	CategoryID        *uint  `json:"category_id"`
	ImageURL          string `json:"image_url"`
	ImageAlt          string `json:"image_alt"`
	Colors            string `json:"colors"`
	Sizes             string `json:"sizes"`
	Badge             string `json:"badge"`
	StockQuantity     int    `json:"stock_quantity" binding:"min=0"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	IsFeatured        bool   `json:"is_featured"`
}

// UpdateProductRequest represents admin product update data
type UpdateProductRequest struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Price             *int64  `json:"price"`
	DiscountedPrice   *int64  `json:"discounted_price"`
	CategoryID        *uint   `json:"category_id"`
	ImageURL          *string `json:"image_url"`
	ImageAlt          *string `json:"image_alt"`
	Colors            *string `json:"colors"`
	Sizes             *string `json:"sizes"`
	Badge             *string `json:"badge"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	IsActive          *bool   `json:"is_active"`
	IsFeatured        *bool   `json:"is_featured"`
}

// AdjustStockRequest represents an admin stock adjustment
type AdjustStockRequest struct {
	QuantityChange int    `json:"quantity_change" binding:"required"`
	Reason         string `json:"reason"`
}

// List retrieves active products with filtering and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Where("is_active = ?", true)

	if req.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", req.CategorySlug)
	}

	if req.Color != "" {
		query = query.Where("',' || LOWER(colors) || ',' LIKE ?", "%,"+strings.ToLower(req.Color)+",%")
	}

	if req.Size != "" {
		query = query.Where("',' || LOWER(sizes) || ',' LIKE ?", "%,"+strings.ToLower(req.Size)+",%")
	}

	if req.MinPrice > 0 {
		query = query.Where("COALESCE(discounted_price, price) >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("COALESCE(discounted_price, price) <= ?", req.MaxPrice)
	}

	if req.Search != "" {
		like := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if req.Featured {
		query = query.Where("is_featured = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: products,
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

// Get retrieves a single active product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ? AND is_active = ?", id, true).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetBySlug retrieves a single active product by slug
func (s *Service) GetBySlug(slug string) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// ListCategories retrieves all categories
func (s *Service) ListCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// --- ADMIN OPERATIONS ---

// AdminList retrieves all products including inactive ones
func (s *Service) AdminList(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Category")

	if req.Search != "" {
		like := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: products,
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

// Create creates a new product
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	if req.DiscountedPrice != nil && *req.DiscountedPrice >= req.Price {
		return nil, fmt.Errorf("discounted price must be below the list price")
	}

	threshold := req.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}

	prod := Product{
		Name:              req.Name,
		Slug:              Slugify(req.Name),
		Description:       req.Description,
		Price:             req.Price,
		DiscountedPrice:   req.DiscountedPrice,
		CategoryID:        req.CategoryID,
		ImageURL:          req.ImageURL,
		ImageAlt:          req.ImageAlt,
		Colors:            req.Colors,
		Sizes:             req.Sizes,
		Badge:             req.Badge,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		IsActive:          true,
		IsFeatured:        req.IsFeatured,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &prod, nil
}

// Update applies a partial update to a product
func (s *Service) Update(id uint, req *UpdateProductRequest) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = Slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DiscountedPrice != nil {
		price := prod.Price
		if req.Price != nil {
			price = *req.Price
		}
		if *req.DiscountedPrice >= price {
			return nil, fmt.Errorf("discounted price must be below the list price")
		}
		updates["discounted_price"] = *req.DiscountedPrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.ImageAlt != nil {
		updates["image_alt"] = *req.ImageAlt
	}
	if req.Colors != nil {
		updates["colors"] = *req.Colors
	}
	if req.Sizes != nil {
		updates["sizes"] = *req.Sizes
	}
	if req.Badge != nil {
		updates["badge"] = *req.Badge
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) == 0 {
		return &prod, nil
	}

	if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &prod, nil
}

// Delete soft-deletes a product
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// AdjustStock applies a manual stock adjustment and records an inventory log
func (s *Service) AdjustStock(productID uint, req *AdjustStockRequest, actorID uint) (*Product, error) {
	var prod Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, productID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("product not found")
			}
			return fmt.Errorf("failed to retrieve product: %w", err)
		}

		newQuantity := prod.StockQuantity + req.QuantityChange
		if newQuantity < 0 {
			return fmt.Errorf("stock cannot go below zero. Current: %d", prod.StockQuantity)
		}

		if err := ChangeStockTx(tx, &prod, req.QuantityChange, "adjustment", req.Reason, &actorID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// ConsumeStockTx decrements stock for a sale inside an existing transaction.
// The decrement is guarded in SQL so two concurrent checkouts cannot both
// take the last unit.
func ConsumeStockTx(tx *gorm.DB, productID uint, quantity int, reason string, actorID *uint) error {
	if quantity < 1 {
		return fmt.Errorf("consume quantity must be positive")
	}

	result := tx.Model(&Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	var prod Product
	if err := tx.First(&prod, productID).Error; err != nil {
		return fmt.Errorf("failed to reload product: %w", err)
	}

	logEntry := InventoryLog{
		ProductID:        productID,
		ChangeType:       "sale",
		QuantityChange:   -quantity,
		PreviousQuantity: prod.StockQuantity + quantity,
		NewQuantity:      prod.StockQuantity,
		Reason:           reason,
		CreatedBy:        actorID,
	}
	if err := tx.Create(&logEntry).Error; err != nil {
		return fmt.Errorf("failed to record inventory log: %w", err)
	}
	return nil
}

// ChangeStockTx mutates a product's stock inside an existing transaction and
// appends the audit log row. The caller owns commit/rollback.
func ChangeStockTx(tx *gorm.DB, prod *Product, delta int, changeType, reason string, actorID *uint) error {
	previous := prod.StockQuantity
	newQuantity := previous + delta
	if newQuantity < 0 {
		return fmt.Errorf("%w for product '%s', available: %d", ErrInsufficientStock, prod.Name, previous)
	}

	if err := tx.Model(&Product{}).
		Where("id = ?", prod.ID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	prod.StockQuantity = newQuantity

	logEntry := InventoryLog{
		ProductID:        prod.ID,
		ChangeType:       changeType,
		QuantityChange:   delta,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		Reason:           reason,
		CreatedBy:        actorID,
	}
	if err := tx.Create(&logEntry).Error; err != nil {
		return fmt.Errorf("failed to record inventory log: %w", err)
	}

	return nil
}

// GetInventoryLogs retrieves the stock audit trail for a product
func (s *Service) GetInventoryLogs(productID uint, limit int) ([]InventoryLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []InventoryLog
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve inventory logs: %w", err)
	}
	return logs, nil
}

// Slugify converts a product or category name to a URL slug
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":     true,
		"updated_at":     true,
		"price":          true,
		"name":           true,
		"stock_quantity": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
