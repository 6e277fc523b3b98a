// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a sale would take stock below zero
var ErrInsufficientStock = errors.New("insufficient stock")

// StockStatus is derived from the numeric stock quantity
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Product represents the product entity
type Product struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"not null;size:255" json:"name"`
	Slug            string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description     string `gorm:"type:text" json:"description"`
	Price           int64  `gorm:"not null" json:"price"`            // Price in paise
	DiscountedPrice *int64 `json:"discounted_price"`                 // Must be < Price when set
	CategoryID      *uint  `gorm:"index" json:"category_id"`
	ImageURL        string `gorm:"size:500" json:"image_url"`
	ImageAlt        string `gorm:"size:255" json:"image_alt"`
	Colors          string `gorm:"size:500" json:"colors"` // Comma-separated variants
	Sizes           string `gorm:"size:500" json:"sizes"`  // Comma-separated variants
	Badge           string `gorm:"size:50" json:"badge"`

	StockQuantity     int  `gorm:"default:0" json:"stock_quantity"`
	LowStockThreshold int  `gorm:"default:5" json:"low_stock_threshold"`
	IsActive          bool `gorm:"default:true" json:"is_active"`
	IsFeatured        bool `gorm:"default:false" json:"is_featured"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category      `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductImage represents additional product gallery images
type ProductImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	ImageURL     string    `gorm:"not null;size:500" json:"image_url"`
	ImageAlt     string    `gorm:"size:255" json:"image_alt"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// InventoryLog records every stock quantity change for auditing
type InventoryLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	ChangeType       string    `gorm:"not null;size:50" json:"change_type"` // sale, restock, adjustment, order_cancelled, return_approved
	QuantityChange   int       `gorm:"not null" json:"quantity_change"`
	PreviousQuantity int       `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int       `gorm:"not null" json:"new_quantity"`
	Reason           string    `gorm:"size:255" json:"reason"`
	CreatedBy        *uint     `gorm:"index" json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName overrides
func (Product) TableName() string      { return "products" }
func (Category) TableName() string     { return "categories" }
func (ProductImage) TableName() string { return "product_images" }
func (InventoryLog) TableName() string { return "inventory_logs" }

// Business methods for Product

// EffectivePrice returns the price a shopper pays per unit: the discounted
// price when one is set below the list price, the list price otherwise.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountedPrice != nil && *p.DiscountedPrice > 0 && *p.DiscountedPrice < p.Price {
		return *p.DiscountedPrice
	}
	return p.Price
}

// StockStatus derives the stock enumeration from the numeric quantity
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.StockQuantity <= 0:
		return StockStatusOutOfStock
	case p.StockQuantity <= p.LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// IsInStock reports whether any quantity is available
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}

// DiscountPercentage returns the advertised discount as a whole percentage
func (p *Product) DiscountPercentage() int {
	if p.DiscountedPrice != nil && *p.DiscountedPrice > 0 && *p.DiscountedPrice < p.Price {
		return int(((p.Price - *p.DiscountedPrice) * 100) / p.Price)
	}
	return 0
}

// ColorList splits the stored comma-separated color variants
func (p *Product) ColorList() []string {
	return splitVariants(p.Colors)
}

// SizeList splits the stored comma-separated size variants
func (p *Product) SizeList() []string {
	return splitVariants(p.Sizes)
}

// HasVariant reports whether the given color/size combination is offered.
// Empty values are valid for products without that variant dimension.
func (p *Product) HasVariant(color, size string) bool {
	if color != "" && !containsFold(p.ColorList(), color) {
		return false
	}
	if size != "" && !containsFold(p.SizeList(), size) {
		return false
	}
	return true
}

// PrimaryImageURL returns the main image, falling back to the first gallery
// image when the product has no dedicated one.
func (p *Product) PrimaryImageURL() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}

// GetFormattedPrice returns the effective price in rupees for presentation
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.EffectivePrice()) / 100
}

func splitVariants(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
