// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/returns"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"gorm.io/gorm"
)

// Service aggregates storefront activity for the admin dashboard
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Dashboard is the headline view shown when staff open the admin panel.
// Revenue figures count delivered orders only and are in paise.
type Dashboard struct {
	TotalRevenue     int64 `json:"total_revenue"`
	RevenueThisMonth int64 `json:"revenue_this_month"`
	AvgOrderValue    int64 `json:"avg_order_value"`

	TotalOrders    int64            `json:"total_orders"`
	OrdersToday    int64            `json:"orders_today"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`

	TotalCustomers int64 `json:"total_customers"`
	NewCustomers   int64 `json:"new_customers_this_month"`

	PendingReturns int64 `json:"pending_returns"`
	PendingReviews int64 `json:"pending_reviews"`

	TopProducts []ProductSales  `json:"top_products"`
	LowStock    []LowStockAlert `json:"low_stock"`
	Recent      []RecentOrder   `json:"recent_orders"`
}

// ProductSales is a best-seller row
type ProductSales struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int64  `json:"units_sold"`
	Revenue     int64  `json:"revenue"`
}

// LowStockAlert flags products at or below their low stock threshold
type LowStockAlert struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int    `json:"stock_quantity"`
	Threshold     int    `json:"threshold"`
}

// RecentOrder is a compact row for the dashboard activity feed
type RecentOrder struct {
	OrderID      uint      `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	FinalAmount  int64     `json:"final_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// RevenuePoint is one bucket of the revenue time series
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

// GetDashboard builds the admin dashboard in one call
func (s *Service) GetDashboard() (*Dashboard, error) {
	d := &Dashboard{OrdersByStatus: map[string]int64{}}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	err := s.db.Model(&order.Order{}).
		Where("status = ?", order.StatusDelivered).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&d.TotalRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	err = s.db.Model(&order.Order{}).
		Where("status = ? AND created_at >= ?", order.StatusDelivered, monthStart).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&d.RevenueThisMonth).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	if err := s.db.Model(&order.Order{}).Count(&d.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := s.db.Model(&order.Order{}).Where("created_at >= ?", dayStart).Count(&d.OrdersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}

	var delivered int64
	if err := s.db.Model(&order.Order{}).Where("status = ?", order.StatusDelivered).Count(&delivered).Error; err != nil {
		return nil, fmt.Errorf("failed to count delivered orders: %w", err)
	}
	if delivered > 0 {
		d.AvgOrderValue = d.TotalRevenue / delivered
	}

	statusRows := []struct {
		Status string
		Count  int64
	}{}
	err = s.db.Model(&order.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group orders by status: %w", err)
	}
	for _, row := range statusRows {
		d.OrdersByStatus[row.Status] = row.Count
	}

	err = s.db.Table("users").
		Where("is_admin = ? AND deleted_at IS NULL", false).
		Count(&d.TotalCustomers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	err = s.db.Table("users").
		Where("is_admin = ? AND deleted_at IS NULL AND created_at >= ?", false, monthStart).
		Count(&d.NewCustomers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count new customers: %w", err)
	}

	err = s.db.Model(&returns.Return{}).Where("status = ?", returns.StatusPending).Count(&d.PendingReturns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending returns: %w", err)
	}
	err = s.db.Model(&review.Review{}).Where("status = ?", review.StatusPending).Count(&d.PendingReviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending reviews: %w", err)
	}

	topProducts, err := s.TopProducts(5)
	if err != nil {
		return nil, err
	}
	d.TopProducts = topProducts

	lowStock, err := s.LowStock(10)
	if err != nil {
		return nil, err
	}
	d.LowStock = lowStock

	recent, err := s.RecentOrders(10)
	if err != nil {
		return nil, err
	}
	d.Recent = recent

	return d, nil
}

// TopProducts ranks products by units sold across non-cancelled orders
func (s *Service) TopProducts(limit int) ([]ProductSales, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}

	var rows []ProductSales
	err := s.db.Model(&order.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) as units_sold, SUM(order_items.subtotal) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", order.StatusCancelled).
		Group("order_items.product_id, order_items.product_name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return rows, nil
}

// LowStock lists active products at or below their low stock threshold
func (s *Service) LowStock(limit int) ([]LowStockAlert, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var rows []LowStockAlert
	err := s.db.Model(&product.Product{}).
		Select("id as product_id, name as product_name, stock_quantity, low_stock_threshold as threshold").
		Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
		Order("stock_quantity ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return rows, nil
}

// RecentOrders lists the newest orders for the activity feed
func (s *Service) RecentOrders(limit int) ([]RecentOrder, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var rows []RecentOrder
	err := s.db.Model(&order.Order{}).
		Select("id as order_id, order_number, customer_name, status, final_amount, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return rows, nil
}

// RevenueSeries buckets delivered order revenue per day over the last N days
func (s *Service) RevenueSeries(days int) ([]RevenuePoint, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var rows []RevenuePoint
	err := s.db.Model(&order.Order{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, COALESCE(SUM(final_amount), 0) as revenue, COUNT(*) as orders").
		Where("status = ? AND created_at >= ?", order.StatusDelivered, since).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue series: %w", err)
	}
	return rows, nil
}
