// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/returns"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/upload"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// User domain
		&user.User{},
		&user.CustomerNote{},

		// Product domain
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.InventoryLog{},

		// Coupon domain
		&coupon.Coupon{},

		// Cart domain
		&cart.CartItem{},

		// Order domain
		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},

		// Returns domain
		&returns.Return{},
		&returns.ReturnItem{},
		&returns.ReturnStatusHistory{},

		// Review domain
		&review.Review{},

		// Wishlist domain
		&wishlist.Item{},

		// Upload domain
		&upload.UploadedFile{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_stock ON products(stock_quantity)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_order ON product_images(product_id, display_order)",

		// Inventory log indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_logs_product_created ON inventory_logs(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_logs_change_type ON inventory_logs(change_type)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_valid ON coupons(is_active, valid_from, valid_until)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_email ON orders(customer_email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order item indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Return indexes
		"CREATE INDEX IF NOT EXISTS idx_returns_user_status ON returns(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_returns_order ON returns(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_returns_status_created ON returns(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_return_items_return ON return_items(return_id)",
		"CREATE INDEX IF NOT EXISTS idx_return_status_history_return ON return_status_history(return_id, created_at DESC)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_status ON reviews(product_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_status_created ON reviews(status, created_at DESC)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user ON wishlist_items(user_id)",

		// Customer note indexes
		"CREATE INDEX IF NOT EXISTS idx_customer_notes_user ON customer_notes(user_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	if err := m.seedSampleProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates the default storefront categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{
			Name:        "New Arrivals",
			Slug:        "new-arrivals",
			Description: "The latest additions to the store",
		},
		{
			Name:        "Clothing",
			Slug:        "clothing",
			Description: "Apparel for every occasion",
		},
		{
			Name:        "Accessories",
			Slug:        "accessories",
			Description: "Bags, belts and everything in between",
		},
		{
			Name:        "Footwear",
			Slug:        "footwear",
			Description: "Shoes, sneakers and sandals",
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin1234"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("✅ Created admin user: admin@example.com with ID: %d", adminUser.ID)
	return nil
}

// seedCoupons creates a couple of development coupons
func (m *Migration) seedCoupons() error {
	log.Println("🎟️ Seeding coupons...")

	minPurchase := int64(50000) // ₹500
	maxDiscount := int64(20000) // ₹200
	welcomeLimit := 1000

	coupons := []coupon.Coupon{
		{
			Code:              "WELCOME10",
			Description:       "10% off your first order",
			DiscountType:      coupon.DiscountTypePercentage,
			DiscountValue:     10,
			MinPurchaseAmount: &minPurchase,
			MaxDiscountAmount: &maxDiscount,
			ValidFrom:         time.Now().UTC(),
			UsageLimit:        &welcomeLimit,
			IsActive:          true,
		},
		{
			Code:          "FLAT100",
			Description:   "Flat ₹100 off",
			DiscountType:  coupon.DiscountTypeFixed,
			DiscountValue: 10000,
			ValidFrom:     time.Now().UTC(),
			IsActive:      true,
		},
	}

	for _, c := range coupons {
		var existing coupon.Coupon
		result := m.db.Where("code = ?", c.Code).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&c).Error; err != nil {
				return err
			}
			log.Printf("✅ Created coupon: %s", c.Code)
		} else {
			log.Printf("⏭️ Coupon already exists: %s", c.Code)
		}
	}

	return nil
}

// seedSampleProducts creates a handful of products for development
func (m *Migration) seedSampleProducts() error {
	log.Println("🛍️ Seeding sample products...")

	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	var clothing product.Category
	if err := m.db.Where("slug = ?", "clothing").First(&clothing).Error; err != nil {
		log.Println("⚠️ Clothing category missing, skipping product seed")
		return nil
	}

	discounted := int64(79900)
	sampleProducts := []product.Product{
		{
			Name:              "Classic Oxford Shirt",
			Slug:              "classic-oxford-shirt",
			Description:       "A wardrobe staple in breathable cotton with a button-down collar.",
			Price:             129900,
			CategoryID:        &clothing.ID,
			Colors:            "White,Blue,Pink",
			Sizes:             "S,M,L,XL",
			StockQuantity:     40,
			LowStockThreshold: 5,
			IsActive:          true,
			IsFeatured:        true,
		},
		{
			Name:              "Everyday Crew Tee",
			Slug:              "everyday-crew-tee",
			Description:       "Soft combed cotton tee with a regular fit.",
			Price:             89900,
			DiscountedPrice:   &discounted,
			CategoryID:        &clothing.ID,
			Colors:            "Black,White,Olive",
			Sizes:             "S,M,L,XL,XXL",
			Badge:             "Sale",
			StockQuantity:     120,
			LowStockThreshold: 10,
			IsActive:          true,
		},
		{
			Name:              "Relaxed Linen Trousers",
			Slug:              "relaxed-linen-trousers",
			Description:       "Lightweight linen-blend trousers with an elasticated waist.",
			Price:             199900,
			CategoryID:        &clothing.ID,
			Colors:            "Beige,Navy",
			Sizes:             "28,30,32,34,36",
			StockQuantity:     25,
			LowStockThreshold: 5,
			IsActive:          true,
			IsFeatured:        true,
		},
	}

	for _, prod := range sampleProducts {
		if err := m.db.Create(&prod).Error; err != nil {
			log.Printf("⚠️ Failed to create product %s: %v", prod.Slug, err)
		} else {
			log.Printf("✅ Created product: %s", prod.Name)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"return_status_history",
		"return_items",
		"returns",
		"order_status_history",
		"order_items",
		"orders",
		"cart_items",
		"reviews",
		"wishlist_items",
		"inventory_logs",
		"product_images",
		"products",
		"categories",
		"coupons",
		"uploaded_files",
		"customer_notes",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
