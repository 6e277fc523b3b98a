// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	ErrProductUnavailable = errors.New("product is not available")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInvalidVariant     = errors.New("selected variant is not available for this product")
	ErrItemNotFound       = errors.New("cart item not found")
)

// Service handles cart operations for both authenticated users (Postgres)
// and guests (Redis session carts).
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change for an existing line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ItemView is a cart line joined with its current product data
type ItemView struct {
	ID              uint   `json:"id,omitempty"`
	ProductID       uint   `json:"product_id"`
	ProductName     string `json:"product_name"`
	ProductSlug     string `json:"product_slug"`
	ProductImage    string `json:"product_image,omitempty"`
	Color           string `json:"color,omitempty"`
	Size            string `json:"size,omitempty"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	LineTotal       int64  `json:"line_total"`
	StockQuantity   int    `json:"stock_quantity"`
	QuantityClamped bool   `json:"quantity_clamped,omitempty"`
}

// View is the full cart response with computed totals
type View struct {
	Items  []ItemView `json:"items"`
	Totals CartTotals `json:"totals"`
}

// --- USER CARTS (Postgres) ---

// GetUserCart retrieves the cart for an authenticated user with current
// product pricing and stock. Lines whose product went inactive are skipped.
func (s *Service) GetUserCart(userID uint) (*View, error) {
	var items []CartItem
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	view := &View{Items: []ItemView{}}
	for _, item := range items {
		prod, err := s.activeProduct(item.ProductID)
		if err != nil {
			continue
		}

		qty := item.Quantity
		clamped := false
		if qty > prod.StockQuantity {
			qty = prod.StockQuantity
			clamped = true
		}
		if qty < 1 {
			continue
		}

		price := prod.EffectivePrice()
		view.Items = append(view.Items, ItemView{
			ID:              item.ID,
			ProductID:       prod.ID,
			ProductName:     prod.Name,
			ProductSlug:     prod.Slug,
			ProductImage:    prod.PrimaryImageURL(),
			Color:           item.Color,
			Size:            item.Size,
			Quantity:        qty,
			UnitPrice:       price,
			LineTotal:       price * int64(qty),
			StockQuantity:   prod.StockQuantity,
			QuantityClamped: clamped,
		})
	}

	view.Totals = s.computeTotals(view.Items)
	return view, nil
}

// AddToUserCart adds a product to a user's cart, merging with an existing
// line of the same (product, color, size) identity. The merged quantity is
// clamped to available stock.
func (s *Service) AddToUserCart(userID uint, req *AddItemRequest) (*View, error) {
	prod, err := s.activeProduct(req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.IsInStock() {
		return nil, ErrOutOfStock
	}
	if !prod.HasVariant(req.Color, req.Size) {
		return nil, ErrInvalidVariant
	}

	var existing CartItem
	err = s.db.Where("user_id = ? AND product_id = ? AND LOWER(color) = LOWER(?) AND LOWER(size) = LOWER(?)",
		userID, req.ProductID, req.Color, req.Size).First(&existing).Error

	switch {
	case err == nil:
		newQty := ClampQuantity(existing.Quantity+req.Quantity, prod.StockQuantity)
		if updateErr := s.db.Model(&existing).Update("quantity", newQty).Error; updateErr != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", updateErr)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Color:     req.Color,
			Size:      req.Size,
			Quantity:  ClampQuantity(req.Quantity, prod.StockQuantity),
		}
		if createErr := s.db.Create(&item).Error; createErr != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", createErr)
		}
	default:
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}

	return s.GetUserCart(userID)
}

// UpdateUserItemQuantity sets the quantity of a cart line. Quantities below 1
// are ignored; callers remove lines through RemoveUserItem instead.
func (s *Service) UpdateUserItemQuantity(userID, itemID uint, quantity int) (*View, error) {
	if quantity < 1 {
		return s.GetUserCart(userID)
	}

	var item CartItem
	err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to retrieve cart item: %w", err)
	}

	prod, err := s.activeProduct(item.ProductID)
	if err != nil {
		return nil, err
	}

	newQty := ClampQuantity(quantity, prod.StockQuantity)
	if newQty == 0 {
		return nil, ErrOutOfStock
	}
	if err := s.db.Model(&item).Update("quantity", newQty).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetUserCart(userID)
}

// RemoveUserItem removes a line from a user's cart
func (s *Service) RemoveUserItem(userID, itemID uint) (*View, error) {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	return s.GetUserCart(userID)
}

// ClearUserCart removes all lines from a user's cart
func (s *Service) ClearUserCart(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// --- GUEST CARTS (Redis) ---

func (s *Service) guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) loadGuestCart(ctx context.Context, sessionID string) (*SessionCart, error) {
	data, err := s.redis.Get(ctx, s.guestCartKey(sessionID)).Result()
	if err == redis.Nil {
		return &SessionCart{
			SessionID: sessionID,
			Items:     []Line{},
			CreatedAt: time.Now().UTC(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}

	var sc SessionCart
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return &sc, nil
}

func (s *Service) saveGuestCart(ctx context.Context, sc *SessionCart) error {
	sc.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	err = s.redis.Set(ctx, s.guestCartKey(sc.SessionID), data, s.config.Checkout.GuestCartTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

// GetGuestCart retrieves a guest session cart with current product data
func (s *Service) GetGuestCart(ctx context.Context, sessionID string) (*View, error) {
	sc, err := s.loadGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.guestView(sc), nil
}

// AddToGuestCart adds a product to a guest session cart
func (s *Service) AddToGuestCart(ctx context.Context, sessionID string, req *AddItemRequest) (*View, error) {
	prod, err := s.activeProduct(req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.IsInStock() {
		return nil, ErrOutOfStock
	}
	if !prod.HasVariant(req.Color, req.Size) {
		return nil, ErrInvalidVariant
	}

	sc, err := s.loadGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sc.Items = AddOrMerge(sc.Items, Line{
		ProductID: req.ProductID,
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  req.Quantity,
	}, prod.StockQuantity)

	if err := s.saveGuestCart(ctx, sc); err != nil {
		return nil, err
	}
	return s.guestView(sc), nil
}

// UpdateGuestItemQuantity sets the quantity of a guest cart line. Quantities
// below 1 are ignored.
func (s *Service) UpdateGuestItemQuantity(ctx context.Context, sessionID string, target Line, quantity int) (*View, error) {
	sc, err := s.loadGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if quantity >= 1 {
		prod, err := s.activeProduct(target.ProductID)
		if err != nil {
			return nil, err
		}
		sc.Items = UpdateQuantity(sc.Items, target, quantity, prod.StockQuantity)
		if err := s.saveGuestCart(ctx, sc); err != nil {
			return nil, err
		}
	}
	return s.guestView(sc), nil
}

// RemoveGuestItem removes a line from a guest session cart
func (s *Service) RemoveGuestItem(ctx context.Context, sessionID string, target Line) (*View, error) {
	sc, err := s.loadGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := len(sc.Items)
	sc.Items = RemoveLine(sc.Items, target)
	if len(sc.Items) == before {
		return nil, ErrItemNotFound
	}

	if err := s.saveGuestCart(ctx, sc); err != nil {
		return nil, err
	}
	return s.guestView(sc), nil
}

// ClearGuestCart deletes a guest session cart
func (s *Service) ClearGuestCart(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.guestCartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

// MergeGuestCartToUser folds a guest session cart into the user's account
// cart on login. Lines with matching identity have their quantities summed
// and clamped to stock; the guest cart is cleared afterwards.
func (s *Service) MergeGuestCartToUser(ctx context.Context, sessionID string, userID uint) (*View, error) {
	sc, err := s.loadGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, line := range sc.Items {
		if line.Quantity < 1 {
			continue
		}
		_, err := s.AddToUserCart(userID, &AddItemRequest{
			ProductID: line.ProductID,
			Color:     line.Color,
			Size:      line.Size,
			Quantity:  line.Quantity,
		})
		// Lines whose product vanished or sold out since the guest added
		// them are dropped rather than failing the whole merge.
		if err != nil && !errors.Is(err, ErrProductUnavailable) && !errors.Is(err, ErrOutOfStock) && !errors.Is(err, ErrInvalidVariant) {
			return nil, err
		}
	}

	if err := s.ClearGuestCart(ctx, sessionID); err != nil {
		return nil, err
	}

	return s.GetUserCart(userID)
}

// --- HELPERS ---

func (s *Service) activeProduct(productID uint) (*product.Product, error) {
	var prod product.Product
	err := s.db.Preload("Images").Where("id = ? AND is_active = ?", productID, true).First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

func (s *Service) guestView(sc *SessionCart) *View {
	view := &View{Items: []ItemView{}}
	for _, line := range sc.Items {
		prod, err := s.activeProduct(line.ProductID)
		if err != nil {
			continue
		}

		qty := line.Quantity
		clamped := false
		if qty > prod.StockQuantity {
			qty = prod.StockQuantity
			clamped = true
		}
		if qty < 1 {
			continue
		}

		price := prod.EffectivePrice()
		view.Items = append(view.Items, ItemView{
			ProductID:       prod.ID,
			ProductName:     prod.Name,
			ProductSlug:     prod.Slug,
			ProductImage:    prod.PrimaryImageURL(),
			Color:           line.Color,
			Size:            line.Size,
			Quantity:        qty,
			UnitPrice:       price,
			LineTotal:       price * int64(qty),
			StockQuantity:   prod.StockQuantity,
			QuantityClamped: clamped,
		})
	}

	view.Totals = s.computeTotals(view.Items)
	return view
}

func (s *Service) computeTotals(items []ItemView) CartTotals {
	totals := CartTotals{ItemCount: len(items)}
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		totals.Subtotal += item.LineTotal
	}
	if totals.Subtotal > 0 && totals.Subtotal < s.config.Checkout.FreeShippingThreshold {
		totals.ShippingCost = s.config.Checkout.ShippingFee
	}
	totals.TotalAmount = totals.Subtotal + totals.ShippingCost
	return totals
}
