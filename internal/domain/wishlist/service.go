// internal/domain/wishlist/service.go
package wishlist

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
	ErrItemNotFound       = errors.New("wishlist item not found")
)

// Service handles wishlist business logic for both authenticated users
// (Postgres) and guests (Redis).
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// AddRequest represents an add-to-wishlist request
type AddRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// ItemView is a wishlist entry joined with current product data
type ItemView struct {
	ID           uint      `json:"id,omitempty"`
	ProductID    uint      `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSlug  string    `json:"product_slug"`
	ProductImage string    `json:"product_image,omitempty"`
	CurrentPrice int64     `json:"current_price"`
	InStock      bool      `json:"in_stock"`
	AddedAt      time.Time `json:"added_at"`
}

// View is the full wishlist response
type View struct {
	Items []ItemView `json:"items"`
	Count int        `json:"count"`
}

// --- USER WISHLISTS (Postgres) ---

// GetUserWishlist retrieves a user's saved products with live pricing
func (s *Service) GetUserWishlist(userID uint) (*View, error) {
	var items []Item
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	view := &View{Items: []ItemView{}}
	for _, item := range items {
		prod, err := s.activeProduct(item.ProductID)
		if err != nil {
			continue
		}
		view.Items = append(view.Items, ItemView{
			ID:           item.ID,
			ProductID:    prod.ID,
			ProductName:  prod.Name,
			ProductSlug:  prod.Slug,
			ProductImage: prod.PrimaryImageURL(),
			CurrentPrice: prod.EffectivePrice(),
			InStock:      prod.IsInStock(),
			AddedAt:      item.CreatedAt,
		})
	}
	view.Count = len(view.Items)
	return view, nil
}

// AddToUserWishlist saves a product. Adding an already saved product is a
// no-op rather than an error.
func (s *Service) AddToUserWishlist(userID uint, req *AddRequest) (*View, error) {
	if _, err := s.activeProduct(req.ProductID); err != nil {
		return nil, err
	}

	var existing Item
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item := Item{UserID: userID, ProductID: req.ProductID}
		if createErr := s.db.Create(&item).Error; createErr != nil {
			return nil, fmt.Errorf("failed to add wishlist item: %w", createErr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}

	return s.GetUserWishlist(userID)
}

// RemoveFromUserWishlist removes a saved product
func (s *Service) RemoveFromUserWishlist(userID, productID uint) (*View, error) {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&Item{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	return s.GetUserWishlist(userID)
}

// ClearUserWishlist removes all saved products
func (s *Service) ClearUserWishlist(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&Item{}).Error; err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	return nil
}

// --- GUEST WISHLISTS (Redis) ---

func (s *Service) guestKey(sessionID string) string {
	return fmt.Sprintf("wishlist:session:%s", sessionID)
}

func (s *Service) loadGuestWishlist(ctx context.Context, sessionID string) (*GuestWishlist, error) {
	data, err := s.redisClient.Get(ctx, s.guestKey(sessionID)).Result()
	if err == redis.Nil {
		return &GuestWishlist{SessionID: sessionID, ProductIDs: []uint{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest wishlist: %w", err)
	}

	var gw GuestWishlist
	if err := json.Unmarshal([]byte(data), &gw); err != nil {
		return nil, fmt.Errorf("failed to decode guest wishlist: %w", err)
	}
	return &gw, nil
}

func (s *Service) saveGuestWishlist(ctx context.Context, gw *GuestWishlist) error {
	gw.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(gw)
	if err != nil {
		return fmt.Errorf("failed to encode guest wishlist: %w", err)
	}
	err = s.redisClient.Set(ctx, s.guestKey(gw.SessionID), data, s.config.Checkout.GuestCartTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save guest wishlist: %w", err)
	}
	return nil
}

// GetGuestWishlist retrieves a guest session wishlist
func (s *Service) GetGuestWishlist(ctx context.Context, sessionID string) (*View, error) {
	gw, err := s.loadGuestWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: []ItemView{}}
	for _, productID := range gw.ProductIDs {
		prod, err := s.activeProduct(productID)
		if err != nil {
			continue
		}
		view.Items = append(view.Items, ItemView{
			ProductID:    prod.ID,
			ProductName:  prod.Name,
			ProductSlug:  prod.Slug,
			ProductImage: prod.PrimaryImageURL(),
			CurrentPrice: prod.EffectivePrice(),
			InStock:      prod.IsInStock(),
			AddedAt:      gw.UpdatedAt,
		})
	}
	view.Count = len(view.Items)
	return view, nil
}

// AddToGuestWishlist saves a product in the guest session
func (s *Service) AddToGuestWishlist(ctx context.Context, sessionID string, req *AddRequest) (*View, error) {
	if _, err := s.activeProduct(req.ProductID); err != nil {
		return nil, err
	}

	gw, err := s.loadGuestWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !containsID(gw.ProductIDs, req.ProductID) {
		gw.ProductIDs = append(gw.ProductIDs, req.ProductID)
		if err := s.saveGuestWishlist(ctx, gw); err != nil {
			return nil, err
		}
	}
	return s.GetGuestWishlist(ctx, sessionID)
}

// RemoveFromGuestWishlist removes a product from the guest session
func (s *Service) RemoveFromGuestWishlist(ctx context.Context, sessionID string, productID uint) (*View, error) {
	gw, err := s.loadGuestWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	filtered := gw.ProductIDs[:0]
	for _, id := range gw.ProductIDs {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == len(gw.ProductIDs) {
		return nil, ErrItemNotFound
	}
	gw.ProductIDs = filtered

	if err := s.saveGuestWishlist(ctx, gw); err != nil {
		return nil, err
	}
	return s.GetGuestWishlist(ctx, sessionID)
}

// MergeGuestWishlistToUser folds a guest wishlist into the account on
// login. Products already saved on the account are kept as-is; the guest
// store is cleared afterwards.
func (s *Service) MergeGuestWishlistToUser(ctx context.Context, sessionID string, userID uint) (*View, error) {
	gw, err := s.loadGuestWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, productID := range gw.ProductIDs {
		_, err := s.AddToUserWishlist(userID, &AddRequest{ProductID: productID})
		if err != nil && !errors.Is(err, ErrProductUnavailable) {
			return nil, err
		}
	}

	if err := s.redisClient.Del(ctx, s.guestKey(sessionID)).Err(); err != nil {
		return nil, fmt.Errorf("failed to clear guest wishlist: %w", err)
	}
	return s.GetUserWishlist(userID)
}

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

func containsID(ids []uint, target uint) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
