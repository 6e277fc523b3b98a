// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// WishlistHandler handles wishlist endpoints for users and guest sessions
type WishlistHandler struct {
	wishlistService *wishlist.Service
	config          *config.Config
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlist.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// Get handles GET /wishlist
func (h *WishlistHandler) Get(c *gin.Context) {
	userID, authenticated := middleware.GetUserIDFromContext(c)

	var (
		view *wishlist.View
		err  error
	)
	if authenticated {
		view, err = h.wishlistService.GetUserWishlist(userID)
	} else {
		view, err = h.wishlistService.GetGuestWishlist(c.Request.Context(), h.getOrCreateSessionID(c))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    view,
	})
}

// Add handles POST /wishlist/items
func (h *WishlistHandler) Add(c *gin.Context) {
	var req wishlist.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, authenticated := middleware.GetUserIDFromContext(c)

	var (
		view *wishlist.View
		err  error
	)
	if authenticated {
		view, err = h.wishlistService.AddToUserWishlist(userID, &req)
	} else {
		view, err = h.wishlistService.AddToGuestWishlist(c.Request.Context(), h.getOrCreateSessionID(c), &req)
	}
	if err != nil {
		if errors.Is(err, wishlist.ErrProductUnavailable) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to add to wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to wishlist",
		"data":    view,
	})
}

// Remove handles DELETE /wishlist/items/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	userID, authenticated := middleware.GetUserIDFromContext(c)

	var view *wishlist.View
	if authenticated {
		view, err = h.wishlistService.RemoveFromUserWishlist(userID, uint(productID))
	} else {
		view, err = h.wishlistService.RemoveFromGuestWishlist(c.Request.Context(), h.getOrCreateSessionID(c), uint(productID))
	}
	if err != nil {
		if errors.Is(err, wishlist.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove from wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from wishlist",
		"data":    view,
	})
}

// Clear handles DELETE /wishlist
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID, authenticated := middleware.GetUserIDFromContext(c)
	if !authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	if err := h.wishlistService.ClearUserWishlist(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist cleared successfully",
	})
}

// Merge handles POST /wishlist/merge - called after login
func (h *WishlistHandler) Merge(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		view, err := h.wishlistService.GetUserWishlist(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve wishlist",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "No guest wishlist to merge",
			"data":    view,
		})
		return
	}

	view, err := h.wishlistService.MergeGuestWishlistToUser(c.Request.Context(), sessionID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest wishlist merged successfully",
		"data":    view,
	})
}

func (h *WishlistHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		maxAge := int(h.config.Checkout.GuestCartTTL.Seconds())
		c.SetCookie("session_id", sessionID, maxAge, "/", "", false, true)
	}
	return sessionID
}
