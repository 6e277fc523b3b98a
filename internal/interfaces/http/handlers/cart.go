// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints for both authenticated users and
// guest sessions. Guests are identified by a session cookie and their
// carts live in Redis; user carts live in Postgres.
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, authenticated := middleware.GetUserIDFromContext(c)

	var (
		view *cart.View
		err  error
	)
	if authenticated {
		view, err = h.cartService.GetUserCart(userID)
	} else {
		view, err = h.cartService.GetGuestCart(c.Request.Context(), h.getOrCreateSessionID(c))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    view,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, authenticated := middleware.GetUserIDFromContext(c)

	var (
		view *cart.View
		err  error
	)
	if authenticated {
		view, err = h.cartService.AddToUserCart(userID, &req)
	} else {
		view, err = h.cartService.AddToGuestCart(c.Request.Context(), h.getOrCreateSessionID(c), &req)
	}
	if err != nil {
		c.JSON(cartErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    view,
	})
}

// UpdateCartItem handles PUT /cart/items/:id. For users :id is the cart
// item ID; for guests it is the product ID with color/size query params
// disambiguating the variant.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart item ID",
		})
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, authenticated := middleware.GetUserIDFromContext(c)

	var view *cart.View
	if authenticated {
		view, err = h.cartService.UpdateUserItemQuantity(userID, uint(id), req.Quantity)
	} else {
		target := cart.Line{
			ProductID: uint(id),
			Color:     c.Query("color"),
			Size:      c.Query("size"),
		}
		view, err = h.cartService.UpdateGuestItemQuantity(c.Request.Context(), h.getOrCreateSessionID(c), target, req.Quantity)
	}
	if err != nil {
		c.JSON(cartErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    view,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart item ID",
		})
		return
	}

	userID, authenticated := middleware.GetUserIDFromContext(c)

	var view *cart.View
	if authenticated {
		view, err = h.cartService.RemoveUserItem(userID, uint(id))
	} else {
		target := cart.Line{
			ProductID: uint(id),
			Color:     c.Query("color"),
			Size:      c.Query("size"),
		}
		view, err = h.cartService.RemoveGuestItem(c.Request.Context(), h.getOrCreateSessionID(c), target)
	}
	if err != nil {
		c.JSON(cartErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    view,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, authenticated := middleware.GetUserIDFromContext(c)

	var err error
	if authenticated {
		err = h.cartService.ClearUserCart(userID)
	} else {
		err = h.cartService.ClearGuestCart(c.Request.Context(), h.getOrCreateSessionID(c))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// MergeGuestCart handles POST /cart/merge - called after login so the
// guest session's cart follows the shopper into their account
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		// Nothing to merge; return the account cart as-is
		view, err := h.cartService.GetUserCart(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve cart",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "No guest cart to merge",
			"data":    view,
		})
		return
	}

	view, err := h.cartService.MergeGuestCartToUser(c.Request.Context(), sessionID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged successfully",
		"data":    view,
	})
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		maxAge := int(h.config.Checkout.GuestCartTTL.Seconds())
		c.SetCookie("session_id", sessionID, maxAge, "/", "", false, true)
	}
	return sessionID
}

// cartErrorStatus maps cart service failures to HTTP status codes
func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrInvalidVariant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
