// internal/interfaces/http/handlers/returns.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/returns"
	"github.com/your-org/storefront-backend/internal/infrastructure/realtime"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// ReturnsHandler handles return and refund endpoints
type ReturnsHandler struct {
	returnsService *returns.Service
	config         *config.Config
}

// NewReturnsHandler creates a new returns handler
func NewReturnsHandler(db *gorm.DB, cfg *config.Config, publisher *realtime.Publisher, mailer *email.Service, logger *logrus.Logger) *ReturnsHandler {
	return &ReturnsHandler{
		returnsService: returns.NewService(db, cfg, publisher, mailer, logger),
		config:         cfg,
	}
}

// Create handles POST /returns
func (h *ReturnsHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req returns.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ret, err := h.returnsService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, returns.ErrOpenReturnExists):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, returns.ErrOrderNotReturnable),
			errors.Is(err, returns.ErrInvalidReason):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Return request created successfully",
		"data":    ret,
	})
}

// ListMine handles GET /returns
func (h *ReturnsHandler) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	items, err := h.returnsService.ListUserReturns(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve returns",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Returns retrieved successfully",
		"data":    items,
	})
}

// GetMine handles GET /returns/:id
func (h *ReturnsHandler) GetMine(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	returnID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return ID",
		})
		return
	}

	ret, err := h.returnsService.GetUserReturn(userID, uint(returnID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Return request not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return retrieved successfully",
		"data":    ret,
	})
}

// CancelMine handles POST /returns/:id/cancel
func (h *ReturnsHandler) CancelMine(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	returnID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return ID",
		})
		return
	}

	ret, err := h.returnsService.CancelByCustomer(c.Request.Context(), userID, uint(returnID))
	if err != nil {
		switch {
		case errors.Is(err, returns.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Return request not found",
			})
		case errors.Is(err, returns.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to cancel return",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return cancelled successfully",
		"data":    ret,
	})
}

// --- ADMIN ENDPOINTS ---

// AdminList handles GET /admin/returns
func (h *ReturnsHandler) AdminList(c *gin.Context) {
	var req returns.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.returnsService.List(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve returns",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Returns retrieved successfully",
		"data":    response,
	})
}

// AdminGet handles GET /admin/returns/:id
func (h *ReturnsHandler) AdminGet(c *gin.Context) {
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return ID",
		})
		return
	}

	ret, err := h.returnsService.Get(uint(returnID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Return request not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return retrieved successfully",
		"data":    ret,
	})
}

// AdminUpdateStatus handles PUT /admin/returns/:id/status. A repeated refund
// submission comes back as a benign confirmation; the money moves at most once.
func (h *ReturnsHandler) AdminUpdateStatus(c *gin.Context) {
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return ID",
		})
		return
	}

	var req returns.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)

	ret, err := h.returnsService.UpdateStatus(c.Request.Context(), uint(returnID), &req, &actorID)
	if err != nil {
		switch {
		case errors.Is(err, returns.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Return request not found",
			})
		case errors.Is(err, returns.ErrAlreadyRefunded):
			// Double-click safety: the refund already went through once,
			// so confirm rather than alarm
			ret, getErr := h.returnsService.Get(uint(returnID))
			if getErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to retrieve return",
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"message": "Refund was already processed",
				"data":    ret,
			})
		case errors.Is(err, returns.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update return status",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return status updated successfully",
		"data":    ret,
	})
}

// AdminStats handles GET /admin/returns/stats
func (h *ReturnsHandler) AdminStats(c *gin.Context) {
	stats, err := h.returnsService.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve return stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return stats retrieved successfully",
		"data":    stats,
	})
}
