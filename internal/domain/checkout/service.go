// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/realtime"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// Service handles checkout business logic: summaries, coupon application
// and order placement.
type Service struct {
	db            *gorm.DB
	redisClient   *redis.Client
	config        *config.Config
	cartService   *cart.Service
	couponService *coupon.Service
	publisher     *realtime.Publisher
	mailer        *email.Service
	logger        *logrus.Logger
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, publisher *realtime.Publisher, mailer *email.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:            db,
		redisClient:   redisClient,
		config:        cfg,
		cartService:   cart.NewService(db, redisClient, cfg),
		couponService: coupon.NewService(db, cfg),
		publisher:     publisher,
		mailer:        mailer,
		logger:        logger,
	}
}

// PlaceOrderRequest represents order submission data
type PlaceOrderRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone"`
	AddressLine   string `json:"address_line" binding:"required"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cod online"`
	CouponCode    string `json:"coupon_code"`
	Notes         string `json:"notes"`
}

// PaymentOption represents an available payment method
type PaymentOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// Summary is the full pre-order breakdown shown on the checkout page
type Summary struct {
	Cart           *cart.View          `json:"cart"`
	Pricing        Totals              `json:"pricing"`
	AppliedCoupon  *coupon.Application `json:"applied_coupon,omitempty"`
	CouponError    string              `json:"coupon_error,omitempty"`
	PaymentMethods []PaymentOption     `json:"payment_methods"`
}

func (s *Service) rules() Rules {
	return Rules{
		FreeShippingThreshold: s.config.Checkout.FreeShippingThreshold,
		ShippingFee:           s.config.Checkout.ShippingFee,
	}
}

// GetSummary prices the user's cart for the checkout page. When no coupon
// code is passed the previously applied one is looked up and revalidated.
func (s *Service) GetSummary(ctx context.Context, userID uint, couponCode string) (*Summary, error) {
	cartView, err := s.cartService.GetUserCart(userID)
	if err != nil {
		return nil, err
	}
	if len(cartView.Items) == 0 {
		return nil, ErrEmptyCart
	}

	summary := &Summary{
		Cart:           cartView,
		PaymentMethods: s.paymentOptions(),
	}

	if couponCode == "" {
		couponCode = s.storedCouponCode(ctx, userID)
	}

	var discount int64
	if couponCode != "" {
		application, err := s.couponService.Validate(couponCode, cartView.Totals.Subtotal)
		if err != nil {
			summary.CouponError = err.Error()
		} else {
			summary.AppliedCoupon = application
			discount = application.DiscountAmount
		}
	}

	summary.Pricing = ComputeTotals(pricedLines(cartView), discount, s.rules())
	return summary, nil
}

// ApplyCoupon validates a code against the user's cart and remembers it for
// checkout. Usage counts are only consumed when the order is placed.
func (s *Service) ApplyCoupon(ctx context.Context, userID uint, code string) (*coupon.Application, error) {
	cartView, err := s.cartService.GetUserCart(userID)
	if err != nil {
		return nil, err
	}
	if len(cartView.Items) == 0 {
		return nil, ErrEmptyCart
	}

	application, err := s.couponService.Validate(code, cartView.Totals.Subtotal)
	if err != nil {
		return nil, err
	}

	key := s.appliedCouponKey(userID)
	if err := s.redisClient.Set(ctx, key, application.Coupon.Code, s.config.Checkout.AppliedCouponTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store applied coupon: %w", err)
	}

	return application, nil
}

// RemoveCoupon forgets the user's applied coupon
func (s *Service) RemoveCoupon(ctx context.Context, userID uint) error {
	return s.redisClient.Del(ctx, s.appliedCouponKey(userID)).Err()
}

// PlaceOrder turns the user's cart into an order inside a single
// transaction. Prices are recomputed server-side from current product data,
// stock is consumed with a guarded decrement, and the coupon usage count is
// incremented atomically. The cart is cleared only when everything succeeds.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*order.Order, error) {
	paymentMethod := order.PaymentMethod(req.PaymentMethod)
	if paymentMethod != order.PaymentMethodCOD && paymentMethod != order.PaymentMethodOnline {
		return nil, ErrInvalidPaymentMethod
	}

	cartView, err := s.cartService.GetUserCart(userID)
	if err != nil {
		return nil, err
	}
	if len(cartView.Items) == 0 {
		return nil, ErrEmptyCart
	}

	couponCode := req.CouponCode
	if couponCode == "" {
		couponCode = s.storedCouponCode(ctx, userID)
	}

	var placed order.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		lines := make([]PricedLine, 0, len(cartView.Items))
		orderItems := make([]order.OrderItem, 0, len(cartView.Items))
		totalQuantity := 0

		for _, item := range cartView.Items {
			var prod product.Product
			if err := tx.Preload("Images").Where("id = ? AND is_active = ?", item.ProductID, true).First(&prod).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product '%s' is no longer available", item.ProductName)
				}
				return fmt.Errorf("failed to load product: %w", err)
			}

			price := prod.EffectivePrice()
			lines = append(lines, PricedLine{UnitPrice: price, Quantity: item.Quantity})
			totalQuantity += item.Quantity

			orderItems = append(orderItems, order.OrderItem{
				ProductID:    prod.ID,
				ProductName:  prod.Name,
				ProductImage: prod.PrimaryImageURL(),
				Color:        item.Color,
				Size:         item.Size,
				Quantity:     item.Quantity,
				Price:        price,
				Subtotal:     price * int64(item.Quantity),
			})
		}

		subtotal := Subtotal(lines)

		var discount int64
		var appliedCoupon *coupon.Coupon
		if couponCode != "" {
			application, err := s.couponService.Validate(couponCode, subtotal)
			if err != nil {
				return err
			}
			if err := s.couponService.RedeemTx(tx, application.Coupon.ID); err != nil {
				return err
			}
			discount = application.DiscountAmount
			appliedCoupon = application.Coupon
		}

		totals := ComputeTotals(lines, discount, s.rules())

		placed = order.Order{
			UserID:         userID,
			Status:         order.StatusPending,
			CustomerName:   req.CustomerName,
			CustomerEmail:  req.CustomerEmail,
			CustomerPhone:  req.CustomerPhone,
			AddressLine:    req.AddressLine,
			City:           req.City,
			State:          req.State,
			PostalCode:     req.PostalCode,
			TotalAmount:    totals.Subtotal,
			DiscountAmount: totals.DiscountAmount,
			ShippingCost:   totals.ShippingCost,
			FinalAmount:    totals.TotalAmount,
			PaymentMethod:  paymentMethod,
			ItemsCount:     totalQuantity,
			Notes:          req.Notes,
		}
		if appliedCoupon != nil {
			placed.DiscountCode = appliedCoupon.Code
		}

		if err := tx.Create(&placed).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		placed.OrderNumber = order.NewOrderNumber(placed.ID, time.Now().UTC())
		if err := tx.Model(&placed).Update("order_number", placed.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to set order number: %w", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = placed.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		placed.Items = orderItems

		history := order.StatusHistory{
			OrderID:   placed.ID,
			ToStatus:  order.StatusPending,
			Comment:   "order placed",
			CreatedBy: &userID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		for _, item := range orderItems {
			reason := fmt.Sprintf("order %s", placed.OrderNumber)
			if err := product.ConsumeStockTx(tx, item.ProductID, item.Quantity, reason, &userID); err != nil {
				if errors.Is(err, product.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", product.ErrInsufficientStock, item.ProductName)
				}
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.RemoveCoupon(ctx, userID); err != nil {
		s.log().WithError(err).Warn("failed to clear applied coupon after order")
	}

	s.publisher.Publish(ctx, realtime.ChannelOrders, realtime.Event{
		Type:      "created",
		EntityID:  placed.ID,
		Reference: placed.OrderNumber,
		Status:    string(placed.Status),
	})

	s.sendConfirmation(ctx, &placed)

	return &placed, nil
}

// sendConfirmation emails the shopper. Failures are logged, never returned;
// a placed order must not fail because SMTP is down.
func (s *Service) sendConfirmation(ctx context.Context, o *order.Order) {
	if s.mailer == nil {
		return
	}

	items := make([]email.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, email.OrderLine{
			Name:     item.ProductName,
			Variant:  variantLabel(item.Color, item.Size),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal,
		})
	}

	err := s.mailer.SendOrderConfirmation(ctx, email.OrderConfirmationData{
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		OrderNumber:   o.OrderNumber,
		Items:         items,
		Subtotal:      o.TotalAmount,
		Discount:      o.DiscountAmount,
		Shipping:      o.ShippingCost,
		Total:         o.FinalAmount,
		PaymentMethod: string(o.PaymentMethod),
	})
	if err != nil {
		s.log().WithError(err).WithField("order", o.OrderNumber).Warn("failed to send order confirmation email")
	}
}

func (s *Service) paymentOptions() []PaymentOption {
	return []PaymentOption{
		{
			ID:          string(order.PaymentMethodCOD),
			Name:        "Cash on Delivery",
			Description: "Pay cash when your order is delivered",
			Available:   true,
		},
		{
			ID:          string(order.PaymentMethodOnline),
			Name:        "Online Payment",
			Description: "Pay using UPI, card or netbanking",
			Available:   true,
		},
	}
}

func (s *Service) appliedCouponKey(userID uint) string {
	return fmt.Sprintf("applied_coupon:%d", userID)
}

func (s *Service) storedCouponCode(ctx context.Context, userID uint) string {
	code, err := s.redisClient.Get(ctx, s.appliedCouponKey(userID)).Result()
	if err != nil {
		return ""
	}
	return code
}

func (s *Service) log() *logrus.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logrus.StandardLogger()
}

func pricedLines(view *cart.View) []PricedLine {
	lines := make([]PricedLine, 0, len(view.Items))
	for _, item := range view.Items {
		lines = append(lines, PricedLine{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return lines
}

func variantLabel(color, size string) string {
	switch {
	case color != "" && size != "":
		return color + " / " + size
	case color != "":
		return color
	case size != "":
		return size
	default:
		return ""
	}
}
