package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func timePtr(t time.Time) *time.Time {
	return &t
}

func activeCoupon() Coupon {
	return Coupon{
		Code:          "SAVE20",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: 20,
		ValidFrom:     time.Now().UTC().Add(-time.Hour),
		IsActive:      true,
	}
}

func TestEligibilityCheckOrder(t *testing.T) {
	now := time.Now().UTC()

	t.Run("inactive wins over everything else", func(t *testing.T) {
		c := activeCoupon()
		c.IsActive = false
		c.ValidUntil = timePtr(now.Add(-time.Hour)) // also expired
		assert.ErrorIs(t, c.EligibilityError(100000, now), ErrInactive)
	})

	t.Run("expired regardless of other valid fields", func(t *testing.T) {
		c := activeCoupon()
		c.ValidUntil = timePtr(now.Add(-time.Minute))
		c.UsageLimit = intPtr(100)
		assert.ErrorIs(t, c.EligibilityError(100000, now), ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := activeCoupon()
		c.ValidFrom = now.Add(time.Hour)
		assert.ErrorIs(t, c.EligibilityError(100000, now), ErrNotYetValid)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		c := activeCoupon()
		c.UsageLimit = intPtr(10)
		c.UsageCount = 10
		assert.ErrorIs(t, c.EligibilityError(100000, now), ErrUsageLimitReached)
	})

	t.Run("below minimum purchase", func(t *testing.T) {
		c := activeCoupon()
		c.MinPurchaseAmount = int64Ptr(50000)
		assert.ErrorIs(t, c.EligibilityError(49999, now), ErrBelowMinimum)
		assert.NoError(t, c.EligibilityError(50000, now))
	})

	t.Run("fully eligible", func(t *testing.T) {
		c := activeCoupon()
		assert.NoError(t, c.EligibilityError(100, now))
	})
}

func TestPercentageDiscountCap(t *testing.T) {
	c := Coupon{
		DiscountType:      DiscountTypePercentage,
		DiscountValue:     50,
		MaxDiscountAmount: int64Ptr(10000), // Rs. 100 cap
	}

	// 50% of Rs. 1000 would be Rs. 500; cap holds it at Rs. 100
	assert.Equal(t, int64(10000), c.DiscountFor(100000))

	// Below the cap the raw percentage applies
	assert.Equal(t, int64(5000), c.DiscountFor(10000))
}

func TestFixedDiscountClamp(t *testing.T) {
	c := Coupon{
		DiscountType:  DiscountTypeFixed,
		DiscountValue: 50000, // Rs. 500
	}

	// Fixed discount larger than the order clamps to the order amount
	assert.Equal(t, int64(30000), c.DiscountFor(30000))
	assert.Equal(t, int64(50000), c.DiscountFor(80000))
	assert.Equal(t, int64(0), c.DiscountFor(0))
}

func TestDiscountForUnknownType(t *testing.T) {
	c := Coupon{DiscountType: "bogus", DiscountValue: 50}
	assert.Equal(t, int64(0), c.DiscountFor(100000))
}

func TestHasRemainingUses(t *testing.T) {
	unlimited := Coupon{}
	assert.True(t, unlimited.HasRemainingUses())

	capped := Coupon{UsageLimit: intPtr(5), UsageCount: 5}
	assert.False(t, capped.HasRemainingUses())

	capped.UsageCount = 4
	assert.True(t, capped.HasRemainingUses())
}
