package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      StockStatus
	}{
		{"out of stock at zero", 0, 5, StockStatusOutOfStock},
		{"out of stock below zero", -1, 5, StockStatusOutOfStock},
		{"low stock at threshold", 5, 5, StockStatusLowStock},
		{"low stock below threshold", 3, 5, StockStatusLowStock},
		{"in stock above threshold", 6, 5, StockStatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{StockQuantity: tt.quantity, LowStockThreshold: tt.threshold}
			assert.Equal(t, tt.want, p.StockStatus())
		})
	}
}

func TestEffectivePrice(t *testing.T) {
	t.Run("uses discounted price when lower", func(t *testing.T) {
		p := Product{Price: 50000, DiscountedPrice: int64Ptr(40000)}
		assert.Equal(t, int64(40000), p.EffectivePrice())
	})

	t.Run("ignores discounted price at or above list price", func(t *testing.T) {
		p := Product{Price: 50000, DiscountedPrice: int64Ptr(50000)}
		assert.Equal(t, int64(50000), p.EffectivePrice())
	})

	t.Run("falls back to list price", func(t *testing.T) {
		p := Product{Price: 50000}
		assert.Equal(t, int64(50000), p.EffectivePrice())
	})
}

func TestDiscountPercentage(t *testing.T) {
	p := Product{Price: 50000, DiscountedPrice: int64Ptr(40000)}
	assert.Equal(t, 20, p.DiscountPercentage())

	noDiscount := Product{Price: 50000}
	assert.Equal(t, 0, noDiscount.DiscountPercentage())
}

func TestHasVariant(t *testing.T) {
	p := Product{Colors: "Red, Blue,Green", Sizes: "S,M,L"}

	assert.True(t, p.HasVariant("Red", "M"))
	assert.True(t, p.HasVariant("blue", "l")) // case-insensitive
	assert.True(t, p.HasVariant("", ""))      // variant-free selection
	assert.False(t, p.HasVariant("Black", "M"))
	assert.False(t, p.HasVariant("Red", "XXL"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "classic-cotton-tee", Slugify("Classic Cotton Tee"))
	assert.Equal(t, "summer-dress-2024", Slugify("  Summer Dress (2024)!  "))
	assert.Equal(t, "a-b", Slugify("A---B"))
}
