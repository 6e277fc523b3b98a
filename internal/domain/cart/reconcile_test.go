package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 3, ClampQuantity(3, 10))
	assert.Equal(t, 10, ClampQuantity(15, 10))
	assert.Equal(t, 1, ClampQuantity(0, 10))
	assert.Equal(t, 1, ClampQuantity(-5, 10))
	assert.Equal(t, 0, ClampQuantity(3, 0))
	assert.Equal(t, 0, ClampQuantity(3, -1))
}

func TestAddOrMergeSumsMatchingLines(t *testing.T) {
	lines := []Line{{ProductID: 7, Color: "Red", Size: "M", Quantity: 2}}

	lines = AddOrMerge(lines, Line{ProductID: 7, Color: "red", Size: "m", Quantity: 3}, 100)

	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAddOrMergeClampsToStock(t *testing.T) {
	lines := []Line{{ProductID: 7, Color: "Red", Size: "M", Quantity: 2}}

	// 2 + 3 exceeds the 4 units in stock
	lines = AddOrMerge(lines, Line{ProductID: 7, Color: "Red", Size: "M", Quantity: 3}, 4)

	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestAddOrMergeDistinctVariants(t *testing.T) {
	lines := []Line{{ProductID: 7, Color: "Red", Size: "M", Quantity: 1}}

	lines = AddOrMerge(lines, Line{ProductID: 7, Color: "Red", Size: "L", Quantity: 1}, 10)
	lines = AddOrMerge(lines, Line{ProductID: 8, Color: "Red", Size: "M", Quantity: 1}, 10)

	assert.Len(t, lines, 3)
}

func TestAddOrMergeSkipsWhenNoStock(t *testing.T) {
	var lines []Line
	lines = AddOrMerge(lines, Line{ProductID: 7, Quantity: 2}, 0)
	assert.Empty(t, lines)
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("below one is a no-op", func(t *testing.T) {
		lines := []Line{{ProductID: 7, Quantity: 3}}
		lines = UpdateQuantity(lines, Line{ProductID: 7}, 0, 10)
		assert.Equal(t, 3, lines[0].Quantity)
	})

	t.Run("clamps to stock", func(t *testing.T) {
		lines := []Line{{ProductID: 7, Quantity: 3}}
		lines = UpdateQuantity(lines, Line{ProductID: 7}, 50, 10)
		assert.Equal(t, 10, lines[0].Quantity)
	})

	t.Run("unknown identity leaves lines unchanged", func(t *testing.T) {
		lines := []Line{{ProductID: 7, Quantity: 3}}
		lines = UpdateQuantity(lines, Line{ProductID: 99}, 5, 10)
		assert.Equal(t, 3, lines[0].Quantity)
	})
}

func TestRemoveLine(t *testing.T) {
	lines := []Line{
		{ProductID: 7, Color: "Red", Size: "M", Quantity: 1},
		{ProductID: 7, Color: "Red", Size: "L", Quantity: 2},
	}

	lines = RemoveLine(lines, Line{ProductID: 7, Color: "RED", Size: "m"})

	require.Len(t, lines, 1)
	assert.Equal(t, "L", lines[0].Size)
}
