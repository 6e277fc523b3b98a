// internal/domain/cart/reconcile.go
package cart

import (
	"strings"
	"time"
)

// Line is the storage-independent cart line used for guest carts and for
// reconciling a guest cart into an account cart on login.
type Line struct {
	ProductID uint      `json:"product_id"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// SameIdentity reports whether two lines refer to the same
// (product, color, size) selection. Variant comparison is case-insensitive.
func (l Line) SameIdentity(other Line) bool {
	return l.ProductID == other.ProductID &&
		strings.EqualFold(l.Color, other.Color) &&
		strings.EqualFold(l.Size, other.Size)
}

// ClampQuantity clamps a requested quantity to [1, stock]. A non-positive
// stock yields 0, meaning the line cannot be carried at all.
func ClampQuantity(requested, stock int) int {
	if stock < 1 {
		return 0
	}
	if requested < 1 {
		requested = 1
	}
	if requested > stock {
		return stock
	}
	return requested
}

// AddOrMerge adds a line to the slice, merging by identity key. A line with
// the same identity has its quantity incremented; otherwise the new line is
// appended. The resulting quantity is clamped to [1, stock].
func AddOrMerge(lines []Line, add Line, stock int) []Line {
	for i := range lines {
		if lines[i].SameIdentity(add) {
			lines[i].Quantity = ClampQuantity(lines[i].Quantity+add.Quantity, stock)
			return lines
		}
	}

	add.Quantity = ClampQuantity(add.Quantity, stock)
	if add.Quantity == 0 {
		return lines
	}
	if add.AddedAt.IsZero() {
		add.AddedAt = time.Now().UTC()
	}
	return append(lines, add)
}

// UpdateQuantity replaces a line's quantity, clamped to [1, stock]. A
// requested quantity below 1 is a no-op; removal is a separate operation.
func UpdateQuantity(lines []Line, target Line, quantity, stock int) []Line {
	if quantity < 1 {
		return lines
	}
	for i := range lines {
		if lines[i].SameIdentity(target) {
			lines[i].Quantity = ClampQuantity(quantity, stock)
			break
		}
	}
	return lines
}

// RemoveLine filters a line out by identity key
func RemoveLine(lines []Line, target Line) []Line {
	out := lines[:0]
	for _, l := range lines {
		if !l.SameIdentity(target) {
			out = append(out, l)
		}
	}
	return out
}
