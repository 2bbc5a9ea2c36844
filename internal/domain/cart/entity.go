// internal/domain/cart/entity.go
package cart

import (
	"fmt"

	"github.com/your-org/brewflow-storefront/internal/domain/product"
)

// CartItem is a product snapshot taken when it was first added. Later
// catalog price changes do not affect it.
type CartItem struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// FromProduct snapshots p with quantity 1
func FromProduct(p product.Product) CartItem {
	return CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: 1,
	}
}

// Summary is the cart as the storefront shows it
type Summary struct {
	Items          []CartItem `json:"items"`
	Count          int        `json:"count"`
	Total          float64    `json:"total"`
	FormattedTotal string     `json:"formattedTotal"`
}

// FormatAmount renders an amount with two decimals
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// normalize merges duplicate ids (first position wins) and drops entries a
// hand-edited or older cart might carry: no id, or quantity below one.
func normalize(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
