// internal/domain/cart/engine.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/domain/product"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

// Engine is one visitor's cart. Every mutation is written through to the
// store under persistence.KeyCart. The mutex guards one Engine only; callers
// sharing a store across requests serialize Load and the mutation themselves.
type Engine struct {
	mu       sync.Mutex
	items    []CartItem
	store    persistence.Store
	notifier notify.Notifier
	logger   logrus.FieldLogger
}

// Load restores the cart from store. A missing or unreadable cart starts empty.
func Load(ctx context.Context, store persistence.Store, notifier notify.Notifier, logger logrus.FieldLogger) (*Engine, error) {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	e := &Engine{
		items:    []CartItem{},
		store:    store,
		notifier: notifier,
		logger:   logger,
	}

	raw, err := store.Get(ctx, persistence.KeyCart)
	if errors.Is(err, persistence.ErrNotFound) {
		return e, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.WithError(err).Warn("Discarding malformed stored cart")
		return e, nil
	}
	e.items = normalize(items)
	return e, nil
}

// Add puts one unit of p in the cart
func (e *Engine) Add(ctx context.Context, p product.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(p.ID); i >= 0 {
		e.items[i].Quantity++
	} else {
		e.items = append(e.items, FromProduct(p))
	}

	e.notifier.Notify(ctx, notify.Success("Added to Cart", p.Name+" added"))
	return e.persist(ctx)
}

// Remove deletes the line for id. Unknown ids are ignored.
func (e *Engine) Remove(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	e.items = append(e.items[:i], e.items[i+1:]...)

	e.notifier.Notify(ctx, notify.Info("Removed from Cart", "Item removed"))
	return e.persist(ctx)
}

// Increase adds one unit to the line for id
func (e *Engine) Increase(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	e.items[i].Quantity++
	return e.persist(ctx)
}

// Decrease takes one unit from the line for id. A line never drops below
// one unit; use Remove to delete it.
func (e *Engine) Decrease(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 || e.items[i].Quantity <= 1 {
		return nil
	}
	e.items[i].Quantity--
	return e.persist(ctx)
}

// Clear empties the cart
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = []CartItem{}
	return e.persist(ctx)
}

// Items returns a copy of the lines in insertion order
func (e *Engine) Items() []CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]CartItem, len(e.items))
	copy(out, e.items)
	return out
}

// Total is the sum of price times quantity
func (e *Engine) Total() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total float64
	for _, item := range e.items {
		total += item.Subtotal()
	}
	return total
}

// FormatTotal renders Total with two decimals
func (e *Engine) FormatTotal() string {
	return FormatAmount(e.Total())
}

// Count is the number of units across all lines
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, item := range e.items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines
func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items) == 0
}

// Summary snapshots the cart for display
func (e *Engine) Summary() Summary {
	total := e.Total()
	return Summary{
		Items:          e.Items(),
		Count:          e.Count(),
		Total:          total,
		FormattedTotal: FormatAmount(total),
	}
}

func (e *Engine) indexOf(id string) int {
	for i, item := range e.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held
func (e *Engine) persist(ctx context.Context) error {
	data, err := json.Marshal(e.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := e.store.Set(ctx, persistence.KeyCart, string(data)); err != nil {
		e.logger.WithError(err).Error("Failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
