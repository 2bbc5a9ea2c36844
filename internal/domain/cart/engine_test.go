package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/brewflow-storefront/internal/domain/product"
	"github.com/your-org/brewflow-storefront/internal/pkg/logger"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

var (
	latte     = product.Product{ID: "p1", Name: "Latte", Price: 120}
	croissant = product.Product{ID: "p2", Name: "Croissant", Price: 10}
)

func load(t *testing.T, store persistence.Store, n notify.Notifier) *Engine {
	t.Helper()
	e, err := Load(t.Context(), store, n, logger.Discard())
	require.NoError(t, err)
	return e
}

func stored(t *testing.T, store persistence.Store) []CartItem {
	t.Helper()
	raw, err := store.Get(t.Context(), persistence.KeyCart)
	require.NoError(t, err)

	var items []CartItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestAddTwiceIncrementsQuantity(t *testing.T) {
	store := persistence.NewMemoryStore()
	e := load(t, store, nil)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Add(ctx, latte))

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, items, stored(t, store))
}

func TestTotal(t *testing.T) {
	e := load(t, persistence.NewMemoryStore(), nil)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Add(ctx, croissant))

	assert.Equal(t, 250.0, e.Total())
	assert.Equal(t, "250.00", e.FormatTotal())
	assert.Equal(t, 3, e.Count())
}

func TestInsertionOrderIsKept(t *testing.T) {
	e := load(t, persistence.NewMemoryStore(), nil)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, croissant))
	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Add(ctx, croissant))

	items := e.Items()
	assert.Equal(t, "p2", items[0].ID)
	assert.Equal(t, "p1", items[1].ID)
}

func TestDecreaseClampsAtOne(t *testing.T) {
	e := load(t, persistence.NewMemoryStore(), nil)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Increase(ctx, "p1"))
	require.NoError(t, e.Decrease(ctx, "p1"))
	require.NoError(t, e.Decrease(ctx, "p1"))
	require.NoError(t, e.Decrease(ctx, "p1"))

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	rec := notify.NewRecorder()
	store := persistence.NewMemoryStore()
	e := load(t, store, rec)
	ctx := t.Context()

	require.NoError(t, e.Increase(ctx, "missing"))
	require.NoError(t, e.Decrease(ctx, "missing"))
	require.NoError(t, e.Remove(ctx, "missing"))

	assert.True(t, e.IsEmpty())
	assert.Empty(t, rec.Notices())
	assert.Zero(t, store.Len(), "no-ops must not write")
}

func TestRemove(t *testing.T) {
	rec := notify.NewRecorder()
	store := persistence.NewMemoryStore()
	e := load(t, store, rec)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Add(ctx, croissant))
	require.NoError(t, e.Remove(ctx, "p1"))

	assert.Equal(t, []CartItem{{ID: "p2", Name: "Croissant", Price: 10, Quantity: 1}}, stored(t, store))

	notices := rec.Notices()
	require.Len(t, notices, 3)
	assert.Equal(t, notify.Success("Added to Cart", "Latte added"), notices[0])
	assert.Equal(t, notify.Info("Removed from Cart", "Item removed"), notices[2])
}

func TestPriceIsSnapshotAtAdd(t *testing.T) {
	e := load(t, persistence.NewMemoryStore(), nil)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, latte))
	repriced := latte
	repriced.Price = 999
	require.NoError(t, e.Add(ctx, repriced))

	assert.Equal(t, 240.0, e.Total())
}

func TestLoadRestoresPersistedCart(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := t.Context()

	first := load(t, store, nil)
	require.NoError(t, first.Add(ctx, latte))
	require.NoError(t, first.Add(ctx, croissant))

	second := load(t, store, nil)
	assert.Equal(t, first.Items(), second.Items())
}

func TestLoadToleratesBadData(t *testing.T) {
	cases := map[string]string{
		"malformed":   "{not json",
		"wrong shape": `{"items": 3}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := persistence.NewMemoryStore()
			require.NoError(t, store.Set(t.Context(), persistence.KeyCart, raw))

			e := load(t, store, nil)
			assert.True(t, e.IsEmpty())
			assert.Zero(t, e.Total())
		})
	}
}

func TestLoadNormalizesItems(t *testing.T) {
	store := persistence.NewMemoryStore()
	raw := `[{"_id":"p1","name":"Latte","price":120,"quantity":1},
		{"_id":"p2","name":"Tea","price":50,"quantity":0},
		{"_id":"p1","name":"Latte","price":120,"quantity":2},
		{"name":"ghost","price":1,"quantity":1}]`
	require.NoError(t, store.Set(t.Context(), persistence.KeyCart, raw))

	e := load(t, store, nil)
	assert.Equal(t, []CartItem{{ID: "p1", Name: "Latte", Price: 120, Quantity: 3}}, e.Items())
}

type failingStore struct {
	*persistence.MemoryStore
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	e := load(t, failingStore{persistence.NewMemoryStore()}, nil)

	err := e.Add(t.Context(), latte)
	require.Error(t, err)
	assert.Equal(t, 1, e.Count())
}

func TestClear(t *testing.T) {
	store := persistence.NewMemoryStore()
	e := load(t, store, nil)
	ctx := t.Context()

	require.NoError(t, e.Add(ctx, latte))
	require.NoError(t, e.Clear(ctx))

	assert.True(t, e.IsEmpty())
	assert.Empty(t, stored(t, store))
}

func TestConcurrentAdds(t *testing.T) {
	e := load(t, persistence.NewMemoryStore(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Add(ctx, latte)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, e.Count())
	assert.Len(t, e.Items(), 1)
}

func TestSummary(t *testing.T) {
	e := load(t, persistence.NewMemoryStore(), nil)
	require.NoError(t, e.Add(t.Context(), croissant))

	s := e.Summary()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, "10.00", s.FormattedTotal)
	assert.Len(t, s.Items, 1)
}
