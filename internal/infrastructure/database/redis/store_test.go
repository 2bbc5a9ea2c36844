package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "brewflow", ttl), mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := t.Context()

	_, err := store.Get(ctx, persistence.KeyCart)
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, store.Set(ctx, persistence.KeyCart, `[{"_id":"p1"}]`))
	v, err := store.Get(ctx, persistence.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[{"_id":"p1"}]`, v)
	assert.True(t, mr.Exists("brewflow:cart"))

	require.NoError(t, store.Remove(ctx, persistence.KeyCart))
	assert.False(t, mr.Exists("brewflow:cart"))
}

func TestStoreTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, persistence.KeyCustomerID, "CUST-1"))
	assert.Equal(t, time.Hour, mr.TTL("brewflow:customerId"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, persistence.KeyCustomerID)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestStoreReadsRefreshTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, persistence.KeyCart, `[{"_id":"p1"}]`))

	// an active visitor reads more often than the ttl but never writes
	for i := 0; i < 3; i++ {
		mr.FastForward(50 * time.Minute)
		v, err := store.Get(ctx, persistence.KeyCart)
		require.NoError(t, err)
		assert.Equal(t, `[{"_id":"p1"}]`, v)
		assert.Equal(t, time.Hour, mr.TTL("brewflow:cart"))
	}
}

func TestStoreReadKeepsKeysWithoutTTL(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := t.Context()

	require.NoError(t, mr.Set("brewflow:cart", "[]"))
	mr.SetTTL("brewflow:cart", time.Hour)

	_, err := store.Get(ctx, persistence.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("brewflow:cart"))
}

func TestStoreWithNamespace(t *testing.T) {
	store, mr := newTestStore(t, 0)

	visitor := persistence.Namespace(store, "v1")
	require.NoError(t, visitor.Set(t.Context(), persistence.KeyAdminToken, "tok"))
	assert.True(t, mr.Exists("brewflow:v1:ADMIN_TOKEN"))
}

func TestStoreConnectionError(t *testing.T) {
	store, mr := newTestStore(t, 0)
	mr.Close()

	_, err := store.Get(t.Context(), persistence.KeyCart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, persistence.ErrNotFound)
}
