package kvstore

import (
	"context"
	"testing"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract runs the behaviour every backend must share
func testStoreContract(t *testing.T, store shared.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		val, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, shared.KeySelectedCurrency, "₹"))

		val, ok, err := store.Get(ctx, shared.KeySelectedCurrency)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "₹", val)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, shared.KeyAdsRemoved, "0"))
		require.NoError(t, store.Set(ctx, shared.KeyAdsRemoved, "1"))

		val, _, err := store.Get(ctx, shared.KeyAdsRemoved)
		require.NoError(t, err)
		assert.Equal(t, "1", val)
	})

	t.Run("empty value is distinct from missing", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "blank", ""))

		val, ok, err := store.Get(ctx, "blank")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, val)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, shared.KeySessionToken, "abc"))
		require.NoError(t, store.Delete(ctx, shared.KeySessionToken))
		require.NoError(t, store.Delete(ctx, shared.KeySessionToken), "deleting twice is fine")

		_, ok, err := store.Get(ctx, shared.KeySessionToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("json values round trip unchanged", func(t *testing.T) {
		user := `{"id":3,"name":"Asha","email":"asha@example.com"}`
		require.NoError(t, store.Set(ctx, shared.KeySessionUser, user))

		val, _, err := store.Get(ctx, shared.KeySessionUser)
		require.NoError(t, err)
		assert.JSONEq(t, user, val)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	testStoreContract(t, store)

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
	})
}
