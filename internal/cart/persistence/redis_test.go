package persistence

import (
	"context"
	"testing"

	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := &domain.Cart{
		SessionID: "s1",
		Lines: []domain.CartLine{
			{LineID: "l1", ProductID: 1, UnitPrice: 100, Quantity: 2,
				Customization: domain.Customization{"color": "red"}},
		},
		Open: true,
	}
	require.NoError(t, store.Save(ctx, cart))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "l1", loaded.Lines[0].LineID)
	assert.Equal(t, int64(1), loaded.Lines[0].ProductID)
	assert.Equal(t, 2, loaded.Lines[0].Quantity)
	assert.True(t, loaded.Open)
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Load(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_LoadCorruptValue(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:s1", "{broken"))

	_, err := store.Load(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Cart{SessionID: "s1"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_SetsTTL(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Save(context.Background(), &domain.Cart{SessionID: "s1"}))
	assert.Greater(t, mr.TTL("cart:s1").Hours(), 0.0)
}
