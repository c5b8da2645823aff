package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a Redis store on top of it
func setupTestRedis(t *testing.T, prefix string) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, prefix), mr
}

func TestRedis_Contract(t *testing.T) {
	s, _ := setupTestRedis(t, "storefront")
	runStoreContract(t, s)
}

func TestRedis_KeysArePrefixed(t *testing.T) {
	s, mr := setupTestRedis(t, "storefront")

	require.NoError(t, s.Set(context.Background(), "cart_guest", "[]"))

	assert.True(t, mr.Exists("storefront:cart_guest"))
	assert.False(t, mr.Exists("cart_guest"))
	assert.Equal(t, time.Duration(0), mr.TTL("storefront:cart_guest"))
}

func TestRedis_NoPrefix(t *testing.T) {
	s, mr := setupTestRedis(t, "")

	require.NoError(t, s.SetMany(context.Background(), map[string]string{"token": "t", "user": "{}"}))

	assert.True(t, mr.Exists("token"))
	assert.True(t, mr.Exists("user"))
}

func TestRedis_ServerDown(t *testing.T) {
	s, mr := setupTestRedis(t, "storefront")
	mr.Close()

	_, err := s.Get(context.Background(), "cart_guest")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "redis get failed")
}
