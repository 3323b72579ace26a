package ws_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/ws"
)

func TestMemoryPresence(t *testing.T) {
	ctx := context.Background()
	p := ws.NewMemoryPresence()

	require.NoError(t, p.Add(ctx, 3))
	require.NoError(t, p.Add(ctx, 1))
	require.NoError(t, p.Add(ctx, 1))

	online, err := p.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, online)

	require.NoError(t, p.Remove(ctx, 1))
	online, err = p.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, online)

	// removing an absent user is a no-op
	require.NoError(t, p.Remove(ctx, 99))
}

func TestRedisPresence(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p := ws.NewRedisPresence(client)

	require.NoError(t, p.Add(ctx, 7))
	require.NoError(t, p.Add(ctx, 2))
	require.NoError(t, p.Add(ctx, 7))

	online, err := p.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 7}, online)

	require.NoError(t, p.Remove(ctx, 7))
	online, err = p.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, online)
}

func TestRedisPresenceSkipsGarbageMembers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mr.SAdd("unichat:online", "5", "not-a-number")

	p := ws.NewRedisPresence(client)
	online, err := p.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, online)
}
