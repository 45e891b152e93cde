package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/asfe/pkg/adapters/redis"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.HistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisHistoryStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunHistoryStoreContract(t, store)
}

func TestRedisHistoryStore_Limit(t *testing.T) {
	store, mr := newStore(t, redis.WithLimit(2), redis.WithPrefix("test:"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, domain.GatherRun{ID: fmt.Sprint(i), Network: "net"}))
	}

	items, err := mr.List("test:net")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	last, err := store.Last(ctx, "net")
	require.NoError(t, err)
	assert.Equal(t, "4", last.ID)
}

func TestRedisHistoryStore_TTL(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.GatherRun{ID: "a", Network: "net"}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Last(ctx, "net")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := redis.NewFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(context.Background(), domain.GatherRun{ID: "a", Network: "net"}))
	assert.True(t, mr.Exists("asfe:history:net"))

	_, err = redis.NewFromURL("not a url")
	assert.Error(t, err)
}
