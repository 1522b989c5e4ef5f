package cart

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	*MemoryStorage
	err error
}

func (f *failingStorage) Save(context.Context, string, []byte) error { return f.err }

func TestStore_RoundTripThroughStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	store, err := Open(ctx, storage, "user:u1")
	require.NoError(t, err)
	assert.Empty(t, store.Lines())

	_, err = store.Dispatch(ctx, Add(line("p1", 500, 2, "M", "Black")))
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, Add(line("p2", 799, 1, "L", "Olive")))
	require.NoError(t, err)

	reopened, err := Open(ctx, storage, "user:u1")
	require.NoError(t, err)
	got := reopened.Lines()
	require.Len(t, got, 2)
	assert.Equal(t, store.Lines()[0].Key(), got[0].Key())
	assert.True(t, TotalPrice(got).Equal(TotalPrice(store.Lines())))

	other, err := Open(ctx, storage, "guest:g1")
	require.NoError(t, err)
	assert.Empty(t, other.Lines())
}

func TestStore_RejectsInvalidActions(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, NewMemoryStorage(), "k")
	require.NoError(t, err)

	_, err = store.Dispatch(ctx, Add(line("p1", 500, 0, "M", "Black")))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = store.Dispatch(ctx, Add(models.CartLine{Quantity: 1}))
	assert.ErrorIs(t, err, ErrMissingProduct)

	_, err = store.Dispatch(ctx, Action{Type: "TOGGLE_CART"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Empty(t, store.Lines())
}

func TestStore_SubscribersSeeCommittedChanges(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, NewMemoryStorage(), "k")
	require.NoError(t, err)

	var seen [][]models.CartLine
	unsubscribe := store.Subscribe(func(lines []models.CartLine) { seen = append(seen, lines) })

	_, err = store.Dispatch(ctx, Add(line("p1", 500, 1, "M", "Black")))
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, SetQuantity(models.CartKey{ProductID: "p1", Size: "M", Color: "Black"}, 0))
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])

	unsubscribe()
	_, err = store.Dispatch(ctx, Clear())
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestStore_StorageFailureLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(), err: boom}

	store, err := Open(ctx, storage, "k")
	require.NoError(t, err)

	called := false
	store.Subscribe(func([]models.CartLine) { called = true })

	_, err = store.Dispatch(ctx, Add(line("p1", 500, 1, "M", "Black")))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.Lines())
	assert.False(t, called)
}

func TestStore_CorruptPayloadStartsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, "k", []byte("{not json")))

	store, err := Open(ctx, storage, "k")
	require.NoError(t, err)
	assert.Empty(t, store.Lines())
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "cart:user:u1:items", RedisKey("user:u1"))
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	storage := NewRedisStorage(client, time.Minute)
	key := "test-" + uuid.New().String()
	defer client.Del(ctx, RedisKey(key))

	data, err := storage.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, data)

	store, err := Open(ctx, storage, key)
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, Add(line("p1", 500, 3, "M", "Black")))
	require.NoError(t, err)

	reopened, err := Open(ctx, storage, key)
	require.NoError(t, err)
	assert.Equal(t, 3, TotalItems(reopened.Lines()))

	ttl, err := client.TTL(ctx, RedisKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
