package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Matches(t *testing.T) {
	c := Change{Collection: CollectionAddresses, Scope: "u1", DocumentID: "a1"}

	assert.True(t, Query{Collection: CollectionAddresses, Scope: "u1"}.Matches(c))
	assert.True(t, Query{Collection: CollectionAddresses}.Matches(c))
	assert.False(t, Query{Collection: CollectionAddresses, Scope: "u2"}.Matches(c))
	assert.False(t, Query{Collection: CollectionOrders}.Matches(c))
}

func TestHub_DeliversToMatchingSubscribers(t *testing.T) {
	hub := NewHub()
	var mine, all []Change

	unsubMine := hub.Subscribe(Query{Collection: CollectionAddresses, Scope: "u1"}, func(c Change) { mine = append(mine, c) })
	unsubAll := hub.Subscribe(Query{Collection: CollectionAddresses}, func(c Change) { all = append(all, c) })
	defer unsubAll()

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, Change{Collection: CollectionAddresses, Scope: "u1", Kind: ChangeCreated}))
	require.NoError(t, hub.Publish(ctx, Change{Collection: CollectionAddresses, Scope: "u2", Kind: ChangeCreated}))
	require.NoError(t, hub.Publish(ctx, Change{Collection: CollectionOrders, Scope: "u1", Kind: ChangeCreated}))

	assert.Len(t, mine, 1)
	assert.Len(t, all, 2)
	assert.Equal(t, hub.Origin(), mine[0].Origin)
	assert.False(t, mine[0].At.IsZero())

	unsubMine()
	unsubMine()
	require.NoError(t, hub.Publish(ctx, Change{Collection: CollectionAddresses, Scope: "u1"}))
	assert.Len(t, mine, 1, "no delivery after unsubscribe")
	assert.Equal(t, 1, hub.Len())
}

func TestHub_CallbackMaySubscribe(t *testing.T) {
	hub := NewHub()
	var once sync.Once
	hub.Subscribe(Query{}, func(Change) {
		once.Do(func() { hub.Subscribe(Query{}, func(Change) {}) })
	})

	require.NoError(t, hub.Publish(context.Background(), Change{Collection: CollectionOrders}))
	assert.Equal(t, 2, hub.Len())
}

func TestRedisBridge_HandleSkipsOwnOrigin(t *testing.T) {
	hub := NewHub()
	bridge := NewRedisBridge(hub, nil, "")
	assert.Equal(t, DefaultChannel, bridge.channel)

	var got []Change
	bridge.Subscribe(Query{Collection: CollectionOrders}, func(c Change) { got = append(got, c) })

	own, err := json.Marshal(Change{Collection: CollectionOrders, DocumentID: "o1", Origin: hub.Origin()})
	require.NoError(t, err)
	remote, err := json.Marshal(Change{Collection: CollectionOrders, DocumentID: "o2", Origin: "other-instance"})
	require.NoError(t, err)

	bridge.handle(string(own))
	bridge.handle(string(remote))
	bridge.handle("{not json")

	require.Len(t, got, 1)
	assert.Equal(t, "o2", got[0].DocumentID)
}
