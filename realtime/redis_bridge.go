package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Govind-619/Clomora/utils"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the redis pub/sub channel shared by all instances.
const DefaultChannel = "clomora:changes"

// RedisBridge relays changes between instances over redis pub/sub.
// Local subscribers are served by the wrapped Hub.
type RedisBridge struct {
	hub     *Hub
	client  redis.UniversalClient
	channel string
}

// NewRedisBridge wraps hub. Call Run to start relaying remote changes.
func NewRedisBridge(hub *Hub, client redis.UniversalClient, channel string) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{hub: hub, client: client, channel: channel}
}

// Subscribe registers a local subscriber.
func (b *RedisBridge) Subscribe(q Query, onChange func(Change)) func() {
	return b.hub.Subscribe(q, onChange)
}

// Publish delivers locally, then fans out to other instances.
func (b *RedisBridge) Publish(ctx context.Context, c Change) error {
	c.Origin = b.hub.Origin()
	if c.At.IsZero() {
		c.At = time.Now()
	}
	b.hub.deliver(c)

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Run relays remote changes until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	utils.LogInfo("Realtime bridge listening on %s", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBridge) handle(payload string) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		utils.LogError("Dropping undecodable change: %v", err)
		return
	}
	if c.Origin == b.hub.Origin() {
		return
	}
	b.hub.deliver(c)
}
