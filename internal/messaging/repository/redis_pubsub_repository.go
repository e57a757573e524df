package repository

import (
	"context"
	"encoding/json"

	"outreach_messaging_service/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// PubSub is the push channel. Delivery is at-least-once per connected
// subscriber and carries no ordering guarantee; consumers reconcile.
type PubSub interface {
	Publish(channel string, message interface{}) error
	// Subscribe delivers raw payloads to handler until ctx is done.
	// onConnect fires once the subscription is confirmed, which is the
	// hook the sync engine uses for gap repair.
	Subscribe(ctx context.Context, channel string, onConnect func(), handler func(payload []byte)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish marshals message and publishes it on channel
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe subscribes channel and forwards payloads to handler until
// ctx is cancelled.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, onConnect func(), handler func(payload []byte)) error {
	sub := r.client.Subscribe(r.ctx, channel)

	// Receive confirms the SUBSCRIBE round-trip before we declare the
	// channel live.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return err
	}
	if onConnect != nil {
		onConnect()
	}

	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(m.Payload))
			case <-ctx.Done():
				logger.Log.Info(channel + " , sub close")
				sub.Close()
				return
			}
		}
	}()
	return nil
}
