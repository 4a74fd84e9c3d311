package redis

import (
	"context"
	"fmt"
	"strconv"

	"opening-hours/db"

	"go.uber.org/zap"
)

// EDIT_MODE_CHANNEL carries "true"/"false" edit mode signals between instances.
const EDIT_MODE_CHANNEL = "edit_mode_v1"

// RedisEditModeBroadcaster publishes edit mode changes over Redis pub/sub so
// every instance sees them.
type RedisEditModeBroadcaster struct {
	client db.RedisClient
	log    *zap.Logger
}

func NewRedisEditModeBroadcaster(client db.RedisClient, log *zap.Logger) *RedisEditModeBroadcaster {
	return &RedisEditModeBroadcaster{client: client, log: log}
}

// Broadcast publishes the edit mode signal.
func (b *RedisEditModeBroadcaster) Broadcast(ctx context.Context, active bool) error {
	if err := b.client.Publish(ctx, EDIT_MODE_CHANNEL, strconv.FormatBool(active)); err != nil {
		return fmt.Errorf("failed to publish edit mode: %w", err)
	}
	return nil
}

// Listen invokes onSignal for every signal received until the returned stop
// function is called. Malformed payloads are skipped.
func (b *RedisEditModeBroadcaster) Listen(ctx context.Context, onSignal func(active bool)) (func(), error) {
	sub, err := b.client.Subscribe(ctx, EDIT_MODE_CHANNEL)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range sub.Channel() {
			active, err := strconv.ParseBool(payload)
			if err != nil {
				b.log.Warn("[RedisEditModeBroadcaster] skipping malformed payload",
					zap.String("payload", payload), zap.Error(err))
				continue
			}
			onSignal(active)
		}
	}()

	return func() {
		sub.Close()
		<-done
	}, nil
}
