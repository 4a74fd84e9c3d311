package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// KVRedisClient implements RedisClient on top of go-redis.
type KVRedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewKVRedisClient wraps an already configured go-redis client.
func NewKVRedisClient(ctx context.Context, client *redis.Client) *KVRedisClient {
	return &KVRedisClient{
		client: client,
		ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis
func (r *KVRedisClient) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Get retrieves the value for a given key from Redis
func (r *KVRedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, err
}

func (r *KVRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern).Result()
}

func (r *KVRedisClient) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *KVRedisClient) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, channel, message).Err()
}

// Subscribe waits for the subscription to be confirmed before returning so
// that no message published afterwards is lost.
func (r *KVRedisClient) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     make(chan string),
		done:   make(chan struct{}),
	}
	go sub.forward()
	return sub, nil
}

func (r *KVRedisClient) GetContext() context.Context {
	return r.ctx
}

func (r *KVRedisClient) Ping() error {
	_, err := r.client.Ping(r.ctx).Result()
	return err
}

type redisSubscription struct {
	pubsub    *redis.PubSub
	ch        chan string
	done      chan struct{}
	closeOnce sync.Once
}

func (s *redisSubscription) forward() {
	defer close(s.ch)
	for msg := range s.pubsub.Channel() {
		select {
		case s.ch <- msg.Payload:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Channel() <-chan string {
	return s.ch
}

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.pubsub.Close()
}
