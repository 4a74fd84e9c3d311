package db

import (
	"context"
	"fmt"
	"log"
	"path"
	"sync"
)

// MockRedisClient simulates a Redis client for testing purposes.
type MockRedisClient struct {
	data        map[string]string              // Key-value store
	subscribers map[string][]*mockSubscription // Channel subscribers
	mu          sync.RWMutex                   // Mutex for thread-safe operations
	context     context.Context

	// GetErr and SetErr, when set, are returned by Get and Set.
	GetErr error
	SetErr error
}

// NewMockRedisClient initializes a new MockRedisClient.
func NewMockRedisClient(ctx context.Context) *MockRedisClient {
	return &MockRedisClient{
		data:        make(map[string]string),
		subscribers: make(map[string][]*mockSubscription),
		context:     ctx,
	}
}

// Set stores a key-value pair in the mock Redis.
func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

// Get retrieves a value for a given key from the mock Redis.
func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	value, exists := m.data[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

// Keys returns the keys matching a glob pattern.
func (m *MockRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := []string{}
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Publish delivers the message to every open subscription of the channel.
func (m *MockRedisClient) Publish(ctx context.Context, channel, message string) error {
	m.mu.RLock()
	subs := append([]*mockSubscription(nil), m.subscribers[channel]...)
	m.mu.RUnlock()
	for _, s := range subs {
		s.deliver(message)
	}
	return nil
}

func (m *MockRedisClient) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &mockSubscription{ch: make(chan string, 16), owner: m, channel: channel}
	m.subscribers[channel] = append(m.subscribers[channel], s)
	return s, nil
}

// GetContext returns the mock Redis client's context.
func (m *MockRedisClient) GetContext() context.Context {
	return m.context
}

// Ping simulates a Redis Ping operation.
func (m *MockRedisClient) Ping() error {
	// Always return nil (indicating Redis is "reachable").
	log.Println("MockRedisClient: Ping successful")
	return nil
}

func (m *MockRedisClient) unsubscribe(s *mockSubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subscribers[s.channel]
	for i, other := range subs {
		if other == s {
			m.subscribers[s.channel] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type mockSubscription struct {
	mu      sync.Mutex
	ch      chan string
	closed  bool
	owner   *MockRedisClient
	channel string
}

func (s *mockSubscription) deliver(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.ch <- message
	}
}

func (s *mockSubscription) Channel() <-chan string {
	return s.ch
}

func (s *mockSubscription) Close() error {
	s.owner.unsubscribe(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}
