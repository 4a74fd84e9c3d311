package services

import (
	"sync"

	"go.uber.org/zap"
)

// TOPIC_EDIT_MODE carries a bool: true when edit mode is switched on.
const TOPIC_EDIT_MODE = "edit.mode"

// TopicRegistry is an in-process publish/subscribe hub. Listeners run
// synchronously on the publisher's goroutine.
type TopicRegistry struct {
	log *zap.Logger

	mu        sync.RWMutex
	nextID    int
	listeners map[string]map[int]func(interface{})
	last      map[string]interface{}
}

func NewTopicRegistry(log *zap.Logger) *TopicRegistry {
	return &TopicRegistry{
		log:       log,
		listeners: map[string]map[int]func(interface{}){},
		last:      map[string]interface{}{},
	}
}

// Subscribe registers listener on topic. When the topic was published before,
// the listener receives the last message right away. The returned function
// unsubscribes.
func (r *TopicRegistry) Subscribe(topic string, listener func(msg interface{})) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	if r.listeners[topic] == nil {
		r.listeners[topic] = map[int]func(interface{}){}
	}
	r.listeners[topic][id] = listener
	last, seen := r.last[topic]
	r.mu.Unlock()

	if seen {
		listener(last)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners[topic], id)
			r.mu.Unlock()
		})
	}
}

// Publish delivers msg to every listener of topic.
func (r *TopicRegistry) Publish(topic string, msg interface{}) {
	r.mu.Lock()
	r.last[topic] = msg
	listeners := make([]func(interface{}), 0, len(r.listeners[topic]))
	for _, l := range r.listeners[topic] {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	r.log.Debug("[TopicRegistry] Publishing", zap.String("topic", topic), zap.Int("listeners", len(listeners)))
	for _, l := range listeners {
		l(msg)
	}
}
