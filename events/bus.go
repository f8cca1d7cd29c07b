// Package events provides the in-process broadcast channel that stores use
// to notify independently rendered consumers (layout, theming, i18n).
package events

import "sync"

// Topic names a kind of event.
type Topic string

// Topics published by the preference store.
const (
	// TopicThemeChanged carries the resolved dark flag (bool).
	TopicThemeChanged Topic = "theme.changed"
	// TopicLanguageChanged carries the applied language code (string).
	TopicLanguageChanged Topic = "language.changed"
	// TopicSidebarWidthChanged carries the new width in pixels (int).
	TopicSidebarWidthChanged Topic = "sidebar.width.changed"
)

// TopicSessionChanged carries a session.Change for every effective
// registry mutation.
const TopicSessionChanged Topic = "session.changed"

// Event is a single published notification.
type Event struct {
	Topic   Topic
	Payload interface{}
}

// Handler receives events for a topic it subscribed to.
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously, in publish order, to every
// subscriber of the event's topic. Subscribers are called in the order
// they subscribed.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers h for topic and returns a function that removes it.
// The returned function is idempotent.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Publish delivers e to the current subscribers of e.Topic.
// Handlers run on the caller's goroutine, outside the bus lock, so they
// may subscribe, unsubscribe, or publish themselves.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs[e.Topic]))
	copy(subs, b.subs[e.Topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// SubscriberCount returns the number of subscribers for topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
