// Package eventbus is the in-memory publish/subscribe bus that carries chat
// exchanges and prompt generations to the transcript recorder.
//
//   - Buffered channel per subscriber.
//   - Publish never blocks: an event is dropped when a subscriber's buffer is full,
//     so a slow recorder can never delay an HTTP response.
//   - Close closes every subscriber channel; publishing after Close is a no-op.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// Topics published by the request path.
const (
	TopicChatExchange    = "chat.exchange"
	TopicPromptGenerated = "prompt.generated"
)

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// Publisher is the narrow side used by request handlers and services.
type Publisher interface {
	Publish(topic string, payload any)
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publisher
	Subscribe(topic string) <-chan Event
}

const defaultBufferSize = 100

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
	subscribers map[string][]chan Event
	dropped     atomic.Uint64
}

// New returns a Bus with the default per-subscriber buffer.
func New() *Bus {
	return NewWithBuffer(defaultBufferSize)
}

// NewWithBuffer returns a Bus whose subscriber channels hold size events.
func NewWithBuffer(size int) *Bus {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Bus{
		bufferSize:  size,
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe registers a new subscriber for topic and returns a read-only channel.
// Subscribing to a closed bus returns an already-closed channel.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, b.bufferSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

// Publish sends an Event to all subscribers of topic without blocking.
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Topic: topic, Payload: payload}

	// Held for the whole send so Close cannot close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many events were discarded because a buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = nil
}
