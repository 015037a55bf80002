// Package bus carries typed message queues between the IRC transports, the
// observer surface, and the bridge coordinator. All queues are buffered and
// publishing never blocks: when a queue is full the oldest entry is dropped
// so a stalled consumer cannot wedge a transport callback.
package bus

import (
	"sync"
)

const queueDepth = 100

type Bus struct {
	inbound   chan InboundMessage
	observer  chan ObserverSend
	transport chan TransportEvent

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func New() *Bus {
	return &Bus{
		inbound:   make(chan InboundMessage, queueDepth),
		observer:  make(chan ObserverSend, queueDepth),
		transport: make(chan TransportEvent, queueDepth),
	}
}

// PublishInbound enqueues a channel message for the coordinator.
func (b *Bus) PublishInbound(msg InboundMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	publish(b.inbound, msg)
}

// PublishObserverSend enqueues an observer send request.
func (b *Bus) PublishObserverSend(msg ObserverSend) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	publish(b.observer, msg)
}

// PublishTransport enqueues a transport-level event.
func (b *Bus) PublishTransport(ev TransportEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	publish(b.transport, ev)
}

// Inbound exposes the inbound queue for the coordinator's event loop.
func (b *Bus) Inbound() <-chan InboundMessage { return b.inbound }

// ObserverSends exposes the observer send queue.
func (b *Bus) ObserverSends() <-chan ObserverSend { return b.observer }

// Transport exposes the transport event queue.
func (b *Bus) Transport() <-chan TransportEvent { return b.transport }

func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.inbound)
		close(b.observer)
		close(b.transport)
	})
}

// publish performs a non-blocking send; on a full queue it drops the oldest
// entry and retries once.
func publish[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
