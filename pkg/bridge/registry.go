// Package bridge wires the IRC transports, the reply engine, and the
// observer broadcaster together. The Registry holds one transport handle per
// monitored channel; the Coordinator owns all mutation and routing.
package bridge

import (
	"sync"

	"github.com/benevolentsky/skybridge/pkg/logger"
	"github.com/benevolentsky/skybridge/pkg/persona"
)

// Handle is one logical connection to a monitored channel.
type Handle interface {
	// Name is the channel identifier, e.g. "#philosophy".
	Name() string
	// Persona is the identity bound to this channel for its lifetime.
	Persona() *persona.Persona
	// Connected reports the transport connection state.
	Connected() bool
	// Nick is the transport's current nickname (may differ from the persona
	// display name after a collision rename).
	Nick() string
	// Send transmits text to the channel. Failures are logged by the
	// transport, never returned.
	Send(text string)
	// SendTo transmits text to an arbitrary target, e.g. a private reply
	// to a nick.
	SendTo(target, text string)
}

// Registry maps channel identifiers to their handles. Registering a
// duplicate identifier replaces the prior handle — last write wins.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Handle
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Handle)}
}

// Register adds a handle, replacing any prior handle with the same name.
func (r *Registry) Register(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.channels[h.Name()]; exists {
		logger.WarnCF("bridge", "Replacing registered channel", map[string]interface{}{
			"channel": h.Name(),
		})
	} else {
		r.order = append(r.order, h.Name())
	}
	r.channels[h.Name()] = h
}

// Lookup returns the handle for a channel identifier.
func (r *Registry) Lookup(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.channels[name]
	return h, ok
}

// All returns every handle in registration order.
func (r *Registry) All() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handle, 0, len(r.channels))
	for _, name := range r.order {
		out = append(out, r.channels[name])
	}
	return out
}

// Names returns the registered channel identifiers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ConnectedCount returns the number of handles whose transport is connected.
func (r *Registry) ConnectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, h := range r.channels {
		if h.Connected() {
			n++
		}
	}
	return n
}
