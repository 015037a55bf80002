package bridge

import (
	"context"
	"time"

	"github.com/benevolentsky/skybridge/pkg/bus"
	"github.com/benevolentsky/skybridge/pkg/logger"
	"github.com/benevolentsky/skybridge/pkg/persona"
	"github.com/benevolentsky/skybridge/pkg/reply"
	"github.com/benevolentsky/skybridge/pkg/telemetry"
)

// welcomeDelay is the fixed pause before the persona's join announcement.
const welcomeDelay = 3000 * time.Millisecond

// ChatEvent is the observer-facing representation of a channel message. It
// carries everything an observer needs to render the line without further
// queries.
type ChatEvent struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	Nick      string `json:"nick"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	IsAI      bool   `json:"isAI"`
}

// Broadcaster fans a chat event out to all connected observers.
type Broadcaster interface {
	BroadcastChat(ChatEvent)
}

// Coordinator consumes the bus queues in a single event loop and routes:
// inbound IRC messages to the broadcaster and reply engine, observer sends
// back to their channel, and transport join events to the welcome
// announcement.
type Coordinator struct {
	registry    *Registry
	personas    *persona.Set
	engine      *reply.Engine
	bus         *bus.Bus
	broadcaster Broadcaster

	// schedule defers fn by d; injectable so tests can run timers inline.
	schedule func(d time.Duration, fn func())
}

func NewCoordinator(reg *Registry, personas *persona.Set, engine *reply.Engine, b *bus.Bus, bc Broadcaster) *Coordinator {
	return &Coordinator{
		registry:    reg,
		personas:    personas,
		engine:      engine,
		bus:         b,
		broadcaster: bc,
		schedule:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// SetScheduler replaces the timer used for reply and welcome delays.
func (c *Coordinator) SetScheduler(fn func(time.Duration, func())) {
	c.schedule = fn
}

// Run consumes the bus until ctx is cancelled. All registry and routing
// decisions happen on this single goroutine; only the reply pipeline (which
// mutates nothing) runs concurrently.
func (c *Coordinator) Run(ctx context.Context) {
	logger.InfoC("bridge", "Coordinator started")
	for {
		select {
		case <-ctx.Done():
			logger.InfoC("bridge", "Coordinator stopped")
			return
		case msg, ok := <-c.bus.Inbound():
			if !ok {
				return
			}
			c.handleInbound(ctx, msg)
		case send, ok := <-c.bus.ObserverSends():
			if !ok {
				return
			}
			c.handleObserverSend(send)
		case ev, ok := <-c.bus.Transport():
			if !ok {
				return
			}
			c.handleTransport(ev)
		}
	}
}

func (c *Coordinator) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	telemetry.IncInbound()

	h, ok := c.registry.Lookup(msg.Channel)

	if msg.Direct {
		// Private consultation: never broadcast, answered privately.
		if ok {
			go c.consult(ctx, h, msg.Sender, msg.Text)
		}
		return
	}

	c.broadcaster.BroadcastChat(ChatEvent{
		Type:      "irc_message",
		Channel:   msg.Channel,
		Nick:      msg.Sender,
		Message:   msg.Text,
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
		IsAI:      c.personas.IsPersona(msg.Sender),
	})

	if !ok {
		return
	}
	if msg.Sender == h.Persona().Name || msg.Sender == h.Nick() {
		// Never react to the channel's own persona.
		return
	}

	// The decision pipeline must not block inbound processing.
	go c.maybeReply(ctx, h, msg.Text)
}

func (c *Coordinator) maybeReply(ctx context.Context, h Handle, text string) {
	p := h.Persona()
	if !c.engine.ShouldReply(p, text) {
		return
	}
	replyText, ok := c.engine.ComposeReply(ctx, p, text)
	if !ok {
		return
	}
	c.schedule(c.engine.Delay(), func() {
		h.Send(replyText)
		telemetry.IncReplies()
	})
}

// consult answers a private message addressed to the persona's nick. The
// decision policy only gates channel traffic; a direct question always gets a
// reply, sent back to the asker rather than the channel.
func (c *Coordinator) consult(ctx context.Context, h Handle, nick, text string) {
	replyText, ok := c.engine.ComposeReply(ctx, h.Persona(), text)
	if !ok {
		return
	}
	h.SendTo(nick, replyText)
	telemetry.IncReplies()
}

func (c *Coordinator) handleObserverSend(send bus.ObserverSend) {
	h, ok := c.registry.Lookup(send.Channel)
	if !ok {
		// Unknown target channel: silent no-op.
		logger.DebugCF("bridge", "Dropping send to unknown channel", map[string]interface{}{
			"channel": send.Channel,
		})
		return
	}
	telemetry.IncFromWeb()
	h.Send(send.Text)
}

func (c *Coordinator) handleTransport(ev bus.TransportEvent) {
	switch ev.Type {
	case bus.TransportJoin:
		h, ok := c.registry.Lookup(ev.Channel)
		if !ok {
			return
		}
		// Only the persona's own (re)join triggers the announcement.
		if ev.Nick != h.Nick() {
			return
		}
		welcome := h.Persona().Welcome
		if welcome == "" {
			return
		}
		c.schedule(welcomeDelay, func() { h.Send(welcome) })
	case bus.TransportConnect, bus.TransportDisconnect:
		telemetry.SetIRCConnections(c.registry.ConnectedCount())
	}
}
