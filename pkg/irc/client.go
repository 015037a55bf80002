// Package irc maintains one IRC connection per monitored channel. The
// initial connect retries until cancelled and the library redials later
// drops; beyond that this package only turns IRC callbacks into bus events
// and exposes a send path back to the channel.
package irc

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	"github.com/benevolentsky/skybridge/pkg/bus"
	"github.com/benevolentsky/skybridge/pkg/logger"
	"github.com/benevolentsky/skybridge/pkg/persona"
)

const (
	reconnectFreq = 30 * time.Second

	// pulseChance is the fraction of heartbeat ticks that produce output.
	pulseChance = 0.1
)

// Client is the transport handle for a single channel. It implements
// bridge.Handle.
type Client struct {
	channel   string
	p         *persona.Persona
	bus       *bus.Bus
	conn      *ircevent.Connection
	connected atomic.Bool

	// nick overrides p.Name as the IRC nickname when non-empty.
	nick string

	// heartbeat > 0 enables ambient persona pulses on an interval.
	heartbeat time.Duration

	// dial and retryDelay govern the initial connect; tests replace them.
	dial       func() error
	retryDelay time.Duration
	random     func() float64
}

// Option configures a Client.
type Option func(*Client)

// WithHeartbeat enables ambient persona announcements every interval.
func WithHeartbeat(interval time.Duration) Option {
	return func(c *Client) { c.heartbeat = interval }
}

// WithNick overrides the persona display name as the IRC nickname.
func WithNick(nick string) Option {
	return func(c *Client) { c.nick = nick }
}

// NewClient creates a transport for one channel bound to one persona. The
// connection is not established until Run is called.
func NewClient(server string, port int, channel string, p *persona.Persona, b *bus.Bus, opts ...Option) *Client {
	c := &Client{
		channel: channel,
		p:       p,
		bus:     b,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.nick == "" {
		c.nick = p.Name
	}
	c.retryDelay = reconnectFreq
	c.random = rand.Float64

	conn := &ircevent.Connection{
		Server:        fmt.Sprintf("%s:%d", server, port),
		Nick:          c.nick,
		User:          "skybridge",
		RealName:      p.Name,
		ReconnectFreq: reconnectFreq,
		QuitMessage:   "bridge going offline",
	}

	conn.AddConnectCallback(func(e ircmsg.Message) {
		c.connected.Store(true)
		logger.InfoCF("irc", "Connected", map[string]interface{}{
			"server":  conn.Server,
			"channel": c.channel,
			"nick":    conn.CurrentNick(),
		})
		b.PublishTransport(bus.TransportEvent{Type: bus.TransportConnect, Channel: c.channel, Nick: conn.CurrentNick()})
		if err := conn.Join(c.channel); err != nil {
			logger.ErrorCF("irc", "Join failed", map[string]interface{}{
				"channel": c.channel,
				"error":   err.Error(),
			})
		}
	})

	conn.AddDisconnectCallback(func(e ircmsg.Message) {
		c.connected.Store(false)
		logger.WarnCF("irc", "Disconnected", map[string]interface{}{
			"channel": c.channel,
		})
		b.PublishTransport(bus.TransportEvent{Type: bus.TransportDisconnect, Channel: c.channel})
	})

	conn.AddCallback("JOIN", func(e ircmsg.Message) {
		if len(e.Params) == 0 || e.Params[0] != c.channel {
			return
		}
		b.PublishTransport(bus.TransportEvent{
			Type:    bus.TransportJoin,
			Channel: c.channel,
			Nick:    nickOf(e.Source),
		})
	})

	conn.AddCallback("PRIVMSG", func(e ircmsg.Message) {
		if len(e.Params) < 2 {
			return
		}
		switch e.Params[0] {
		case c.channel:
			b.PublishInbound(bus.InboundMessage{
				Channel:   c.channel,
				Sender:    nickOf(e.Source),
				Text:      e.Params[1],
				Timestamp: time.Now().UTC(),
			})
		case conn.CurrentNick():
			// Addressed to our nick: a private consultation, answered
			// privately.
			b.PublishInbound(bus.InboundMessage{
				Channel:   c.channel,
				Sender:    nickOf(e.Source),
				Text:      e.Params[1],
				Timestamp: time.Now().UTC(),
				Direct:    true,
			})
		}
	})

	c.conn = conn
	c.dial = conn.Connect
	return c
}

// Run connects and processes IRC traffic until ctx is cancelled. A failed
// initial connect is retried indefinitely on the reconnect interval; drops
// after a successful connect are redialed by the library.
func (c *Client) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.conn.Quit()
	}()

	if c.heartbeat > 0 {
		go c.pulseLoop(ctx)
	}

	for {
		err := c.dial()
		if err == nil {
			break
		}
		logger.WarnCF("irc", "Connect failed, retrying", map[string]interface{}{
			"server":  c.conn.Server,
			"channel": c.channel,
			"retry":   c.retryDelay.String(),
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.retryDelay):
		}
	}
	c.conn.Loop()
	return nil
}

// pulseLoop occasionally sends an ambient persona line to keep quiet
// channels alive. Only a small fraction of ticks produce output.
func (c *Client) pulseLoop(ctx context.Context) {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.connected.Load() {
				continue
			}
			if line, ok := pickPulse(c.p.Pulses, c.random); ok {
				c.Send(line)
			}
		}
	}
}

// pickPulse decides whether a heartbeat tick produces an ambient line, and
// which one. Most ticks stay silent.
func pickPulse(pulses []string, random func() float64) (string, bool) {
	if len(pulses) == 0 || random() >= pulseChance {
		return "", false
	}
	idx := int(random() * float64(len(pulses)))
	if idx >= len(pulses) {
		idx = len(pulses) - 1
	}
	return pulses[idx], true
}

// Name returns the channel identifier.
func (c *Client) Name() string { return c.channel }

// Persona returns the identity bound to this channel.
func (c *Client) Persona() *persona.Persona { return c.p }

// Connected reports the transport connection state.
func (c *Client) Connected() bool { return c.connected.Load() }

// Nick returns the connection's current nickname, falling back to the
// configured nickname before the first connect.
func (c *Client) Nick() string {
	if nick := c.conn.CurrentNick(); nick != "" {
		return nick
	}
	return c.nick
}

// Send transmits text to the channel. Failures are logged, not returned —
// the transport's reconnect policy is the only recovery.
func (c *Client) Send(text string) { c.SendTo(c.channel, text) }

// SendTo transmits text to an arbitrary target, e.g. a private reply to a
// nick.
func (c *Client) SendTo(target, text string) {
	if err := c.conn.Privmsg(target, text); err != nil {
		logger.ErrorCF("irc", "Send failed", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
	}
}

// nickOf extracts the nickname from an IRC source prefix (nick!user@host).
func nickOf(source string) string {
	if i := strings.IndexByte(source, '!'); i >= 0 {
		return source[:i]
	}
	return source
}
