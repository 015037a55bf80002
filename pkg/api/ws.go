package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/benevolentsky/skybridge/pkg/bridge"
	"github.com/benevolentsky/skybridge/pkg/bus"
	"github.com/benevolentsky/skybridge/pkg/logger"
	"github.com/benevolentsky/skybridge/pkg/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers are anonymous viewers; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// systemEvent is the greeting sent to an observer on connect.
type systemEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// observerEvent is what observers may send us.
type observerEvent struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// WSClient is one connected observer.
type WSClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// deliver attempts a non-blocking handoff to the client's write pump.
// A closed or backed-up client is skipped, never waited on.
func (c *WSClient) deliver(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WSHub is the fan-out broadcaster: every chat event goes to every observer
// currently in the set. Delivery to one observer never blocks or affects
// delivery to the others.
type WSHub struct {
	bus *bus.Bus

	mu      sync.RWMutex
	clients map[string]*WSClient
}

func NewWSHub(b *bus.Bus) *WSHub {
	return &WSHub{
		bus:     b,
		clients: make(map[string]*WSClient),
	}
}

// Count returns the number of connected observers.
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastChat implements bridge.Broadcaster.
func (h *WSHub) BroadcastChat(ev bridge.ChatEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.broadcastRaw(data)
}

func (h *WSHub) broadcastRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.deliver(data) {
			telemetry.IncObserverDropped()
		}
	}
}

func (h *WSHub) add(c *WSClient) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	telemetry.SetObservers(n)
	logger.DebugCF("ws", "Observer connected", map[string]interface{}{"id": c.id, "observers": n})
}

func (h *WSHub) remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()
	c.close()
	telemetry.SetObservers(n)
	logger.DebugCF("ws", "Observer disconnected", map[string]interface{}{"id": c.id, "observers": n})
}

// HandleWebSocket upgrades the request and runs the observer's pumps.
func (h *WSHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorCF("ws", "WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := &WSClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.add(client)

	greeting, _ := json.Marshal(systemEvent{
		Type:      "system",
		Message:   "Connected to IRC bridge",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	client.deliver(greeting)

	go client.writePump()
	go h.readPump(client)
}

func (h *WSHub) readPump(c *WSClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleObserverEvent(c.id, data)
	}
}

// handleObserverEvent parses one observer message. Malformed input and
// unknown types are logged and dropped; the connection stays open.
func (h *WSHub) handleObserverEvent(clientID string, data []byte) {
	var ev observerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.WarnCF("ws", "Dropping malformed observer event", map[string]interface{}{
			"id":    clientID,
			"error": err.Error(),
		})
		return
	}

	switch ev.Type {
	case "join_channel":
		// Placeholder: observers already see all channels.
		logger.DebugCF("ws", "Ignoring join_channel", map[string]interface{}{"id": clientID})
	case "send_message":
		h.bus.PublishObserverSend(bus.ObserverSend{Channel: ev.Channel, Text: ev.Message})
	default:
		logger.WarnCF("ws", "Dropping observer event of unknown type", map[string]interface{}{
			"id":   clientID,
			"type": ev.Type,
		})
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
