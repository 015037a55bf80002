package bus

import "time"

// InboundMessage is a line of chat arriving from an IRC channel. Direct marks
// a private message addressed to the transport's own nick; Channel then names
// the transport that received it, not where the text appeared.
type InboundMessage struct {
	Channel   string    `json:"channel"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Direct    bool      `json:"direct,omitempty"`
}

// ObserverSend is an observer-originated request to transmit text to a channel.
type ObserverSend struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Transport event types.
const (
	TransportJoin       = "join"
	TransportConnect    = "connect"
	TransportDisconnect = "disconnect"
)

// TransportEvent is a connection-level event from an IRC transport.
type TransportEvent struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Nick    string `json:"nick"`
}
