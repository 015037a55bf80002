// Package telemetry provides Prometheus metrics for the bridge.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	MessagesInbound    prometheus.Counter
	MessagesFromWeb    prometheus.Counter
	RepliesSent        prometheus.Counter
	CompletionFailures prometheus.Counter
	FallbackReplies    prometheus.Counter
	ObserverDropped    prometheus.Counter

	// Gauges
	ObserverGauge     prometheus.Gauge
	IRCConnectedGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesInbound = promauto.NewCounter(prometheus.CounterOpts{Name: "bridge_irc_messages_total", Help: "Inbound IRC messages seen by the bridge"})
		MessagesFromWeb = promauto.NewCounter(prometheus.CounterOpts{Name: "bridge_web_messages_total", Help: "Observer-originated messages routed to IRC"})
		RepliesSent = promauto.NewCounter(prometheus.CounterOpts{Name: "bridge_replies_sent_total", Help: "Persona replies transmitted to IRC"})
		CompletionFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "bridge_completion_failures_total", Help: "Remote completion calls that failed"})
		FallbackReplies = promauto.NewCounter(prometheus.CounterOpts{Name: "bridge_fallback_replies_total", Help: "Replies taken from the scripted fallback list"})
		ObserverDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "bridge_observer_dropped_total", Help: "Broadcast deliveries skipped because an observer was not ready"})
		ObserverGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bridge_websocket_observers", Help: "Currently connected WebSocket observers"})
		IRCConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bridge_irc_connections", Help: "Currently connected IRC channels"})
	})
}

// SetObservers records the current observer count.
func SetObservers(n int) {
	if ObserverGauge != nil {
		ObserverGauge.Set(float64(n))
	}
}

// SetIRCConnections records the current connected channel count.
func SetIRCConnections(n int) {
	if IRCConnectedGauge != nil {
		IRCConnectedGauge.Set(float64(n))
	}
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// Safe increment helpers — metrics may be uninitialized in tests.
func IncInbound()            { inc(MessagesInbound) }
func IncFromWeb()            { inc(MessagesFromWeb) }
func IncReplies()            { inc(RepliesSent) }
func IncCompletionFailures() { inc(CompletionFailures) }
func IncFallbackReplies()    { inc(FallbackReplies) }
func IncObserverDropped()    { inc(ObserverDropped) }
