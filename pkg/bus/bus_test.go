package bus

import (
	"testing"
	"time"
)

func TestPublishConsumeInbound(t *testing.T) {
	b := New()
	defer b.Close()

	msg := InboundMessage{Channel: "#philosophy", Sender: "alice", Text: "hello", Timestamp: time.Now()}
	b.PublishInbound(msg)

	select {
	case got := <-b.Inbound():
		if got.Channel != "#philosophy" || got.Sender != "alice" || got.Text != "hello" {
			t.Errorf("unexpected message: %+v", got)
		}
	default:
		t.Fatal("expected a queued inbound message")
	}
}

func TestPublishDropsOldestWhenFull(t *testing.T) {
	b := New()
	defer b.Close()

	for i := 0; i < queueDepth+1; i++ {
		b.PublishObserverSend(ObserverSend{Channel: "#c", Text: string(rune('a' + i%26))})
	}

	// The first entry ("a") was dropped; the queue still holds queueDepth items.
	if got := len(b.observer); got != queueDepth {
		t.Fatalf("expected %d queued sends, got %d", queueDepth, got)
	}
	first := <-b.ObserverSends()
	if first.Text != "b" {
		t.Errorf("expected oldest entry dropped, head is %q", first.Text)
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	b := New()
	b.Close()

	// Must not panic on a closed bus.
	b.PublishInbound(InboundMessage{Channel: "#c"})
	b.PublishTransport(TransportEvent{Type: TransportJoin})
	b.Close() // double close is safe
}

func TestTransportEvents(t *testing.T) {
	b := New()
	defer b.Close()

	b.PublishTransport(TransportEvent{Type: TransportJoin, Channel: "#c", Nick: "Sage"})
	ev := <-b.Transport()
	if ev.Type != TransportJoin || ev.Nick != "Sage" {
		t.Errorf("unexpected event: %+v", ev)
	}
}
