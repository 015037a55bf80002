package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benevolentsky/skybridge/pkg/bridge"
	"github.com/benevolentsky/skybridge/pkg/bus"
)

func addTestClient(h *WSHub, id string) *WSClient {
	c := &WSClient{id: id, send: make(chan []byte, 8)}
	h.add(c)
	return c
}

func TestBroadcastSkipsNonReadyObserver(t *testing.T) {
	b := bus.New()
	defer b.Close()
	h := NewWSHub(b)

	alive1 := addTestClient(h, "alive-1")
	alive2 := addTestClient(h, "alive-2")
	dead := addTestClient(h, "dead")
	dead.close()

	h.BroadcastChat(bridge.ChatEvent{
		Type: "irc_message", Channel: "#philosophy", Nick: "alice",
		Message: "hello", Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	for _, c := range []*WSClient{alive1, alive2} {
		select {
		case data := <-c.send:
			var ev bridge.ChatEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("%s: bad payload: %v", c.id, err)
			}
			if ev.Channel != "#philosophy" || ev.Nick != "alice" || ev.Message != "hello" {
				t.Errorf("%s: unexpected event %+v", c.id, ev)
			}
		default:
			t.Errorf("%s: expected delivery", c.id)
		}
	}
}

func TestBroadcastSkipsBackedUpObserver(t *testing.T) {
	b := bus.New()
	defer b.Close()
	h := NewWSHub(b)

	full := &WSClient{id: "full", send: make(chan []byte, 1)}
	full.send <- []byte("stuck")
	h.add(full)
	ok := addTestClient(h, "ok")

	h.BroadcastChat(bridge.ChatEvent{Type: "irc_message", Message: "x"})

	select {
	case <-ok.send:
	default:
		t.Error("healthy observer must still receive the event")
	}
	// The full observer keeps only its stuck message; nothing was queued.
	if len(full.send) != 1 {
		t.Errorf("backed-up observer queue length = %d, want 1", len(full.send))
	}
}

func TestObserverEventRouting(t *testing.T) {
	b := bus.New()
	defer b.Close()
	h := NewWSHub(b)

	h.handleObserverEvent("c1", []byte(`{"type":"send_message","channel":"#philosophy","message":"hi"}`))
	select {
	case send := <-b.ObserverSends():
		if send.Channel != "#philosophy" || send.Text != "hi" {
			t.Errorf("unexpected send: %+v", send)
		}
	default:
		t.Fatal("send_message should publish an observer send")
	}

	// join_channel is accepted and ignored; malformed and unknown input is
	// dropped. None of these may publish or panic.
	h.handleObserverEvent("c1", []byte(`{"type":"join_channel","channel":"#philosophy"}`))
	h.handleObserverEvent("c1", []byte(`{not json`))
	h.handleObserverEvent("c1", []byte(`{"type":"self_destruct"}`))

	select {
	case send := <-b.ObserverSends():
		t.Errorf("unexpected publish: %+v", send)
	default:
	}
}

func TestHubCount(t *testing.T) {
	b := bus.New()
	defer b.Close()
	h := NewWSHub(b)

	if h.Count() != 0 {
		t.Fatal("fresh hub should be empty")
	}
	c := addTestClient(h, "one")
	addTestClient(h, "two")
	if h.Count() != 2 {
		t.Errorf("count = %d, want 2", h.Count())
	}
	h.remove(c)
	if h.Count() != 1 {
		t.Errorf("count after remove = %d, want 1", h.Count())
	}
}
