package reply

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benevolentsky/skybridge/pkg/persona"
)

func testPersona() *persona.Persona {
	return &persona.Persona{
		Name:      "Sage",
		Soul:      "You are a patient philosopher.",
		Fallbacks: []string{"A", "B", "C"},
		Triggers:  []string{"?", "meaning"},
	}
}

func fixedRandom(v float64) func() float64 {
	return func() float64 { return v }
}

// sequenceRandom returns the given values in order, repeating the last one.
func sequenceRandom(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

type failingCompleter struct{}

func (failingCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("remote endpoint unavailable")
}

type fixedCompleter struct{ text string }

func (c fixedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return c.text, nil
}

func TestShouldReplyThresholds(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		random float64
		want   bool
	}{
		{"trigger below threshold", "what is the meaning of this?", 0.5, true},
		{"trigger above threshold", "what is the meaning of this?", 0.8, false},
		{"no trigger below threshold", "just passing through", 0.1, true},
		{"no trigger above threshold", "just passing through", 0.3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(nil)
			e.SetRandom(fixedRandom(tt.random))
			if got := e.ShouldReply(testPersona(), tt.text); got != tt.want {
				t.Errorf("ShouldReply(%q) with random %v = %v, want %v", tt.text, tt.random, got, tt.want)
			}
		})
	}
}

func TestTriggersAreCaseSensitive(t *testing.T) {
	p := testPersona()
	e := NewEngine(nil)

	// 0.5 sits between the two thresholds: reply only if a trigger matched.
	e.SetRandom(fixedRandom(0.5))
	if e.ShouldReply(p, "the MEANING of life") {
		t.Error("uppercase text must not match a lowercase trigger")
	}
	if !e.ShouldReply(p, "the meaning of life") {
		t.Error("exact substring must match")
	}
}

func TestFallbackSelectionIsDeterministic(t *testing.T) {
	p := testPersona()
	e := NewEngine(nil)

	for i := 0; i < 3; i++ {
		e.SetRandom(fixedRandom(0.5)) // index 1 of 3
		got, ok := e.ComposeReply(context.Background(), p, "hello")
		if !ok || got != "B" {
			t.Errorf("run %d: got (%q, %v), want (\"B\", true)", i, got, ok)
		}
	}
}

func TestFailingCompleterAlwaysFallsBack(t *testing.T) {
	p := testPersona()
	e := NewEngine(failingCompleter{})
	e.SetRandom(fixedRandom(0.0))

	for i := 0; i < 10; i++ {
		got, ok := e.ComposeReply(context.Background(), p, "anything")
		if !ok || got == "" {
			t.Fatalf("reply path must resolve to a non-empty fallback, got (%q, %v)", got, ok)
		}
		if got != "A" {
			t.Errorf("expected fallback index 0 (\"A\"), got %q", got)
		}
	}
}

func TestSuccessfulCompletionWins(t *testing.T) {
	e := NewEngine(fixedCompleter{text: "a considered answer"})
	e.SetRandom(fixedRandom(0.0))
	got, ok := e.ComposeReply(context.Background(), testPersona(), "hm")
	if !ok || got != "a considered answer" {
		t.Errorf("got (%q, %v), want completion text", got, ok)
	}
}

func TestEmptyFallbacksIsSilentNoop(t *testing.T) {
	p := &persona.Persona{Name: "Mute", Triggers: []string{"?"}}
	e := NewEngine(nil)
	e.SetRandom(fixedRandom(0.0))

	got, ok := e.ComposeReply(context.Background(), p, "hello?")
	if ok || got != "" {
		t.Errorf("expected silent no-op, got (%q, %v)", got, ok)
	}
}

func TestDelayRange(t *testing.T) {
	e := NewEngine(nil)

	e.SetRandom(fixedRandom(0.0))
	if d := e.Delay(); d != 1000*time.Millisecond {
		t.Errorf("minimum delay: got %v, want 1s", d)
	}

	e.SetRandom(fixedRandom(0.999))
	if d := e.Delay(); d < 1000*time.Millisecond || d >= 3000*time.Millisecond {
		t.Errorf("delay %v outside [1s, 3s)", d)
	}
}

func TestEndToEndDecisionScenario(t *testing.T) {
	// Message containing "?" from a non-persona sender: the random source
	// yields 0.4 for the decision (below the 0.7 trigger threshold), then 0
	// for fallback selection, which picks "A".
	p := &persona.Persona{Name: "P", Fallbacks: []string{"A", "B"}, Triggers: []string{"?"}}
	e := NewEngine(nil)
	e.SetRandom(sequenceRandom(0.4, 0.0))

	if !e.ShouldReply(p, "does consciousness persist?") {
		t.Fatal("decision should be yes at 0.4 < 0.7")
	}
	got, ok := e.ComposeReply(context.Background(), p, "does consciousness persist?")
	if !ok || got != "A" {
		t.Errorf("got (%q, %v), want (\"A\", true)", got, ok)
	}
}
