// Package reply decides whether a persona answers an inbound message and
// produces the reply text. The decision is probabilistic: messages containing
// one of the persona's trigger substrings reply at a higher probability than
// general chatter. Generation prefers the remote completion backend and
// degrades to the persona's scripted fallback list on any failure.
package reply

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/benevolentsky/skybridge/pkg/logger"
	"github.com/benevolentsky/skybridge/pkg/persona"
	"github.com/benevolentsky/skybridge/pkg/providers"
	"github.com/benevolentsky/skybridge/pkg/telemetry"
)

const (
	triggerProbability = 0.7
	baseProbability    = 0.2

	// lengthConstraint is appended to every persona soul so replies fit an
	// IRC line.
	lengthConstraint = "Keep responses under 200 characters."

	minDelay = 1000 * time.Millisecond
	maxDelay = 3000 * time.Millisecond
)

// Engine is the reply decision engine. The random source is injectable so
// tests can pin outcomes; the zero source is math/rand.
type Engine struct {
	completer providers.Completer // nil means fallback-only mode
	random    func() float64
}

// NewEngine creates an engine. completer may be nil, in which case every
// reply comes from the persona's fallback list.
func NewEngine(completer providers.Completer) *Engine {
	return &Engine{
		completer: completer,
		random:    rand.Float64,
	}
}

// SetRandom replaces the uniform [0,1) random source. Tests use this to make
// decisions and fallback selection deterministic.
func (e *Engine) SetRandom(fn func() float64) {
	e.random = fn
}

// ShouldReply decides whether the persona answers the given message text.
func (e *Engine) ShouldReply(p *persona.Persona, text string) bool {
	threshold := baseProbability
	for _, trigger := range p.Triggers {
		if strings.Contains(text, trigger) {
			threshold = triggerProbability
			break
		}
	}
	return e.random() < threshold
}

// ComposeReply produces the reply text for a message the engine decided to
// answer. It returns false only when no text could be produced at all (no
// backend and an empty fallback list) — a silent no-op for the caller.
func (e *Engine) ComposeReply(ctx context.Context, p *persona.Persona, text string) (string, bool) {
	if e.completer != nil {
		system := p.Soul + "\n\n" + lengthConstraint
		out, err := e.completer.Complete(ctx, system, text)
		if err == nil {
			return out, true
		}
		telemetry.IncCompletionFailures()
		logger.WarnCF("reply", "Completion failed, using fallback", map[string]interface{}{
			"persona": p.Name,
			"error":   err.Error(),
		})
	}

	if len(p.Fallbacks) == 0 {
		return "", false
	}
	telemetry.IncFallbackReplies()
	idx := int(e.random() * float64(len(p.Fallbacks)))
	if idx >= len(p.Fallbacks) {
		idx = len(p.Fallbacks) - 1
	}
	return p.Fallbacks[idx], true
}

// Delay returns the artificial response latency for a reply, uniform over
// [1000ms, 3000ms).
func (e *Engine) Delay() time.Duration {
	return minDelay + time.Duration(e.random()*float64(maxDelay-minDelay))
}
