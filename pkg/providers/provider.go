// Package providers integrates remote completion backends. The bridge only
// needs single-turn completions: one system prompt (the persona), one user
// message (the raw channel line).
package providers

import "context"

// Completer produces a reply for a single inbound message. Implementations
// return an error on any transport or API failure; callers are expected to
// degrade to scripted fallbacks, never to propagate.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
