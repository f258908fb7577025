package generate

import "context"

// Completer produces a text completion for a system/user prompt pair. A
// nil Completer means the service runs in deterministic mode and every
// generator falls back to its extractive path.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// complete wraps a Completer call, collapsing nil completers and errors
// into an empty string so callers only branch once.
func complete(ctx context.Context, completer Completer, systemPrompt, userPrompt string, temperature float32) string {
	if completer == nil {
		return ""
	}
	response, err := completer.Complete(ctx, systemPrompt, userPrompt, temperature)
	if err != nil {
		return ""
	}
	return response
}
