package ai

import (
	"context"
	"strings"
)

// Message is one role-tagged turn exchanged with a provider.
type Message struct {
	Role    string
	Content string
}

// ErrorKind classifies a failed provider call.
type ErrorKind int

const (
	// KindConnection covers transport failures: DNS, TLS, timeouts.
	KindConnection ErrorKind = iota
	// KindProvider covers error statuses and unrecognized response bodies.
	KindProvider
)

// CallError is the classified outcome of a single failed provider call.
// The rendered string is what ends up in the visitor's chat bubble when
// the whole fallback chain fails.
type CallError struct {
	Kind    ErrorKind
	Status  int // HTTP status; 0 for connection failures
	Message string
}

func (e *CallError) Error() string {
	if e.Kind == KindConnection {
		return "Connection Error: " + e.Message
	}
	return "API Error: " + e.Message
}

// helpfulPrefix opens every system/instruction prompt; the admin's custom
// instruction is appended to it.
const helpfulPrefix = "You are a helpful assistant. "

// Strategy bundles everything provider-specific: how much history to
// feed, how to build and send a request for one model, which models to
// fall back to, and which failures abort the chain.
type Strategy interface {
	Name() string

	// HistoryWindow is how many recent turns the provider receives.
	// 0 means the full conversation.
	HistoryWindow() int

	// Candidates builds the fallback chain for a preferred model:
	// preferred first, then the fixed fallbacks, de-duplicated with
	// first occurrence winning.
	Candidates(preferred string) []string

	// Chat performs one call against a single model. A non-nil error is
	// always a *CallError.
	Chat(ctx context.Context, model string, history []Message, instruction, apiKey string) (string, error)

	// Fatal reports whether err should abort the fallback chain instead
	// of moving on to the next candidate.
	Fatal(err error) bool

	// FallbackError is the reply used when the chain ends without a
	// classified error (an empty candidate list).
	FallbackError() string
}

func dedupeModels(models ...string) []string {
	seen := make(map[string]bool, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
