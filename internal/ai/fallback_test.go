package ai

import (
	"context"
	"testing"
)

// scriptedStrategy returns one scripted outcome per candidate, in order.
type scriptedStrategy struct {
	outcomes []scriptedOutcome
	fatalAll bool
	calls    []string
}

type scriptedOutcome struct {
	text string
	err  *CallError
}

func (s *scriptedStrategy) Name() string          { return "scripted" }
func (s *scriptedStrategy) HistoryWindow() int    { return 0 }
func (s *scriptedStrategy) FallbackError() string { return "Unknown error" }

func (s *scriptedStrategy) Candidates(preferred string) []string {
	out := make([]string, len(s.outcomes))
	for i := range s.outcomes {
		out[i] = preferred
	}
	return out
}

func (s *scriptedStrategy) Chat(ctx context.Context, model string, history []Message, instruction, apiKey string) (string, error) {
	i := len(s.calls)
	s.calls = append(s.calls, model)
	o := s.outcomes[i]
	if o.err != nil {
		return "", o.err
	}
	return o.text, nil
}

func (s *scriptedStrategy) Fatal(err error) bool { return s.fatalAll }

func TestResolve_FirstSuccessWins(t *testing.T) {
	s := &scriptedStrategy{outcomes: []scriptedOutcome{
		{err: &CallError{Kind: KindProvider, Status: 404, Message: "no such model"}},
		{text: "recovered"},
		{text: "never reached"},
	}}

	got := Resolve(context.Background(), s, "m", nil, "", "k")
	if got != "recovered" {
		t.Fatalf("unexpected reply %q", got)
	}
	if len(s.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(s.calls))
	}
}

func TestResolve_ExhaustedReturnsLastError(t *testing.T) {
	s := &scriptedStrategy{outcomes: []scriptedOutcome{
		{err: &CallError{Kind: KindProvider, Status: 500, Message: "first"}},
		{err: &CallError{Kind: KindConnection, Message: "timed out"}},
	}}

	got := Resolve(context.Background(), s, "m", nil, "", "k")
	if got != "Connection Error: timed out" {
		t.Fatalf("unexpected reply %q", got)
	}
	if len(s.calls) != 2 {
		t.Fatalf("expected full chain, got %d calls", len(s.calls))
	}
}

func TestResolve_FatalStopsChain(t *testing.T) {
	s := &scriptedStrategy{
		fatalAll: true,
		outcomes: []scriptedOutcome{
			{err: &CallError{Kind: KindProvider, Status: 401, Message: "bad key"}},
			{text: "never reached"},
		},
	}

	got := Resolve(context.Background(), s, "m", nil, "", "k")
	if got != "API Error: bad key" {
		t.Fatalf("unexpected reply %q", got)
	}
	if len(s.calls) != 1 {
		t.Fatalf("fatal error must stop the chain, got %d calls", len(s.calls))
	}
}

func TestDedupeModels(t *testing.T) {
	got := dedupeModels("a", "b", "a", "", "c", "b")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: want %q got %q", i, want[i], got[i])
		}
	}
}
