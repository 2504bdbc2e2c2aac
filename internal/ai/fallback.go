package ai

import "context"

// Resolve runs the strategy's fallback chain for a preferred model and
// always produces a reply string: the first successful response, or the
// last classified error rendered as text. The caller persists whatever
// comes back as the assistant turn, errors included.
func Resolve(ctx context.Context, s Strategy, preferred string, history []Message, instruction, apiKey string) string {
	last := s.FallbackError()
	for _, model := range s.Candidates(preferred) {
		text, err := s.Chat(ctx, model, history, instruction, apiKey)
		if err == nil {
			return text
		}
		last = err.Error()
		if s.Fatal(err) {
			break
		}
	}
	return last
}
