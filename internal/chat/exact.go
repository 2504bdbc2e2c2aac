package chat

import "strings"

// NormalizeQuestion prepares text for exact-reply matching: line endings
// are collapsed to LF and the whole string is trimmed. Matching stays
// case-sensitive.
func NormalizeQuestion(q string) string {
	q = strings.ReplaceAll(q, "\r\n", "\n")
	q = strings.ReplaceAll(q, "\r", "\n")
	return strings.TrimSpace(q)
}
