package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildOpenAIMessages(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "how are you?"},
	}

	msgs := buildOpenAIMessages(history, "You work for Mario's Pizza.")

	if len(msgs) != len(history)+1 {
		t.Fatalf("expected %d entries, got %d", len(history)+1, len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("first entry must be system, got %q", msgs[0].Role)
	}
	if !strings.HasPrefix(msgs[0].Content, "You are a helpful assistant. ") {
		t.Fatalf("unexpected system content %q", msgs[0].Content)
	}
	for i, m := range history {
		if msgs[i+1].Role != m.Role || msgs[i+1].Content != m.Content {
			t.Fatalf("entry %d not mapped verbatim: %+v", i+1, msgs[i+1])
		}
	}
}

func TestOpenAICandidates_Dedupe(t *testing.T) {
	s := NewOpenAIStrategy("")

	got := s.Candidates("gpt-4o")
	want := []string{"gpt-4o", "gpt-3.5-turbo"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: want %q got %q", i, want[i], got[i])
		}
	}

	if got := s.Candidates("gpt-4"); len(got) != 3 || got[0] != "gpt-4" {
		t.Fatalf("unexpected chain %v", got)
	}
}

func TestOpenAIChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req openAIChatReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.MaxTokens != 500 {
			t.Errorf("expected max_tokens 500, got %d", req.MaxTokens)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "sure thing"}},
			},
		})
	}))
	defer srv.Close()

	s := NewOpenAIStrategy(srv.URL)
	got, err := s.Chat(context.Background(), "gpt-4", []Message{{Role: "user", Content: "hi"}}, "", "sk-test")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got != "sure thing" {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestOpenAIChat_Classification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		wantFatal bool
	}{
		{"model not found", 404, `{"error":{"message":"model does not exist"}}`, "model does not exist", false},
		{"bad key", 401, `{"error":{"message":"invalid api key"}}`, "invalid api key", true},
		{"rate limited", 429, `{"error":{"message":"rate limit"}}`, "rate limit", true},
		{"malformed success", 200, `{"unexpected":true}`, "Unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := NewOpenAIStrategy(srv.URL)
			_, err := s.Chat(context.Background(), "gpt-4", nil, "", "k")
			ce, ok := err.(*CallError)
			if !ok {
				t.Fatalf("expected *CallError, got %v", err)
			}
			if ce.Kind != KindProvider || ce.Message != tt.wantMsg {
				t.Fatalf("unexpected classification %+v", ce)
			}
			if s.Fatal(ce) != tt.wantFatal {
				t.Fatalf("Fatal(%d) = %v, want %v", tt.status, s.Fatal(ce), tt.wantFatal)
			}
		})
	}
}

func TestOpenAIChat_ConnectionErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := NewOpenAIStrategy(srv.URL)
	_, err := s.Chat(context.Background(), "gpt-4", nil, "", "k")
	ce, ok := err.(*CallError)
	if !ok || ce.Kind != KindConnection {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !s.Fatal(ce) {
		t.Fatal("openai connection errors must stop the chain")
	}
	if !strings.HasPrefix(ce.Error(), "Connection Error: ") {
		t.Fatalf("unexpected rendering %q", ce.Error())
	}
}
