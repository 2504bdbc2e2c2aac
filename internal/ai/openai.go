package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const openAIMaxTokens = 500

type OpenAIStrategy struct {
	BaseURL string
	Client  *http.Client
}

func NewOpenAIStrategy(baseURL string) *OpenAIStrategy {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIStrategy{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 45 * time.Second},
	}
}

type openAIMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatReq struct {
	Model     string      `json:"model"`
	Messages  []openAIMsg `json:"messages"`
	MaxTokens int         `json:"max_tokens"`
}

type openAIChatResp struct {
	Choices []struct {
		Message openAIMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *OpenAIStrategy) Name() string { return "openai" }

// The chat-completions API has no alternation constraint, so only the
// most recent turns are sent.
func (s *OpenAIStrategy) HistoryWindow() int { return 10 }

func (s *OpenAIStrategy) Candidates(preferred string) []string {
	return dedupeModels(preferred, "gpt-4o", "gpt-3.5-turbo")
}

func (s *OpenAIStrategy) FallbackError() string { return "Error processing response." }

// Fatal: connection failures and any error status other than 404 stop
// the chain; a 404 means "model not found, try the next one".
func (s *OpenAIStrategy) Fatal(err error) bool {
	ce, ok := err.(*CallError)
	if !ok {
		return true
	}
	if ce.Kind == KindConnection {
		return true
	}
	return ce.Status >= 400 && ce.Status != http.StatusNotFound
}

// buildOpenAIMessages produces the flat role/content list: a leading
// system entry followed by the history verbatim.
func buildOpenAIMessages(history []Message, instruction string) []openAIMsg {
	out := make([]openAIMsg, 0, len(history)+1)
	out = append(out, openAIMsg{Role: "system", Content: helpfulPrefix + instruction})
	for _, m := range history {
		out = append(out, openAIMsg{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *OpenAIStrategy) Chat(ctx context.Context, model string, history []Message, instruction, apiKey string) (string, error) {
	reqBody := openAIChatReq{
		Model:     model,
		Messages:  buildOpenAIMessages(history, instruction),
		MaxTokens: openAIMaxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &CallError{Kind: KindProvider, Message: err.Error()}
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(s.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", &CallError{Kind: KindProvider, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", &CallError{Kind: KindConnection, Message: err.Error()}
	}
	defer resp.Body.Close()

	var decoded openAIChatResp
	// A decode failure falls through to the status classification below.
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	if len(decoded.Choices) > 0 {
		return decoded.Choices[0].Message.Content, nil
	}

	msg := "Unknown"
	if decoded.Error != nil && decoded.Error.Message != "" {
		msg = decoded.Error.Message
	}
	return "", &CallError{Kind: KindProvider, Status: resp.StatusCode, Message: msg}
}
