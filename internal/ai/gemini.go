package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GeminiStrategy struct {
	BaseURL string
	Client  *http.Client
}

func NewGeminiStrategy(baseURL string) *GeminiStrategy {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiStrategy{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenReq struct {
	Contents          []geminiContent       `json:"contents"`
	SystemInstruction geminiInstruction     `json:"systemInstruction"`
	SafetySettings    []geminiSafetySetting `json:"safetySettings"`
}

type geminiGenResp struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Static safety knobs, all at the least-restrictive blocking level.
var geminiSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
}

func (s *GeminiStrategy) Name() string { return "gemini" }

// The alternation rebuild needs the whole conversation.
func (s *GeminiStrategy) HistoryWindow() int { return 0 }

func (s *GeminiStrategy) Candidates(preferred string) []string {
	return dedupeModels(preferred, "gemini-2.0-flash", "gemini-1.5-flash")
}

func (s *GeminiStrategy) FallbackError() string { return "Unknown error" }

// Every failure, connection errors included, moves on to the next
// candidate model.
func (s *GeminiStrategy) Fatal(err error) bool { return false }

// buildGeminiContents rebuilds the history into the strictly alternating
// user/model turn list the API requires. Consecutive same-role turns are
// merged with a blank line, empty turns are dropped, a leading model
// turn is removed, and an empty result is replaced with a single "Hello"
// user turn so the request is always well-formed.
func buildGeminiContents(history []Message) []geminiContent {
	var contents []geminiContent
	for _, m := range history {
		role := "model"
		if m.Role == "user" {
			role = "user"
		}
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}

		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts[0].Text += "\n\n" + text
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: text}}})
	}

	if len(contents) > 0 && contents[0].Role == "model" {
		contents = contents[1:]
	}
	if len(contents) == 0 {
		contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: "Hello"}}})
	}
	return contents
}

func (s *GeminiStrategy) Chat(ctx context.Context, model string, history []Message, instruction, apiKey string) (string, error) {
	reqBody := geminiGenReq{
		Contents: buildGeminiContents(history),
		SystemInstruction: geminiInstruction{
			Parts: []geminiPart{{Text: helpfulPrefix + instruction + ". Be polite."}},
		},
		SafetySettings: geminiSafetySettings,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &CallError{Kind: KindProvider, Message: err.Error()}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.BaseURL, "/"), url.PathEscape(model), url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &CallError{Kind: KindProvider, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", &CallError{Kind: KindConnection, Message: err.Error()}
	}
	defer resp.Body.Close()

	var decoded geminiGenResp
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	if len(decoded.Candidates) > 0 && len(decoded.Candidates[0].Content.Parts) > 0 {
		return decoded.Candidates[0].Content.Parts[0].Text, nil
	}

	msg := "Unknown"
	if decoded.Error != nil && decoded.Error.Message != "" {
		msg = decoded.Error.Message
	}
	return "", &CallError{Kind: KindProvider, Status: resp.StatusCode, Message: msg}
}
