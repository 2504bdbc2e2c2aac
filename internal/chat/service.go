package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/goaccelovate/ai-chat-backend/internal/ai"
	"github.com/goaccelovate/ai-chat-backend/internal/settings"
)

// ErrMissingFields rejects a pre-chat form without name or email.
var ErrMissingFields = errors.New("name and email are required")

type Service struct {
	repo     *Repo
	registry *ai.Registry
}

func NewService(repo *Repo, registry *ai.Registry) *Service {
	return &Service{repo: repo, registry: registry}
}

func (s *Service) CreateSession(ctx context.Context, name, email, purpose, phone string) (*Conversation, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}

	sid, err := NewSessionID()
	if err != nil {
		return nil, err
	}

	conv := &Conversation{
		SessionID: sid,
		Name:      name,
		Email:     email,
		Purpose:   strings.TrimSpace(purpose),
		Phone:     strings.TrimSpace(phone),
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// SendMessage appends the visitor's message, produces a reply and appends
// it as the assistant turn. The reply is always a string: an exact-reply
// hit, provider text, or the rendered text of the last provider error.
// There is deliberately no transaction spanning the two writes; a crash
// between them just leaves a one-sided exchange in the history.
func (s *Service) SendMessage(ctx context.Context, cfg settings.Chat, sessionID, content string) (string, error) {
	if _, err := s.repo.GetConversationBySessionID(ctx, sessionID); err != nil {
		return "", err
	}

	if err := s.repo.InsertMessage(ctx, &Message{
		SessionID: sessionID,
		Role:      "user",
		Content:   content,
	}); err != nil {
		return "", err
	}

	reply, err := s.resolveReply(ctx, cfg, sessionID, content)
	if err != nil {
		return "", err
	}

	if err := s.repo.InsertMessage(ctx, &Message{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   reply,
	}); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Service) resolveReply(ctx context.Context, cfg settings.Chat, sessionID, content string) (string, error) {
	// Canned answers win before any provider quota is spent.
	rule, err := s.repo.LookupExactReply(ctx, content)
	if err != nil {
		return "", err
	}
	if rule != nil {
		return rule.Answer, nil
	}

	strategy, err := s.registry.Get(cfg.Provider)
	if err != nil {
		return "", err
	}

	if cfg.ActiveKey() == "" {
		return keyMissingReply(strategy.Name()), nil
	}

	history, err := s.providerHistory(ctx, sessionID, strategy.HistoryWindow())
	if err != nil {
		return "", err
	}

	return ai.Resolve(ctx, strategy, cfg.ActiveModel(), history, cfg.Instruction, cfg.ActiveKey()), nil
}

// providerHistory loads the turns fed to a provider: the most recent
// window reversed back to chronological order, or the full history when
// window is 0. The just-inserted user message is part of it.
func (s *Service) providerHistory(ctx context.Context, sessionID string, window int) ([]ai.Message, error) {
	if window > 0 {
		recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, sessionID, window)
		if err != nil {
			return nil, err
		}
		out := make([]ai.Message, 0, len(recentDesc))
		for i := len(recentDesc) - 1; i >= 0; i-- {
			out = append(out, ai.Message{Role: recentDesc[i].Role, Content: recentDesc[i].Content})
		}
		return out, nil
	}

	msgs, err := s.repo.ListMessagesAsc(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func keyMissingReply(provider string) string {
	if provider == "gemini" {
		return "Error: Gemini API key not configured."
	}
	return "Error: OpenAI API key not configured."
}

// LoadHistory returns the ordered history for a known session; an
// unknown session is an error, an empty history is not.
func (s *Service) LoadHistory(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := s.repo.GetConversationBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessagesAsc(ctx, sessionID)
}

func (s *Service) ListConversations(ctx context.Context, limit int) ([]Conversation, error) {
	return s.repo.ListConversations(ctx, limit)
}

// GetMessages is the admin view of a conversation; unlike LoadHistory it
// does not require the session row to still exist.
func (s *Service) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	return s.repo.ListMessagesAsc(ctx, sessionID)
}

func (s *Service) DeleteConversation(ctx context.Context, sessionID string) error {
	return s.repo.DeleteConversation(ctx, sessionID)
}

func (s *Service) UpsertExactReply(ctx context.Context, question, answer string) (*ExactReply, error) {
	return s.repo.UpsertExactReply(ctx, question, answer)
}

func (s *Service) DeleteExactReply(ctx context.Context, id uint64) error {
	return s.repo.DeleteExactReply(ctx, id)
}

func (s *Service) ListExactReplies(ctx context.Context) ([]ExactReply, error) {
	return s.repo.ListExactReplies(ctx)
}
