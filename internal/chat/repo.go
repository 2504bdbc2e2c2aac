package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) GetConversationBySessionID(ctx context.Context, sessionID string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns the newest conversations first.
func (r *Repo) ListConversations(ctx context.Context, limit int) ([]Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var convs []Conversation
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

// DeleteConversation removes a conversation and all its messages in one
// transaction.
func (r *Repo) DeleteConversation(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).Delete(&Conversation{}).Error
	})
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessagesAsc returns the full history oldest -> newest. Insertion
// order breaks timestamp ties.
func (r *Repo) ListMessagesAsc(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListRecentMessagesDesc returns the most recent messages newest -> oldest.
// Callers reverse back to chronological order before building a provider
// request.
func (r *Repo) ListRecentMessagesDesc(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// LookupExactReply returns the newest rule matching the normalized
// question text, or nil when no rule matches.
func (r *Repo) LookupExactReply(ctx context.Context, question string) (*ExactReply, error) {
	var er ExactReply
	err := r.db.WithContext(ctx).
		Where("question = ?", NormalizeQuestion(question)).
		Order("id DESC").
		First(&er).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &er, nil
}

func (r *Repo) ListExactReplies(ctx context.Context) ([]ExactReply, error) {
	var rules []ExactReply
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// UpsertExactReply creates a rule, or replaces the answer of an existing
// rule with the same normalized question. Read and write share one
// transaction so concurrent admin saves cannot race the unique index.
func (r *Repo) UpsertExactReply(ctx context.Context, question, answer string) (*ExactReply, error) {
	q := NormalizeQuestion(question)

	var er ExactReply
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("question = ?", q).First(&er).Error
		if err == nil {
			er.Answer = answer
			return tx.Save(&er).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		er = ExactReply{Question: q, Answer: answer}
		return tx.Create(&er).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &er, nil
}

func (r *Repo) DeleteExactReply(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&ExactReply{}, id).Error
}
