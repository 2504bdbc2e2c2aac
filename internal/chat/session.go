package chat

import "github.com/goaccelovate/ai-chat-backend/internal/common"

// NewSessionID builds an opaque, unguessable visitor session token.
func NewSessionID() (string, error) {
	id, err := common.NewULID()
	if err != nil {
		return "", err
	}
	return "chat_" + id, nil
}
