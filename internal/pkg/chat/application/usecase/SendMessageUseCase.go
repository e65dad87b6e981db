package usecase

import (
	"context"
	"fmt"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to persist a new message.
// ClientKey is the sender's provisional id; it is stored and echoed back in
// the broadcast so the sending session can reconcile its optimistic entry.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	SenderName     string
	Body           *string
	MediaKind      chat.MediaKind
	MediaURL       *string
	ClientKey      *string
}

// SendMessageUseCase persists one message after membership and content checks.
// The socket layer never persists; this is the only write path for messages.
type SendMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

// Execute validates and persists the message, returning the canonical row
// with its server-assigned id and timestamp.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, fmt.Errorf("conversationId and senderId are required")
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		SenderName:     in.SenderName,
		Body:           in.Body,
		MediaKind:      in.MediaKind,
		MediaURL:       in.MediaURL,
		ClientKey:      in.ClientKey,
	})
	if err != nil {
		return nil, err
	}

	saved, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return saved, nil
}
