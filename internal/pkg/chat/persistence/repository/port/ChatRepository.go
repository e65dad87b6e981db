package repository

import (
	"context"
	"errors"
	"time"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
)

// ErrNotFound is returned when a conversation or request does not exist.
var ErrNotFound = errors.New("repository: not found")

// ChatRepository defines persistence operations for the chat domain.
// The server remains the source of truth for history; clients only cache.
type ChatRepository interface {
	// CreateConversation persists the conversation and its participants and
	// returns the new id. For request conversations a pending message request
	// is created for requesterID and its id stored on the conversation.
	CreateConversation(ctx context.Context, c chat.Conversation, participants []chat.Participant, requesterID string) (string, error)

	GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]chat.Conversation, error)

	IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error)
	ListParticipants(ctx context.Context, conversationID string) ([]chat.Participant, error)

	// SaveMessage persists m letting the database assign id and timestamp and
	// returns the canonical row.
	SaveMessage(ctx context.Context, m chat.Message) (*chat.Message, error)

	// ListMessages returns messages in ascending creation order (render order).
	ListMessages(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error)

	GetMessageRequest(ctx context.Context, requestID string) (*chat.MessageRequest, error)

	// ResolveMessageRequest stores the verdict; accepting also flips the owning
	// conversation from request to direct.
	ResolveMessageRequest(ctx context.Context, requestID string, status chat.RequestStatus) error

	// UpdateConversationPreview maintains the denormalized last-message fields.
	UpdateConversationPreview(ctx context.Context, conversationID string, preview string, at time.Time) error
}
