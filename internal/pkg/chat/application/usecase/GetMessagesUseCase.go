package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/harshit91796/unseen-Price/internal/infrastructure/cache/port"
	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesInput carries parameters for a conversation history fetch.
type GetMessagesInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// GetMessagesOutput is the full history payload: messages in ascending
// creation order plus the conversation metadata and, for temporary
// conversations, the pending request.
type GetMessagesOutput struct {
	Conversation chat.Conversation
	Messages     []chat.Message
	Request      *chat.MessageRequest
}

const conversationCacheTTL = 5 * time.Minute

// MaxHistoryPageSize caps one history page; larger requests are clamped so a
// single call cannot walk an entire conversation.
const MaxHistoryPageSize = 200

// GetMessagesUseCase fetches history for a conversation. Conversation
// metadata is cached; a cache failure falls through to the repository.
type GetMessagesUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
}

func NewGetMessagesUseCase(repo repository.ChatRepository, cache cacheport.Cache) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo, Cache: cache}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) (*GetMessagesOutput, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversationId is required")
	}
	if in.Limit > MaxHistoryPageSize {
		in.Limit = MaxHistoryPageSize
	}

	conv, err := uc.loadConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	out := &GetMessagesOutput{Conversation: *conv, Messages: msgs}

	if conv.IsTemporary() && conv.RequestID != nil {
		req, err := uc.Repo.GetMessageRequest(ctx, *conv.RequestID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		out.Request = req
	}

	return out, nil
}

func (uc *GetMessagesUseCase) loadConversation(ctx context.Context, conversationID string) (*chat.Conversation, error) {
	key := conversationCacheKey(conversationID)

	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var conv chat.Conversation
			if json.Unmarshal([]byte(raw), &conv) == nil {
				return &conv, nil
			}
		}
	}

	conv, err := uc.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(conv); err == nil {
			// best-effort; a failed Set only costs the next read a DB trip
			_ = uc.Cache.Set(ctx, key, string(raw), conversationCacheTTL)
		}
	}
	return conv, nil
}
