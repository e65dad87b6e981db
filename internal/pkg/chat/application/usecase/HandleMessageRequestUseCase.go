package usecase

import (
	"context"
	"errors"
	"fmt"

	cacheport "github.com/harshit91796/unseen-Price/internal/infrastructure/cache/port"
	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// HandleMessageRequestInput resolves a pending message request.
// Verdict is "accept" or "decline".
type HandleMessageRequestInput struct {
	RequestID string
	UserID    string
	Verdict   string
}

// HandleMessageRequestUseCase applies the recipient's verdict. Accepting
// flips the owning conversation from request to direct; either way the cached
// conversation metadata is invalidated.
type HandleMessageRequestUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
}

func NewHandleMessageRequestUseCase(repo repository.ChatRepository, cache cacheport.Cache) *HandleMessageRequestUseCase {
	return &HandleMessageRequestUseCase{Repo: repo, Cache: cache}
}

func (uc *HandleMessageRequestUseCase) Execute(ctx context.Context, in HandleMessageRequestInput) (*chat.MessageRequest, error) {
	if in.RequestID == "" || in.UserID == "" {
		return nil, fmt.Errorf("requestId and userId are required")
	}

	var status chat.RequestStatus
	switch in.Verdict {
	case "accept":
		status = chat.RequestAccepted
	case "decline":
		status = chat.RequestDeclined
	default:
		return nil, chat.ErrBadRequestVerdict
	}

	req, err := uc.Repo.GetMessageRequest(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := req.Resolve(status, in.UserID); err != nil {
		return nil, err
	}

	if err := uc.Repo.ResolveMessageRequest(ctx, in.RequestID, status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		_, _ = uc.Cache.Del(ctx, conversationCacheKey(req.ConversationID))
	}
	return req, nil
}
