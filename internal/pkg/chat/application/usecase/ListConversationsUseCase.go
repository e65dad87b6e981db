package usecase

import (
	"context"
	"fmt"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsInput wraps the user whose threads are listed.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the user's conversations, most recently
// active first, with their denormalized last-message previews.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.Conversation, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("userId is required")
	}
	convs, err := uc.Repo.ListConversationsForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
