package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// ConversationMember pairs a user id with the display name stored on the
// participant row (user accounts live in a separate service).
type ConversationMember struct {
	UserID      string
	DisplayName string
}

// CreateConversationInput opens a new thread. Kind "request" marks a first
// contact that the other side still has to accept; RequesterID must then be
// one of the members.
type CreateConversationInput struct {
	Kind        chat.ConversationKind
	Members     []ConversationMember
	RequesterID string
}

// CreateConversationUseCase persists a conversation with its participants
// and, for request conversations, the pending message request.
type CreateConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateConversationUseCase(repo repository.ChatRepository) *CreateConversationUseCase {
	return &CreateConversationUseCase{Repo: repo}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*chat.Conversation, error) {
	if in.Kind == "" {
		in.Kind = chat.KindDirect
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("unknown conversation kind %q", in.Kind)
	}
	if len(in.Members) < 2 {
		return nil, fmt.Errorf("a conversation needs at least two members")
	}
	if in.Kind != chat.KindGroup && len(in.Members) != 2 {
		return nil, fmt.Errorf("%s conversations have exactly two members", in.Kind)
	}
	if in.Kind == chat.KindRequest {
		if in.RequesterID == "" || !memberOf(in.Members, in.RequesterID) {
			return nil, fmt.Errorf("requester must be one of the members")
		}
	}

	now := time.Now().UTC()
	conv := chat.Conversation{Kind: in.Kind, CreatedAt: now}

	participants := make([]chat.Participant, 0, len(in.Members))
	for i, m := range in.Members {
		if m.UserID == "" {
			continue
		}
		role := chat.ParticipantRoleMember
		if in.Kind == chat.KindGroup && i == 0 {
			role = chat.ParticipantRoleOwner
		}
		participants = append(participants, chat.Participant{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Role:        role,
		})
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("a conversation needs at least two members")
	}

	id, err := uc.Repo.CreateConversation(ctx, conv, participants, in.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.ID = id
	return &conv, nil
}

func memberOf(members []ConversationMember, userID string) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
