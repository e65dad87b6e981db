package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/usecase"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateConversationController handles the conversation creation endpoint
// One controller per endpoint

type CreateConversationController struct {
	UC *usecase.CreateConversationUseCase
}

func NewCreateConversationController(pool *pgxpool.Pool) *CreateConversationController {
	repo := adapter.NewPgChatRepository(pool)
	return &CreateConversationController{UC: usecase.NewCreateConversationUseCase(repo)}
}

type conversationMemberRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

type createConversationRequest struct {
	Kind        string                      `json:"kind"`
	RequesterID string                      `json:"requester_id"`
	Members     []conversationMemberRequest `json:"members" binding:"required"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		members := make([]usecase.ConversationMember, 0, len(req.Members))
		for _, m := range req.Members {
			members = append(members, usecase.ConversationMember{
				UserID:      m.UserID,
				DisplayName: m.DisplayName,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateConversationInput{
			Kind:        chat.ConversationKind(req.Kind),
			Members:     members,
			RequesterID: req.RequesterID,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"conversation": toConversationPayload(*conv)})
	}
}
