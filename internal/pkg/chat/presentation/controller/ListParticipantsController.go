package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/usecase"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListParticipantsController handles the participant-list endpoint
// (one controller per endpoint).
type ListParticipantsController struct {
	UC *usecase.ListParticipantsUseCase
}

func NewListParticipantsController(pool *pgxpool.Pool) *ListParticipantsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListParticipantsController{UC: usecase.NewListParticipantsUseCase(repo)}
}

func (h *ListParticipantsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		participants, err := h.UC.Execute(ctx, usecase.ListParticipantsInput{ConversationID: conversationID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(participants))
		for _, p := range participants {
			out = append(out, gin.H{
				"user_id":      p.UserID,
				"display_name": p.DisplayName,
				"role":         p.Role,
			})
		}
		c.JSON(http.StatusOK, gin.H{"participants": out, "count": len(out)})
	}
}
