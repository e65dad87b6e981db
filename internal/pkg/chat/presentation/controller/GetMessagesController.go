package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	cacheport "github.com/harshit91796/unseen-Price/internal/infrastructure/cache/port"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/usecase"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetMessagesController handles the history fetch for one conversation
// (one controller per endpoint). The response bundles the messages in
// ascending creation order with the conversation metadata and, for a
// pending contact, the message request.
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool, cache cacheport.Cache) *GetMessagesController {
	repo := adapter.NewPgChatRepository(pool)
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(repo, cache)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		// Defaults
		limit := 50
		offset := 0

		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if limit > usecase.MaxHistoryPageSize {
			limit = usecase.MaxHistoryPageSize
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		msgs := make([]messagePayload, 0, len(out.Messages))
		for _, m := range out.Messages {
			msgs = append(msgs, toMessagePayload(m))
		}

		resp := gin.H{
			"conversation": toConversationPayload(out.Conversation),
			"messages":     msgs,
			"limit":        limit,
			"offset":       offset,
			"count":        len(msgs),
		}
		if out.Request != nil {
			resp["request"] = toRequestPayload(*out.Request)
		}

		c.JSON(http.StatusOK, resp)
	}
}
