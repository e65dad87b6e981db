package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	queueport "github.com/harshit91796/unseen-Price/internal/infrastructure/queue/port"
	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/task"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/usecase"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SendMessageController handles the send-message endpoint only (one controller per endpoint).
// The message is persisted synchronously so the canonical row, server id and
// timestamp included, goes back in the response; the conversation-list preview
// refresh is the only part that runs in the background.
type SendMessageController struct {
	UC     *usecase.SendMessageUseCase
	Q      queueport.Client
	Logger *zap.Logger
}

func NewSendMessageController(pool *pgxpool.Pool, client queueport.Client, logger *zap.Logger) *SendMessageController {
	repo := adapter.NewPgChatRepository(pool)
	return &SendMessageController{
		UC:     usecase.NewSendMessageUseCase(repo),
		Q:      client,
		Logger: logger,
	}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	SenderID   string  `json:"sender_id" binding:"required"`
	SenderName string  `json:"sender_name"`
	Body       *string `json:"body"`
	MediaKind  string  `json:"media_kind"`
	MediaURL   *string `json:"media_url"`
	ClientKey  *string `json:"client_key"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       req.SenderID,
			SenderName:     req.SenderName,
			Body:           req.Body,
			MediaKind:      chat.MediaKind(req.MediaKind),
			MediaURL:       req.MediaURL,
			ClientKey:      req.ClientKey,
		})
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
			case errors.Is(err, chat.ErrNotParticipant):
				c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		h.enqueuePreview(ctx, *msg)

		c.JSON(http.StatusCreated, gin.H{"message": toMessagePayload(*msg)})
	}
}

// enqueuePreview schedules the conversation-list preview refresh. Best-effort:
// a queue outage must not fail the send.
func (h *SendMessageController) enqueuePreview(ctx context.Context, msg chat.Message) {
	preview := ""
	if msg.Body != nil {
		preview = *msg.Body
	} else if msg.MediaURL != nil {
		preview = "[" + string(msg.MediaKind) + "]"
	}

	payload := task.ConversationPreviewPayload{
		ConversationID: msg.ConversationID,
		Preview:        preview,
		SentAt:         msg.CreatedAt,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}

	opts := queueport.EnqueueOption{Queue: "chat", MaxRetry: 5}
	if _, err := h.Q.Enqueue(ctx, queueport.Task{Type: task.ConversationPreviewTaskType, Payload: b}, opts); err != nil {
		h.Logger.Warn("preview refresh not enqueued",
			zap.String("conversation_id", msg.ConversationID), zap.Error(err))
	}
}
