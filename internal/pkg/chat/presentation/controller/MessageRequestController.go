package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	cacheport "github.com/harshit91796/unseen-Price/internal/infrastructure/cache/port"
	"github.com/harshit91796/unseen-Price/internal/infrastructure/realtime"
	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/application/usecase"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRequestController handles the accept/decline endpoint for a pending
// message request (one controller per endpoint).
type MessageRequestController struct {
	UC     *usecase.HandleMessageRequestUseCase
	Router *realtime.Router
}

func NewMessageRequestController(pool *pgxpool.Pool, cache cacheport.Cache, router *realtime.Router) *MessageRequestController {
	repo := adapter.NewPgChatRepository(pool)
	return &MessageRequestController{
		UC:     usecase.NewHandleMessageRequestUseCase(repo, cache),
		Router: router,
	}
}

type resolveRequestBody struct {
	UserID  string `json:"user_id" binding:"required"`
	Verdict string `json:"verdict" binding:"required"`
}

func (h *MessageRequestController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("requestId")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "requestId is required"})
			return
		}

		var body resolveRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		req, err := h.UC.Execute(ctx, usecase.HandleMessageRequestInput{
			RequestID: requestID,
			UserID:    body.UserID,
			Verdict:   body.Verdict,
		})
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			case errors.Is(err, chat.ErrRequestResolved):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve request"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		h.notifyRequester(*req)

		c.JSON(http.StatusOK, gin.H{"request": toRequestPayload(*req)})
	}
}

// notifyRequester pushes the verdict to the requester's live socket, if any.
// Offline requesters see the new state on their next history fetch.
func (h *MessageRequestController) notifyRequester(req chat.MessageRequest) {
	frame := gin.H{
		"type":            "request_resolved",
		"conversation_id": req.ConversationID,
		"request":         toRequestPayload(req),
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = h.Router.NotifyUser(req.SenderID, payload)
	}
}
