package http

import (
	cacheport "github.com/harshit91796/unseen-Price/internal/infrastructure/cache/port"
	qport "github.com/harshit91796/unseen-Price/internal/infrastructure/queue/port"
	"github.com/harshit91796/unseen-Price/internal/infrastructure/realtime"
	storageport "github.com/harshit91796/unseen-Price/internal/infrastructure/storage/port"
	"github.com/harshit91796/unseen-Price/internal/pkg/chat/presentation/controller"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Deps bundles the shared infrastructure handed down to the chat endpoints.
type Deps struct {
	Pool           *pgxpool.Pool
	Cache          cacheport.Cache
	Queue          qport.Client
	Router         *realtime.Router
	Store          storageport.ObjectStore
	Logger         *zap.Logger
	MaxUploadBytes int64
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	createCtl := controller.NewCreateConversationController(d.Pool)
	listCtl := controller.NewListConversationsController(d.Pool)
	sendMsgCtl := controller.NewSendMessageController(d.Pool, d.Queue, d.Logger)
	getMsgsCtl := controller.NewGetMessagesController(d.Pool, d.Cache)
	membersCtl := controller.NewListParticipantsController(d.Pool)
	requestCtl := controller.NewMessageRequestController(d.Pool, d.Cache, d.Router)
	uploadCtl := controller.NewUploadMediaController(d.Store, d.MaxUploadBytes)
	socketCtl := controller.NewChatSocketController(d.Pool, d.Router, d.Logger)

	// POST /api/v1/conversations -> open a conversation (direct, group, or request)
	g.POST("/conversations", createCtl.Handle())

	// GET /api/v1/conversations?user_id= -> list a user's conversations
	g.GET("/conversations", listCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> persist a message
	g.POST("/conversations/:conversationId/messages", sendMsgCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> history, oldest first
	g.GET("/conversations/:conversationId/messages", getMsgsCtl.Handle())

	// GET /api/v1/conversations/:conversationId/participants -> membership
	g.GET("/conversations/:conversationId/participants", membersCtl.Handle())

	// POST /api/v1/conversations/:conversationId/requests/:requestId -> accept/decline
	g.POST("/conversations/:conversationId/requests/:requestId", requestCtl.Handle())

	// POST /api/v1/media -> upload an attachment, returns its public URL
	g.POST("/media", uploadCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime relay
	g.GET("/chat/ws", socketCtl.Handle())
}
