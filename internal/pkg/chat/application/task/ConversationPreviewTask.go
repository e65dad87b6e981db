package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/harshit91796/unseen-Price/internal/infrastructure/queue/port"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// ConversationPreviewTaskType is the queue task name for refreshing the
// denormalized last-message preview on a conversation.
const ConversationPreviewTaskType = "chat:update_preview"

// ConversationPreviewPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type ConversationPreviewPayload struct {
	ConversationID string    `json:"conversationId"`
	Preview        string    `json:"preview"`
	SentAt         time.Time `json:"sentAt"`
}

// RegisterConversationPreviewTask binds the preview-refresh handler to the
// provided server. The repository guards against stale updates, so the handler
// stays idempotent under retries and reordering.
func RegisterConversationPreviewTask(srv qport.Server, repo repository.ChatRepository) {
	srv.Register(ConversationPreviewTaskType, func(ctx context.Context, t qport.Task) error {
		var p ConversationPreviewPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		return repo.UpdateConversationPreview(ctx, p.ConversationID, p.Preview, p.SentAt)
	})
}
