package controller

import (
	"time"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
)

// messagePayload is the JSON shape of a message on both the REST and the
// websocket surface. client_key is echoed verbatim so the sender can match
// the broadcast against its optimistic entry.
type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	CreatedAt      time.Time `json:"created_at"`
	Body           *string   `json:"body,omitempty"`
	MediaKind      string    `json:"media_kind"`
	MediaURL       *string   `json:"media_url,omitempty"`
	ClientKey      *string   `json:"client_key,omitempty"`
}

func toMessagePayload(m chat.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		CreatedAt:      m.CreatedAt,
		Body:           m.Body,
		MediaKind:      string(m.MediaKind),
		MediaURL:       m.MediaURL,
		ClientKey:      m.ClientKey,
	}
}

// conversationPayload is the JSON shape of conversation metadata.
type conversationPayload struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	CreatedAt     time.Time  `json:"created_at"`
	RequestID     *string    `json:"request_id,omitempty"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

func toConversationPayload(c chat.Conversation) conversationPayload {
	return conversationPayload{
		ID:            c.ID,
		Kind:          string(c.Kind),
		CreatedAt:     c.CreatedAt,
		RequestID:     c.RequestID,
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt,
	}
}

// requestPayload is the JSON shape of a message request.
type requestPayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toRequestPayload(r chat.MessageRequest) requestPayload {
	return requestPayload{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}
