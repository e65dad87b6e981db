package chat

import (
	"errors"
	"strings"
	"time"
)

// MediaKind is the closed set of message content kinds.
type MediaKind string

const (
	MediaKindText  MediaKind = "text"
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// Valid reports whether k is a known kind.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindText, MediaKindImage, MediaKindVideo, MediaKindAudio:
		return true
	}
	return false
}

// Message is an immutable log entry in a conversation.
//
// ClientKey is the sender's provisional id, carried verbatim through
// persistence and broadcast so the sending session can reconcile its
// optimistic copy by exact match.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	SenderName     string    `db:"sender_name"`
	CreatedAt      time.Time `db:"created_at"`
	Body           *string   `db:"body"`
	MediaKind      MediaKind `db:"media_kind"`
	MediaURL       *string   `db:"media_url"`
	ClientKey      *string   `db:"client_key"`
}

var (
	ErrEmptyMessage = errors.New("chat: empty message (no body or attachment)")
	ErrInvalidKind  = errors.New("chat: unknown media kind")
)

// NewMessage validates and normalizes a message before persistence:
// body is trimmed (empty becomes nil), a missing kind defaults to text,
// and a zero timestamp defaults to now.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, errors.New("chat: conversation_id and sender_id are required")
	}

	if m.Body != nil {
		trimmed := strings.TrimSpace(*m.Body)
		if trimmed == "" {
			m.Body = nil
		} else {
			m.Body = &trimmed
		}
	}

	if m.Body == nil && m.MediaURL == nil {
		return nil, ErrEmptyMessage
	}

	if m.MediaKind == "" {
		m.MediaKind = MediaKindText
	}
	if !m.MediaKind.Valid() {
		return nil, ErrInvalidKind
	}
	if m.MediaURL != nil && m.MediaKind == MediaKindText {
		return nil, ErrInvalidKind
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
