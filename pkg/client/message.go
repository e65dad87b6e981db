package client

import "time"

// MediaKind is the closed set of message content kinds carried by a conversation.
type MediaKind string

const (
	MediaKindText  MediaKind = "text"
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// Valid reports whether k is one of the known kinds.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindText, MediaKindImage, MediaKindVideo, MediaKindAudio:
		return true
	}
	return false
}

// Sender identifies the author of a message as rendered in a conversation.
type Sender struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Attachment points at an uploaded binary and its classified kind.
type Attachment struct {
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
}

// Message is one entry in a conversation log.
//
// Before server confirmation a message is provisional: ID is a locally
// generated key, CreatedAt is client time and Provisional is true. Once the
// canonical copy arrives through the transport, the provisional entry is
// replaced in place (see MessageLog.Reconcile). ClientKey carries the
// provisional id through the persistence call and the broadcast payload so the
// echo of a send can be matched exactly, even with several sends in flight.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Body           string      `json:"body,omitempty"`
	Attachment     *Attachment `json:"attachment,omitempty"`
	Sender         Sender      `json:"sender"`
	CreatedAt      time.Time   `json:"created_at"`
	ClientKey      string      `json:"client_key,omitempty"`
	Provisional    bool        `json:"-"`
}

// ConversationKind is the closed set of conversation variants.
type ConversationKind string

const (
	// ConversationDirect is an established 1:1 thread.
	ConversationDirect ConversationKind = "direct"
	// ConversationGroup is a multi-member thread.
	ConversationGroup ConversationKind = "group"
	// ConversationRequest is a temporary thread pending acceptance by the
	// recipient. Accepting the request turns it into a direct conversation.
	ConversationRequest ConversationKind = "request"
)

// Conversation is the metadata returned alongside a history fetch.
type Conversation struct {
	ID             string           `json:"id"`
	Kind           ConversationKind `json:"kind"`
	ParticipantIDs []string         `json:"participant_ids"`
	RequestID      string           `json:"request_id,omitempty"`
}

// RequestStatus is the lifecycle state of a message request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// MessageRequest is the pending-contact record attached to a request conversation.
type MessageRequest struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	Status         RequestStatus `json:"status"`
}
