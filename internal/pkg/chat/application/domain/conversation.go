package chat

import (
	"errors"
	"time"
)

// ConversationKind is the closed set of conversation variants.
type ConversationKind string

const (
	// KindDirect is an established 1:1 thread.
	KindDirect ConversationKind = "direct"
	// KindGroup is a multi-member thread.
	KindGroup ConversationKind = "group"
	// KindRequest is a temporary thread: a first contact the recipient has
	// not accepted yet. Accepting flips it to direct; conversations are never
	// deleted, a declined request just stays declined.
	KindRequest ConversationKind = "request"
)

// Valid reports whether k is a known kind.
func (k ConversationKind) Valid() bool {
	switch k {
	case KindDirect, KindGroup, KindRequest:
		return true
	}
	return false
}

// Conversation is the thread metadata. LastMessage/LastMessageAt are a
// denormalized preview maintained off the request path.
type Conversation struct {
	ID            string           `db:"id"`
	Kind          ConversationKind `db:"kind"`
	CreatedAt     time.Time        `db:"created_at"`
	RequestID     *string          `db:"request_id"`
	LastMessage   *string          `db:"last_message"`
	LastMessageAt *time.Time       `db:"last_message_at"`
}

// IsTemporary reports whether the thread is still a pending contact request.
func (c Conversation) IsTemporary() bool {
	return c.Kind == KindRequest
}

// RequestStatus is the lifecycle state of a message request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// MessageRequest is the pending-contact record behind a request conversation.
type MessageRequest struct {
	ID             string        `db:"id"`
	ConversationID string        `db:"conversation_id"`
	SenderID       string        `db:"sender_id"`
	Status         RequestStatus `db:"status"`
	CreatedAt      time.Time     `db:"created_at"`
}

var (
	ErrNotParticipant    = errors.New("chat: user is not a participant in the conversation")
	ErrRequestResolved   = errors.New("chat: message request already resolved")
	ErrBadRequestVerdict = errors.New("chat: request verdict must be accept or decline")
)

// Resolve applies an accept/decline verdict. Only pending requests can be
// resolved, and only by someone other than the requester.
func (r *MessageRequest) Resolve(status RequestStatus, byUserID string) error {
	if r.Status != RequestPending {
		return ErrRequestResolved
	}
	if status != RequestAccepted && status != RequestDeclined {
		return ErrBadRequestVerdict
	}
	if byUserID == r.SenderID {
		return errors.New("chat: requester cannot resolve their own request")
	}
	r.Status = status
	return nil
}
