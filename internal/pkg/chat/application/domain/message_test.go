package chat

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func strp(s string) *string { return &s }

func TestNewMessageTrimsBody(t *testing.T) {
	m, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Body:           strp("  hello \n"),
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if m.Body == nil || *m.Body != "hello" {
		t.Errorf("body not trimmed: %v", m.Body)
	}
	if m.MediaKind != MediaKindText {
		t.Errorf("expected default text kind, got %q", m.MediaKind)
	}
	if m.CreatedAt.IsZero() {
		t.Error("expected a default timestamp")
	}
}

func TestNewMessageRejectsEmpty(t *testing.T) {
	cases := []*string{nil, strp(""), strp("   "), strp("\t\n")}
	for _, body := range cases {
		if _, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", Body: body}); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("body %v: expected ErrEmptyMessage, got %v", body, err)
		}
	}
}

func TestNewMessageMediaNeedsMediaKind(t *testing.T) {
	_, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		MediaURL:       strp("https://cdn.example.com/a.png"),
		MediaKind:      MediaKindText,
	})
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind for text kind with media url, got %v", err)
	}

	m, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		MediaURL:       strp("https://cdn.example.com/a.png"),
		MediaKind:      MediaKindImage,
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if m.Body != nil {
		t.Errorf("expected nil body, got %v", m.Body)
	}
}

func TestNewMessageUnknownKind(t *testing.T) {
	_, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Body:           strp("x"),
		MediaKind:      MediaKind("gif"),
	})
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestNewMessageKeepsClientKey(t *testing.T) {
	key := "prov-123"
	m, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Body:           strp("hi"),
		ClientKey:      &key,
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if m.ClientKey == nil || *m.ClientKey != key {
		t.Errorf("client key not carried through: %v", m.ClientKey)
	}
	if !m.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("explicit timestamp was overwritten: %v", m.CreatedAt)
	}
}

func TestResolveRequest(t *testing.T) {
	fresh := func() *MessageRequest {
		return &MessageRequest{ID: "r1", ConversationID: "c1", SenderID: "u1", Status: RequestPending}
	}

	r := fresh()
	if err := r.Resolve(RequestAccepted, "u2"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if r.Status != RequestAccepted {
		t.Errorf("status not updated: %q", r.Status)
	}

	if err := r.Resolve(RequestDeclined, "u2"); !errors.Is(err, ErrRequestResolved) {
		t.Errorf("expected ErrRequestResolved on second verdict, got %v", err)
	}

	r = fresh()
	if err := r.Resolve(RequestPending, "u2"); !errors.Is(err, ErrBadRequestVerdict) {
		t.Errorf("expected ErrBadRequestVerdict, got %v", err)
	}

	r = fresh()
	if err := r.Resolve(RequestAccepted, "u1"); err == nil || !strings.Contains(err.Error(), "requester") {
		t.Errorf("requester must not resolve their own request, got %v", err)
	}
}
