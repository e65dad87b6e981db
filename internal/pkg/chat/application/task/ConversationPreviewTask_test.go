package task

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	qport "github.com/harshit91796/unseen-Price/internal/infrastructure/queue/port"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

// fakeServer captures registered handlers for direct invocation.
type fakeServer struct {
	handlers map[string]qport.Handler
}

func (f *fakeServer) Register(taskType string, h qport.Handler) {
	if f.handlers == nil {
		f.handlers = make(map[string]qport.Handler)
	}
	f.handlers[taskType] = h
}

func (f *fakeServer) Run(context.Context) error  { return nil }
func (f *fakeServer) Stop(context.Context) error { return nil }

// previewRepo records preview updates; other repository methods are unused.
type previewRepo struct {
	repository.ChatRepository
	conversationID string
	preview        string
	at             time.Time
}

func (r *previewRepo) UpdateConversationPreview(_ context.Context, conversationID string, preview string, at time.Time) error {
	r.conversationID = conversationID
	r.preview = preview
	r.at = at
	return nil
}

func TestPreviewTaskUpdatesConversation(t *testing.T) {
	srv := &fakeServer{}
	repo := &previewRepo{}
	RegisterConversationPreviewTask(srv, repo)

	h := srv.handlers[ConversationPreviewTaskType]
	if h == nil {
		t.Fatal("handler not registered")
	}

	sentAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(ConversationPreviewPayload{
		ConversationID: "c1",
		Preview:        "see you there",
		SentAt:         sentAt,
	})
	if err := h(context.Background(), qport.Task{Type: ConversationPreviewTaskType, Payload: payload}); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if repo.conversationID != "c1" || repo.preview != "see you there" || !repo.at.Equal(sentAt) {
		t.Errorf("unexpected update: %+v", repo)
	}
}

func TestPreviewTaskRejectsMalformedPayload(t *testing.T) {
	srv := &fakeServer{}
	RegisterConversationPreviewTask(srv, &previewRepo{})

	h := srv.handlers[ConversationPreviewTaskType]
	if err := h(context.Background(), qport.Task{Type: ConversationPreviewTaskType, Payload: []byte("{")}); err == nil {
		t.Error("expected error for malformed payload")
	}
}
