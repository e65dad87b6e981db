package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSendRejectsEmptyCompose(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1"}}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	if err := s.Send(context.Background(), "   ", nil); !errors.Is(err, ErrEmptySend) {
		t.Errorf("expected ErrEmptySend, got %v", err)
	}
}

// Upload failure short-circuits: nothing is appended and the persistence call
// never runs.
func TestSendUploadFailureShortCircuits(t *testing.T) {
	tr := &fakeTransport{loopback: true}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1"}}}
	p := &fakePersister{nextID: "server-1"}
	up := &fakeUploader{err: errors.New("bucket unreachable")}
	s := newTestSession(t, tr, hist, p, up)

	err := s.Send(context.Background(), "look", &FileAttachment{
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Content:     strings.NewReader("not really a jpeg"),
	})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if got := s.Messages(); len(got) != 0 {
		t.Errorf("expected zero appends after upload failure, got %v", got)
	}
	if p.calls != 0 {
		t.Errorf("persistence call ran despite upload failure: %d calls", p.calls)
	}
}

// Persistence failure surfaces to the caller; the provisional entry is left
// in place, neither retried nor rolled back.
func TestSendPersistFailureKeepsProvisional(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1"}}}
	p := &fakePersister{err: errors.New("backend down")}
	s := newTestSession(t, tr, hist, p, nil)

	if err := s.Send(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected persistence error")
	}
	got := s.Messages()
	if len(got) != 1 || !got[0].Provisional {
		t.Errorf("expected one provisional entry, got %v", got)
	}
	if len(tr.broadcasts) != 0 {
		t.Errorf("nothing should be broadcast after a failed persist, got %v", tr.broadcasts)
	}
}

func TestSendWithAttachmentCarriesMediaDraft(t *testing.T) {
	tr := &fakeTransport{loopback: true}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1"}}}
	p := &fakePersister{nextID: "server-7"}
	up := &fakeUploader{url: "https://cdn.example.com/media/abc.ogg"}
	s := newTestSession(t, tr, hist, p, up)

	err := s.Send(context.Background(), "", &FileAttachment{
		Name:        "note.ogg",
		ContentType: "audio/ogg",
		Content:     strings.NewReader("OggS...."),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if up.calls != 1 {
		t.Fatalf("expected one upload, got %d", up.calls)
	}

	got := s.Messages()
	if len(got) != 1 || got[0].Attachment == nil {
		t.Fatalf("expected one message with attachment, got %v", got)
	}
	if got[0].Attachment.Kind != MediaKindAudio {
		t.Errorf("expected audio kind, got %q", got[0].Attachment.Kind)
	}
	if got[0].Attachment.URL != up.url {
		t.Errorf("expected uploaded url, got %q", got[0].Attachment.URL)
	}
}

func TestSendRejectsUnsupportedAttachment(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1"}}}
	up := &fakeUploader{url: "https://cdn.example.com/x"}
	s := newTestSession(t, tr, hist, &fakePersister{}, up)

	err := s.Send(context.Background(), "", &FileAttachment{
		Name:        "notes.pdf",
		ContentType: "application/pdf",
		Content:     strings.NewReader("%PDF-1.4"),
	})
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("expected ErrUnsupportedMedia, got %v", err)
	}
	if up.calls != 0 {
		t.Errorf("unsupported file must not be uploaded, got %d uploads", up.calls)
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1"}}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	s.Close()
	if err := s.Send(context.Background(), "hello?", nil); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestClassifyAttachmentSniffsMissingContentType(t *testing.T) {
	// Minimal PNG signature; mimetype identifies it without a declared type.
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 16)
	kind, contentType, body, err := classifyAttachment(&FileAttachment{
		Name:    "pic",
		Content: strings.NewReader(png),
	})
	if err != nil {
		t.Fatalf("classifyAttachment: %v", err)
	}
	if kind != MediaKindImage {
		t.Errorf("expected image kind, got %q", kind)
	}
	if !strings.HasPrefix(contentType, "image/png") {
		t.Errorf("expected sniffed image/png, got %q", contentType)
	}

	// The returned reader must still yield the full content.
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, body); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if buf.String() != png {
		t.Errorf("content was truncated by sniffing: %d of %d bytes", buf.Len(), len(png))
	}
}
