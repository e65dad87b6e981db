package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// fakeTransport records calls and can loop broadcasts back through the
// inbound handler, the way the real room relay does.
type fakeTransport struct {
	mu         sync.Mutex
	connects   int
	joined     []string
	left       []string
	handler    InboundHandler
	broadcasts []Message
	loopback   bool
}

func (f *fakeTransport) Connect(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return nil
}

func (f *fakeTransport) JoinRoom(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, id)
}

func (f *fakeTransport) LeaveRoom(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, id)
}

func (f *fakeTransport) OnInboundMessage(h InboundHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeTransport) SendBroadcast(m Message) error {
	f.mu.Lock()
	f.broadcasts = append(f.broadcasts, m)
	h := f.handler
	loop := f.loopback
	f.mu.Unlock()
	if loop && h != nil {
		h(m)
	}
	return nil
}

func (f *fakeTransport) Disconnect() error { return nil }

// Deliver simulates an inbound event arriving from the server.
func (f *fakeTransport) Deliver(m Message) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(m)
	}
}

type fakeHistory struct {
	hist    History
	err     error
	onFetch func() // runs inside FetchHistory, before it returns
}

func (f *fakeHistory) FetchHistory(context.Context, string) (History, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.hist, f.err
}

type fakePersister struct {
	mu     sync.Mutex
	calls  int
	err    error
	nextID string
}

func (f *fakePersister) PersistMessage(_ context.Context, conversationID string, d Draft) (Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Message{}, f.err
	}
	m := Message{
		ID:             f.nextID,
		ConversationID: conversationID,
		Body:           d.Body,
		Sender:         Sender{ID: "u1", DisplayName: "Ana"},
		CreatedAt:      time.Now().UTC(),
		ClientKey:      d.ClientKey,
	}
	if d.MediaURL != "" {
		m.Attachment = &Attachment{URL: d.MediaURL, Kind: d.MediaKind}
	}
	return m, nil
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	url   string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, _, _ string, body io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, body)
	return f.url, nil
}

func newTestSession(t *testing.T, tr *fakeTransport, hist *fakeHistory, p *fakePersister, up *fakeUploader) *Session {
	t.Helper()
	s, err := OpenSession(context.Background(), SessionConfig{
		ConversationID: "c1",
		Self:           Sender{ID: "u1", DisplayName: "Ana"},
		Transport:      tr,
		History:        hist,
		Persister:      p,
		Uploader:       up,
	})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	return s
}

func TestOpenLoadsHistoryAndJoinsRoom(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{
		Conversation: Conversation{ID: "c1", Kind: ConversationDirect},
		Messages:     []Message{msg("m1", "a"), msg("m2", "b")},
	}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	if tr.connects != 1 {
		t.Errorf("expected 1 connect, got %d", tr.connects)
	}
	if len(tr.joined) != 1 || tr.joined[0] != "c1" {
		t.Errorf("expected join for c1, got %v", tr.joined)
	}
	got := s.Messages()
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("unexpected history: %v", got)
	}
}

func TestOpenHistoryFailureLeavesRoom(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{err: errors.New("boom")}
	_, err := OpenSession(context.Background(), SessionConfig{
		ConversationID: "c1",
		Self:           Sender{ID: "u1"},
		Transport:      tr,
		History:        hist,
	})
	if err == nil {
		t.Fatal("expected error from failed history fetch")
	}
	if len(tr.left) != 1 || tr.left[0] != "c1" {
		t.Errorf("expected the room to be left after failure, got %v", tr.left)
	}
}

// Optimistic-then-confirmed, end to end: the canonical echo must replace the
// provisional entry so the log never shows two entries for one message.
func TestSendReconcilesOwnEcho(t *testing.T) {
	tr := &fakeTransport{loopback: true}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1", Kind: ConversationDirect}}}
	p := &fakePersister{nextID: "server-1"}
	s := newTestSession(t, tr, hist, p, nil)

	if err := s.Send(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got := s.Messages()
	if len(got) != 1 {
		t.Fatalf("expected exactly one message, got %d: %v", len(got), got)
	}
	if got[0].ID != "server-1" {
		t.Errorf("expected server id after reconciliation, got %q", got[0].ID)
	}
	if got[0].Provisional {
		t.Error("reconciled message still marked provisional")
	}
}

// Two sends in flight: each echo reconciles its own entry by client key even
// when the echoes come back out of order.
func TestConcurrentSendsReconcileByClientKey(t *testing.T) {
	tr := &fakeTransport{} // no loopback; echoes delivered manually
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1", Kind: ConversationDirect}}}
	p := &fakePersister{nextID: "server-1"}
	s := newTestSession(t, tr, hist, p, nil)

	if err := s.Send(context.Background(), "first", nil); err != nil {
		t.Fatalf("first send: %v", err)
	}
	p.nextID = "server-2"
	if err := s.Send(context.Background(), "second", nil); err != nil {
		t.Fatalf("second send: %v", err)
	}

	if len(tr.broadcasts) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(tr.broadcasts))
	}
	// Deliver the second echo before the first.
	tr.Deliver(tr.broadcasts[1])
	tr.Deliver(tr.broadcasts[0])

	got := s.Messages()
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].ID != "server-1" || got[0].Body != "first" {
		t.Errorf("first slot not reconciled correctly: %+v", got[0])
	}
	if got[1].ID != "server-2" || got[1].Body != "second" {
		t.Errorf("second slot not reconciled correctly: %+v", got[1])
	}
}

// A message arriving between the room join and the history response is held
// back and replayed once the history is in; one the fetch already returned is
// not duplicated by the replay.
func TestInboundDuringHistoryLoadIsReplayed(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{
		Conversation: Conversation{ID: "c1", Kind: ConversationDirect},
		Messages:     []Message{msg("m1", "a")},
	}}
	hist.onFetch = func() {
		raced := msg("m2", "raced the fetch")
		raced.Sender = Sender{ID: "u2", DisplayName: "Ben"}
		tr.Deliver(raced)
		tr.Deliver(msg("m1", "a")) // also present in the fetched history
	}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	got := s.Messages()
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("expected history plus replayed event without duplicates, got %v", got)
	}
}

func TestInboundFromOtherParticipantAppends(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1", Kind: ConversationDirect}}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	in := msg("m9", "hello there")
	in.Sender = Sender{ID: "u2", DisplayName: "Ben"}
	tr.Deliver(in)

	got := s.Messages()
	if len(got) != 1 || got[0].ID != "m9" {
		t.Errorf("expected appended inbound message, got %v", got)
	}
}

// Room isolation: events tagged for another conversation never reach this log.
func TestInboundForOtherRoomIsDropped(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{Conversation: Conversation{ID: "c1", Kind: ConversationDirect}}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	stray := msg("m1", "wrong room")
	stray.ConversationID = "c2"
	tr.Deliver(stray)

	if got := s.Messages(); len(got) != 0 {
		t.Errorf("expected empty log, got %v", got)
	}
}

// Teardown silences late events: an in-flight inbound arriving after Close
// must not mutate the log.
func TestCloseDropsLateEvents(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{
		Conversation: Conversation{ID: "c1", Kind: ConversationDirect},
		Messages:     []Message{msg("m1", "a")},
	}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	s.Close()
	if len(tr.left) != 1 || tr.left[0] != "c1" {
		t.Errorf("expected leave for c1, got %v", tr.left)
	}

	tr.Deliver(msg("late", "too late"))
	got := s.Messages()
	if len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("late event mutated the log: %v", got)
	}
}

func TestPendingRequestExposed(t *testing.T) {
	tr := &fakeTransport{}
	hist := &fakeHistory{hist: History{
		Conversation: Conversation{ID: "c1", Kind: ConversationRequest, RequestID: "r1"},
		Request:      &MessageRequest{ID: "r1", ConversationID: "c1", SenderID: "u2", Status: RequestPending},
	}}
	s := newTestSession(t, tr, hist, &fakePersister{}, nil)

	req := s.PendingRequest()
	if req == nil || req.Status != RequestPending {
		t.Fatalf("expected pending request, got %v", req)
	}
	if s.Conversation().Kind != ConversationRequest {
		t.Errorf("expected request conversation kind, got %q", s.Conversation().Kind)
	}
}
