package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// History is the result of a conversation history fetch: the ordered message
// list plus the conversation metadata and, for temporary conversations, the
// pending message request.
type History struct {
	Conversation Conversation
	Messages     []Message
	Request      *MessageRequest
}

// HistoryFetcher loads a conversation's history from the backend.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, conversationID string) (History, error)
}

// sessionState tracks the lifecycle of one open conversation view.
type sessionState int

const (
	stateIdle sessionState = iota
	stateLoading
	stateReady
	stateTornDown
)

// SessionConfig wires a Session to its collaborators. Transport and History
// are required; Persister and Uploader are only needed when the session sends.
type SessionConfig struct {
	ConversationID string
	Self           Sender
	Transport      Transport
	History        HistoryFetcher
	Persister      MessagePersister
	Uploader       Uploader
	Logger         *zap.Logger
}

// Session owns the lifecycle of viewing one conversation: it loads history,
// joins the transport room, routes inbound events into the message log and
// tears everything down on Close. The log is discarded with the session; the
// server stays the source of truth for history.
type Session struct {
	conversationID string
	self           Sender
	transport      Transport
	history        HistoryFetcher
	persister      MessagePersister
	uploader       Uploader
	logger         *zap.Logger

	mu           sync.Mutex
	state        sessionState
	log          MessageLog
	conversation Conversation
	request      *MessageRequest
	pending      map[string]struct{} // client keys of in-flight sends
	backlog      []Message           // inbound events held back while history loads
}

// OpenSession connects the transport, joins the conversation room and loads
// history. On history failure the room is left again and the error returned;
// there is no automatic retry.
func OpenSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.ConversationID == "" {
		return nil, errors.New("session: conversation id is required")
	}
	if cfg.Transport == nil || cfg.History == nil {
		return nil, errors.New("session: transport and history fetcher are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Session{
		conversationID: cfg.ConversationID,
		self:           cfg.Self,
		transport:      cfg.Transport,
		history:        cfg.History,
		persister:      cfg.Persister,
		uploader:       cfg.Uploader,
		logger:         cfg.Logger,
		state:          stateLoading,
		pending:        make(map[string]struct{}),
	}

	if err := cfg.Transport.Connect(ctx, cfg.Self.ID); err != nil {
		return nil, fmt.Errorf("session: connect transport: %w", err)
	}
	cfg.Transport.OnInboundMessage(s.handleInbound)
	cfg.Transport.JoinRoom(cfg.ConversationID)

	hist, err := cfg.History.FetchHistory(ctx, cfg.ConversationID)
	if err != nil {
		cfg.Transport.LeaveRoom(cfg.ConversationID)
		s.mu.Lock()
		s.state = stateTornDown
		s.mu.Unlock()
		return nil, fmt.Errorf("session: load history: %w", err)
	}

	s.mu.Lock()
	s.log = s.log.SetAll(hist.Messages)
	s.conversation = hist.Conversation
	s.request = hist.Request
	s.state = stateReady

	// Replay events that arrived between the room join and the history
	// response. A message the fetch already returned is skipped by id so the
	// replay never duplicates it.
	backlog := s.backlog
	s.backlog = nil
	seen := make(map[string]struct{}, len(hist.Messages))
	for _, m := range hist.Messages {
		seen[m.ID] = struct{}{}
	}
	for _, m := range backlog {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		s.applyLocked(m)
	}
	s.mu.Unlock()

	s.logger.Debug("conversation session ready",
		zap.String("conversation_id", cfg.ConversationID),
		zap.Int("history", len(hist.Messages)))
	return s, nil
}

// handleInbound routes one transport event. Events for other conversations
// and events arriving after teardown are dropped; events racing the history
// fetch are held back and replayed once the session is ready.
func (s *Session) handleInbound(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ConversationID != s.conversationID {
		return
	}

	switch s.state {
	case stateLoading:
		s.backlog = append(s.backlog, m)
	case stateReady:
		s.applyLocked(m)
	}
}

// applyLocked applies one event to the log. An echo of this session's own
// send, matched by exact client key, reconciles the provisional entry in
// place; everything else appends. Caller holds s.mu.
func (s *Session) applyLocked(m Message) {
	if m.ClientKey != "" {
		if _, ok := s.pending[m.ClientKey]; ok {
			delete(s.pending, m.ClientKey)
			s.log = s.log.Reconcile(m.ClientKey, m)
			return
		}
	}
	// A reconciliation miss, or a message from another participant (or
	// another of our own devices): appears as freshly received.
	s.log = s.log.Append(m)
}

// Close leaves the transport room and marks the session torn down. Events
// still in flight when Close runs are discarded, not misapplied.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == stateTornDown {
		s.mu.Unlock()
		return
	}
	s.state = stateTornDown
	s.mu.Unlock()

	s.transport.LeaveRoom(s.conversationID)
}

// Messages returns a copy of the current log in append order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.log))
	copy(out, s.log)
	return out
}

// Conversation returns the metadata loaded with the history.
func (s *Session) Conversation() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// PendingRequest returns the message request attached to a temporary
// conversation, or nil for established threads.
func (s *Session) PendingRequest() *MessageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.request == nil {
		return nil
	}
	r := *s.request
	return &r
}
