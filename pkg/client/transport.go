package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// InboundHandler receives every message event delivered over the transport.
// Exactly one handler is active at a time; registering a new one replaces the
// previous registration rather than accumulating callbacks.
type InboundHandler func(m Message)

// Transport is the realtime event channel shared by a client session. One
// connection is held per authenticated session; conversations map onto
// logical rooms scoped by their id.
//
// Transport errors are not retried: a dropped connection simply stops
// delivering inbound events until the owner reconnects.
type Transport interface {
	// Connect establishes the shared connection for the given user. Calling it
	// again while connected is a no-op returning the existing connection.
	Connect(ctx context.Context, userID string) error

	// JoinRoom and LeaveRoom signal room membership. Both are fire-and-forget;
	// no acknowledgement is awaited.
	JoinRoom(conversationID string)
	LeaveRoom(conversationID string)

	// OnInboundMessage registers the single active inbound handler.
	OnInboundMessage(h InboundHandler)

	// SendBroadcast announces a persisted message to its conversation room so
	// every member, the sender's own session included, receives it through the
	// same inbound path.
	SendBroadcast(m Message) error

	// Disconnect tears the connection down. A later Connect opens a new one.
	Disconnect() error
}

const (
	frameJoin    = "join"
	frameLeave   = "leave"
	frameMessage = "message"
)

// wireFrame is the JSON envelope exchanged with the chat websocket endpoint.
type wireFrame struct {
	Type           string       `json:"type"`
	ConversationID string       `json:"conversation_id,omitempty"`
	Message        *wireMessage `json:"message,omitempty"`
}

type wireMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Body           string    `json:"body,omitempty"`
	MediaURL       string    `json:"media_url,omitempty"`
	MediaKind      string    `json:"media_kind,omitempty"`
	ClientKey      string    `json:"client_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toWire(m Message) *wireMessage {
	w := &wireMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.Sender.ID,
		SenderName:     m.Sender.DisplayName,
		Body:           m.Body,
		ClientKey:      m.ClientKey,
		CreatedAt:      m.CreatedAt,
	}
	if m.Attachment != nil {
		w.MediaURL = m.Attachment.URL
		w.MediaKind = string(m.Attachment.Kind)
	}
	return w
}

func fromWire(w wireMessage) Message {
	m := Message{
		ID:             w.ID,
		ConversationID: w.ConversationID,
		Body:           w.Body,
		Sender:         Sender{ID: w.SenderID, DisplayName: w.SenderName},
		CreatedAt:      w.CreatedAt,
		ClientKey:      w.ClientKey,
	}
	if w.MediaURL != "" {
		kind := MediaKind(w.MediaKind)
		if !kind.Valid() {
			kind = MediaKindImage
		}
		m.Attachment = &Attachment{URL: w.MediaURL, Kind: kind}
	}
	return m
}

// WSTransport implements Transport over the service's websocket endpoint
// using gorilla/websocket.
type WSTransport struct {
	endpoint string
	dialer   *websocket.Dialer
	log      *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	handler InboundHandler
}

// NewWSTransport builds a transport for the websocket endpoint, e.g.
// "ws://host:8080/api/v1/chat/ws". A nil logger disables logging.
func NewWSTransport(endpoint string, log *zap.Logger) *WSTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSTransport{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		log:      log,
	}
}

var _ Transport = (*WSTransport)(nil)

func (t *WSTransport) Connect(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("transport: user id is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}

	u, err := url.Parse(t.endpoint)
	if err != nil {
		return fmt.Errorf("transport: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	conn, _, err := t.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("transport: dial: %w", err)
	}
	t.conn = conn
	go t.readLoop(conn)
	return nil
}

func (t *WSTransport) JoinRoom(conversationID string) {
	t.writeFrame(wireFrame{Type: frameJoin, ConversationID: conversationID})
}

func (t *WSTransport) LeaveRoom(conversationID string) {
	t.writeFrame(wireFrame{Type: frameLeave, ConversationID: conversationID})
}

func (t *WSTransport) OnInboundMessage(h InboundHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

func (t *WSTransport) SendBroadcast(m Message) error {
	frame := wireFrame{
		Type:           frameMessage,
		ConversationID: m.ConversationID,
		Message:        toWire(m),
	}
	return t.writeFrameErr(frame)
}

func (t *WSTransport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	t.writeMu.Lock()
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	t.writeMu.Unlock()
	return conn.Close()
}

// writeFrame is the fire-and-forget variant used for room signals.
func (t *WSTransport) writeFrame(frame wireFrame) {
	if err := t.writeFrameErr(frame); err != nil {
		t.log.Warn("transport write failed",
			zap.String("frame", frame.Type), zap.Error(err))
	}
}

func (t *WSTransport) writeFrameErr(frame wireFrame) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New("transport: not connected")
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

func (t *WSTransport) readLoop(conn *websocket.Conn) {
	for {
		var frame wireFrame
		if err := conn.ReadJSON(&frame); err != nil {
			// No automatic reconnect: the session owner reconnects on remount.
			t.log.Debug("transport read loop ended", zap.Error(err))
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			return
		}
		if frame.Type != frameMessage || frame.Message == nil {
			continue
		}

		t.mu.Lock()
		handler := t.handler
		t.mu.Unlock()
		if handler != nil {
			handler(fromWire(*frame.Message))
		}
	}
}
