package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Draft is the payload of the send-message persistence call.
type Draft struct {
	Body      string
	MediaURL  string
	MediaKind MediaKind
	ClientKey string
}

// MessagePersister persists a draft and returns the canonical message with
// its server-assigned id and timestamp. The canonical copy must carry the
// draft's client key so echoes can be reconciled.
type MessagePersister interface {
	PersistMessage(ctx context.Context, conversationID string, d Draft) (Message, error)
}

// Uploader stores one binary in object storage and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// FileAttachment is a compose-time attachment: raw content plus the declared
// content type (may be empty, in which case the content is sniffed).
type FileAttachment struct {
	Name        string
	ContentType string
	Content     io.Reader
}

var (
	// ErrEmptySend is returned when neither text nor an attachment is given.
	ErrEmptySend = errors.New("client: message needs text or an attachment")
	// ErrUnsupportedMedia is returned for attachments that are not
	// image, video or audio content.
	ErrUnsupportedMedia = errors.New("client: unsupported attachment type")
	// ErrSessionClosed is returned when sending on a torn-down session.
	ErrSessionClosed = errors.New("client: session is not ready")
)

// Send runs the outbound pipeline for one compose action:
//
//  1. classify and upload the attachment, if any — an upload failure aborts
//     the send before the log is touched;
//  2. append a provisional message with a locally generated key;
//  3. persist the draft, carrying the key as client_key — on failure the
//     provisional entry stays put and the error is returned;
//  4. broadcast the canonical message so every room member, this session
//     included, receives it through the inbound path. Reconciliation of the
//     provisional entry happens only there.
func (s *Session) Send(ctx context.Context, text string, file *FileAttachment) error {
	text = strings.TrimSpace(text)
	if text == "" && file == nil {
		return ErrEmptySend
	}
	if s.persister == nil {
		return errors.New("client: session has no message persister")
	}

	var att *Attachment
	if file != nil {
		if s.uploader == nil {
			return errors.New("client: session has no uploader")
		}
		kind, contentType, body, err := classifyAttachment(file)
		if err != nil {
			return err
		}
		url, err := s.uploader.Upload(ctx, file.Name, contentType, body)
		if err != nil {
			return fmt.Errorf("client: upload attachment: %w", err)
		}
		att = &Attachment{URL: url, Kind: kind}
	}

	key := uuid.NewString()
	provisional := Message{
		ID:             key,
		ConversationID: s.conversationID,
		Body:           text,
		Attachment:     att,
		Sender:         s.self,
		CreatedAt:      time.Now().UTC(),
		ClientKey:      key,
		Provisional:    true,
	}

	s.mu.Lock()
	if s.state != stateReady {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.pending[key] = struct{}{}
	s.log = s.log.Append(provisional)
	s.mu.Unlock()

	draft := Draft{Body: text, MediaKind: MediaKindText, ClientKey: key}
	if att != nil {
		draft.MediaURL = att.URL
		draft.MediaKind = att.Kind
	}

	canonical, err := s.persister.PersistMessage(ctx, s.conversationID, draft)
	if err != nil {
		// The provisional entry is left as-is: no retry, no rollback.
		return fmt.Errorf("client: persist message: %w", err)
	}
	canonical.ClientKey = key
	canonical.Provisional = false

	if err := s.transport.SendBroadcast(canonical); err != nil {
		s.logger.Warn("broadcast failed after persist",
			zap.String("conversation_id", s.conversationID), zap.Error(err))
		return fmt.Errorf("client: broadcast message: %w", err)
	}
	return nil
}

// classifyAttachment maps the declared content type onto a media kind,
// sniffing the content when no type was declared. It returns a reader that
// still yields the full content.
func classifyAttachment(file *FileAttachment) (MediaKind, string, io.Reader, error) {
	contentType := strings.TrimSpace(file.ContentType)
	body := file.Content

	if contentType == "" {
		head := make([]byte, 3072)
		n, err := io.ReadFull(body, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return "", "", nil, fmt.Errorf("client: read attachment: %w", err)
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), body)
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaKindImage, contentType, body, nil
	case strings.HasPrefix(contentType, "video/"):
		return MediaKindVideo, contentType, body, nil
	case strings.HasPrefix(contentType, "audio/"):
		return MediaKindAudio, contentType, body, nil
	}
	return "", "", nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
}
