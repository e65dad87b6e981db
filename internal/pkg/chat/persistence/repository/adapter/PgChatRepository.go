package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"
	repository "github.com/harshit91796/unseen-Price/internal/pkg/chat/persistence/repository/port"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation, participants []chat.Participant, requesterID string) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx,
		"INSERT INTO chat.conversation (kind, created_at) VALUES ($1, $2) RETURNING id::text",
		c.Kind, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	for _, p := range participants {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, display_name, role)
			VALUES ($1::uuid, $2::uuid, $3, $4)
			ON CONFLICT (conversation_id, user_id)
			DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role
		`, id, p.UserID, p.DisplayName, p.Role)
		if err != nil {
			return "", err
		}
	}

	if c.Kind == chat.KindRequest {
		var requestID string
		err = tx.QueryRow(ctx, `
			INSERT INTO chat.message_request (conversation_id, sender_id, status, created_at)
			VALUES ($1::uuid, $2::uuid, $3, $4)
			RETURNING id::text
		`, id, requesterID, chat.RequestPending, c.CreatedAt).Scan(&requestID)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(ctx,
			"UPDATE chat.conversation SET request_id = $2::uuid WHERE id = $1::uuid",
			id, requestID)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, kind, created_at, request_id::text, last_message, last_message_at
		FROM chat.conversation
		WHERE id = $1::uuid
	`, conversationID).Scan(&c.ID, &c.Kind, &c.CreatedAt, &c.RequestID, &c.LastMessage, &c.LastMessageAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.kind, c.created_at, c.request_id::text, c.last_message, c.last_message_at
		FROM chat.conversation c
		JOIN chat.participant p ON p.conversation_id = c.id
		WHERE p.user_id = $1::uuid
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Conversation
	for rows.Next() {
		var c chat.Conversation
		if err := rows.Scan(&c.ID, &c.Kind, &c.CreatedAt, &c.RequestID, &c.LastMessage, &c.LastMessageAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) ListParticipants(ctx context.Context, conversationID string) ([]chat.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id::text, user_id::text, display_name, role, last_read_msg::text
		FROM chat.participant
		WHERE conversation_id = $1::uuid
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Participant
	for rows.Next() {
		var p chat.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.DisplayName, &p.Role, &p.LastReadMsg); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	saved := m
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (
			conversation_id, sender_id, sender_name, created_at, body, media_kind, media_url, client_key
		) VALUES ($1::uuid, $2::uuid, $3, now(), $4, $5, $6, $7)
		RETURNING id::text, created_at
	`, m.ConversationID, m.SenderID, m.SenderName, m.Body, m.MediaKind, m.MediaURL, m.ClientKey).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, sender_name, created_at, body, media_kind, media_url, client_key
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.SenderName,
			&msg.CreatedAt, &msg.Body, &msg.MediaKind, &msg.MediaURL, &msg.ClientKey); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) GetMessageRequest(ctx context.Context, requestID string) (*chat.MessageRequest, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var req chat.MessageRequest
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, status, created_at
		FROM chat.message_request
		WHERE id = $1::uuid
	`, requestID).Scan(&req.ID, &req.ConversationID, &req.SenderID, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PgChatRepository) ResolveMessageRequest(ctx context.Context, requestID string, status chat.RequestStatus) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		"UPDATE chat.message_request SET status = $2 WHERE id = $1::uuid",
		requestID, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if status == chat.RequestAccepted {
		_, err = tx.Exec(ctx, `
			UPDATE chat.conversation SET kind = $2
			WHERE request_id = $1::uuid AND kind = $3
		`, requestID, chat.KindDirect, chat.KindRequest)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PgChatRepository) UpdateConversationPreview(ctx context.Context, conversationID string, preview string, at time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	// A zero row count means the conversation is gone or a newer preview
	// already landed; both are fine.
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.conversation
		SET last_message = $2, last_message_at = $3
		WHERE id = $1::uuid AND (last_message_at IS NULL OR last_message_at <= $3)
	`, conversationID, preview, at)
	return err
}
