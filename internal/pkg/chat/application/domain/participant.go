package chat

// ParticipantRole expresses the role within a conversation
// 0 = member (default); 1 = owner (group creator)
type ParticipantRole int16

const (
	ParticipantRoleMember ParticipantRole = 0
	ParticipantRoleOwner  ParticipantRole = 1
)

// Participant captures membership and display identity within a conversation.
// Primary key: (ConversationID, UserID)
type Participant struct {
	ConversationID string          `db:"conversation_id"`
	UserID         string          `db:"user_id"`
	DisplayName    string          `db:"display_name"`
	Role           ParticipantRole `db:"role"`
	LastReadMsg    *string         `db:"last_read_msg"`
}
