package client

// MessageLog is the in-memory ordered log of messages for one open
// conversation. Order is append order, never timestamp order: provisional
// entries are appended immediately and later replaced in place.
//
// All transitions are pure: they return a fresh log and never mutate the
// receiver or their arguments, so replaying the same action sequence over the
// same starting log always yields the same result.
type MessageLog []Message

// SetAll replaces the log wholesale with the server-provided history,
// preserving the server's ordering.
func (l MessageLog) SetAll(msgs []Message) MessageLog {
	out := make(MessageLog, len(msgs))
	copy(out, msgs)
	return out
}

// Append adds one message to the end of the log. It is used both for the
// sender's own provisional entry and for inbound messages from other senders.
func (l MessageLog) Append(m Message) MessageLog {
	out := make(MessageLog, len(l), len(l)+1)
	copy(out, l)
	return append(out, m)
}

// Reconcile replaces the entry whose id equals provisionalID with final,
// keeping its position. When no entry matches, the log is returned unchanged;
// a miss is not an error and never duplicates the message.
func (l MessageLog) Reconcile(provisionalID string, final Message) MessageLog {
	for i := range l {
		if l[i].ID == provisionalID {
			out := make(MessageLog, len(l))
			copy(out, l)
			out[i] = final
			return out
		}
	}
	return l
}
