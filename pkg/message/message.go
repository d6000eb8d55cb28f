// Package message defines the data contract between ingestion boundaries
// and the context engine: the stored conversation message and the context
// window computed from it.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Role identifies the author side of a message.
type Role string

// Supported roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn in a conversation. Messages are immutable once
// stored; the store is append-only.
type Message struct {
	// ID is the storage-local primary key, assigned on append.
	// Zero until the message has been persisted.
	ID int64 `json:"id,omitempty"`

	// ConversationID groups messages into a single conversation.
	ConversationID string `json:"conversation_id"`

	// SenderID identifies the author (end user or the assistant).
	SenderID string `json:"sender_id,omitempty"`

	// SequenceID is the externally supplied, conversation-scoped
	// identifier used for reply lookups. Empty for synthetic messages.
	SequenceID string `json:"sequence_id,omitempty"`

	Role Role   `json:"role"`
	Text string `json:"text"`

	// CreatedAt is the UTC wall-clock timestamp. Microsecond precision
	// is preserved by the store.
	CreatedAt time.Time `json:"created_at"`

	// ReplyToSequenceID references another message's SequenceID within
	// the same conversation. Empty when the message is not a reply.
	ReplyToSequenceID string `json:"reply_to_sequence_id,omitempty"`

	// Raw is the original transport payload, preserved for audit and
	// debugging. Never interpreted by the engine.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Validate checks the fields an ingestion boundary must supply.
func (m *Message) Validate() error {
	var errs []error
	if m.ConversationID == "" {
		errs = append(errs, errors.New("message: conversation_id is required"))
	}
	if !m.Role.Valid() {
		errs = append(errs, fmt.Errorf("message: invalid role %q", m.Role))
	}
	return errors.Join(errs...)
}

// IsReply reports whether the message references an earlier message.
func (m *Message) IsReply() bool {
	return m.ReplyToSequenceID != ""
}

// Same reports whether other refers to the same stored message. Two
// messages match on storage key when both are persisted, otherwise on
// a non-empty sequence id within the same conversation.
func (m *Message) Same(other *Message) bool {
	if other == nil {
		return false
	}
	if m.ID != 0 && other.ID != 0 {
		return m.ID == other.ID
	}
	return m.SequenceID != "" &&
		m.SequenceID == other.SequenceID &&
		m.ConversationID == other.ConversationID
}
