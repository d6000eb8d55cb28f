// Package store defines the append-only conversation log interface and an
// in-memory implementation suitable for tests and ephemeral deployments.
package store

import (
	"context"
	"errors"

	"github.com/flemzord/backscroll/pkg/message"
)

// ErrNotFound is returned by BySequenceID when no stored message carries
// the requested sequence id. It is an expected outcome, not a failure:
// the referenced message may simply predate recorded history.
var ErrNotFound = errors.New("store: message not found")

// ErrDuplicateSequence is returned by Append when the message's sequence
// id is already present in the conversation.
var ErrDuplicateSequence = errors.New("store: duplicate sequence id")

// Store is the persistent, append-only conversation log. All operations
// are scoped by conversation id; implementations must never leak messages
// across conversations and must be safe for concurrent use.
type Store interface {
	// Append persists a message and returns it with its storage key set.
	// Stored rows are never mutated. If CreatedAt is zero it is stamped
	// with the current UTC time.
	Append(ctx context.Context, msg message.Message) (message.Message, error)

	// Recent returns at most limit messages for the conversation, newest
	// first, ordered by CreatedAt with ties broken by insertion order.
	Recent(ctx context.Context, conversationID string, limit int) ([]message.Message, error)

	// BySequenceID looks a message up by its conversation-scoped sequence
	// id. Returns ErrNotFound when absent.
	BySequenceID(ctx context.Context, conversationID, sequenceID string) (message.Message, error)
}
