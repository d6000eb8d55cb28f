package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flemzord/backscroll/internal/store"
	"github.com/flemzord/backscroll/pkg/message"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Append persists a message and returns it with its storage key set.
func (s *Store) Append(ctx context.Context, msg message.Message) (message.Message, error) {
	if err := msg.Validate(); err != nil {
		return message.Message{}, err
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.CreatedAt = msg.CreatedAt.UTC().Truncate(time.Microsecond)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, sequence_id, role, text, created_at, reply_to, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ConversationID, msg.SenderID, msg.SequenceID,
		string(msg.Role), msg.Text, msg.CreatedAt.UnixMicro(),
		msg.ReplyToSequenceID, []byte(msg.Raw),
	)
	if err != nil {
		if msg.SequenceID != "" && strings.Contains(err.Error(), "UNIQUE constraint") {
			return message.Message{}, fmt.Errorf("sqlite: append %s/%s: %w",
				msg.ConversationID, msg.SequenceID, store.ErrDuplicateSequence)
		}
		return message.Message{}, fmt.Errorf("sqlite: append message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return message.Message{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	msg.ID = id

	return msg, nil
}

// Recent returns at most limit messages for the conversation, newest
// first. Ties on created_at are broken by insertion order descending.
func (s *Store) Recent(ctx context.Context, conversationID string, limit int) ([]message.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, sequence_id, role, text, created_at, reply_to, raw
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []message.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: recent rows: %w", err)
	}

	return msgs, nil
}

// BySequenceID looks a message up by its conversation-scoped sequence id.
func (s *Store) BySequenceID(ctx context.Context, conversationID, sequenceID string) (message.Message, error) {
	if sequenceID == "" {
		return message.Message{}, store.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, sender_id, sequence_id, role, text, created_at, reply_to, raw
		FROM messages
		WHERE conversation_id = ? AND sequence_id = ?`,
		conversationID, sequenceID,
	)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, store.ErrNotFound
		}
		return message.Message{}, err
	}
	return msg, nil
}

// DeleteOlderThan removes messages created before the cutoff, across all
// conversations. It exists for the operational retention sweep only; the
// engine itself never deletes.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM messages WHERE created_at < ?", cutoff.UTC().UnixMicro(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete older than: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n, nil
}

// Checkpoint truncates the WAL. Run periodically by the maintenance
// scheduler so the log file does not grow without bound.
func (s *Store) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("sqlite: wal checkpoint: %w", err)
	}
	return nil
}

// Count returns the number of messages stored for a conversation.
func (s *Store) Count(ctx context.Context, conversationID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conversationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count messages: %w", err)
	}
	return n, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (message.Message, error) {
	var (
		msg       message.Message
		role      string
		createdAt int64
		raw       []byte
	)

	err := s.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.SequenceID,
		&role, &msg.Text, &createdAt, &msg.ReplyToSequenceID, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return msg, err
		}
		return msg, fmt.Errorf("sqlite: scan message: %w", err)
	}

	msg.Role = message.Role(role)
	msg.CreatedAt = time.UnixMicro(createdAt).UTC()
	if len(raw) > 0 {
		msg.Raw = raw
	}

	return msg, nil
}
