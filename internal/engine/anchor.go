package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/flemzord/backscroll/internal/store"
	"github.com/flemzord/backscroll/pkg/message"
)

// AnchorResult is the outcome of resolving a trigger's reply reference.
type AnchorResult struct {
	// Message is the referenced message when Found is true.
	Message message.Message

	// Found is false when the reference predates stored history or was
	// never recorded. That is an expected outcome: callers fall back to
	// session-only context.
	Found bool
}

// resolveAnchor fetches the message the trigger replies to. A missing
// reference yields Found=false, nil error; only store failures are
// errors. Self-references pass through unmodified — if the lookup lands
// on the trigger itself, window flattening removes the duplicate.
func (e *Engine) resolveAnchor(ctx context.Context, trigger message.Message) (AnchorResult, error) {
	if !trigger.IsReply() {
		return AnchorResult{}, nil
	}

	msg, err := e.store.BySequenceID(ctx, trigger.ConversationID, trigger.ReplyToSequenceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.logger.Debug("reply anchor predates recorded history",
				"conversation_id", trigger.ConversationID,
				"reply_to", trigger.ReplyToSequenceID,
			)
			return AnchorResult{}, nil
		}
		return AnchorResult{}, fmt.Errorf("engine: resolve anchor: %w", err)
	}

	return AnchorResult{Message: msg, Found: true}, nil
}
