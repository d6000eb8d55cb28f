package engine

import (
	"slices"
	"time"

	"github.com/flemzord/backscroll/pkg/message"
)

// clusterSession partitions the newest-first candidate list into the
// trailing run of messages that belong to the same session as the
// trigger, using only timing.
//
// The scan walks from newest to oldest with a cursor that starts at the
// trigger's timestamp and advances to each included message's timestamp.
// Anchoring the cursor to the previous included message (rather than the
// trigger) lets a slow-but-continuous conversation survive while a stale
// burst hours earlier stays excluded. The first gap strictly greater
// than the threshold halts the scan: everything older is out, even if it
// would individually sit within the threshold of some other element.
//
// The returned session is oldest first. The trigger itself is filtered
// out of the candidates so an already-appended trigger is not counted
// twice.
func clusterSession(trigger message.Message, newestFirst []message.Message, gapThreshold time.Duration) []message.Message {
	var session []message.Message
	cursor := trigger.CreatedAt

	for i := range newestFirst {
		candidate := newestFirst[i]
		if candidate.Same(&trigger) {
			continue
		}

		// A negative gap (candidate newer than the cursor) stays in:
		// ordering is re-derived from timestamps, and equality with the
		// threshold is inclusive.
		if cursor.Sub(candidate.CreatedAt) > gapThreshold {
			break
		}

		session = append(session, candidate)
		cursor = candidate.CreatedAt
	}

	slices.Reverse(session)
	return session
}
