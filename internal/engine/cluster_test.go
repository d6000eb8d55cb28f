package engine

import (
	"testing"
	"time"

	"github.com/flemzord/backscroll/pkg/message"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// mkmsg builds a stored message at an offset from the epoch.
func mkmsg(id int64, seq string, offset time.Duration) message.Message {
	return message.Message{
		ID:             id,
		ConversationID: "c1",
		SequenceID:     seq,
		Role:           message.RoleUser,
		Text:           seq,
		CreatedAt:      epoch.Add(offset),
	}
}

// newestFirst reverses the natural oldest-first declaration order used in
// the tests, matching the store's Recent contract.
func newestFirst(msgs ...message.Message) []message.Message {
	out := make([]message.Message, len(msgs))
	for i := range msgs {
		out[len(msgs)-1-i] = msgs[i]
	}
	return out
}

func TestClusterSession_GapBoundary(t *testing.T) {
	t.Parallel()

	// A(0h), B(+1h), C(+71h), trigger D(+71h10m), threshold 2h.
	// Walking back from D: D→C is 10m (in), C→B is 70h (out, stop).
	a := mkmsg(1, "a", 0)
	b := mkmsg(2, "b", time.Hour)
	c := mkmsg(3, "c", 71*time.Hour)
	d := mkmsg(4, "d", 71*time.Hour+10*time.Minute)

	session := clusterSession(d, newestFirst(a, b, c), 2*time.Hour)

	if len(session) != 1 {
		t.Fatalf("session size = %d, want 1", len(session))
	}
	if session[0].SequenceID != "c" {
		t.Errorf("session[0] = %q, want %q", session[0].SequenceID, "c")
	}
}

func TestClusterSession_ThresholdInclusive(t *testing.T) {
	t.Parallel()

	// A gap exactly equal to the threshold is included; one microsecond
	// more halts the scan.
	trigger := mkmsg(3, "t", 2*time.Hour)
	exact := mkmsg(2, "exact", time.Hour)       // gap to trigger: exactly 1h
	over := mkmsg(1, "over", -time.Microsecond) // gap to exact: 1h + 1µs

	session := clusterSession(trigger, newestFirst(over, exact), time.Hour)

	if len(session) != 1 {
		t.Fatalf("session size = %d, want 1", len(session))
	}
	if session[0].SequenceID != "exact" {
		t.Errorf("session[0] = %q, want %q", session[0].SequenceID, "exact")
	}
}

func TestClusterSession_BackwardStop(t *testing.T) {
	t.Parallel()

	// Once a gap violates the threshold, the scan halts: older messages
	// stay excluded even when they would individually sit within the
	// threshold of some other element. Here old1 is one minute from old2
	// (well inside the 5m threshold), but old2 already broke the chain.
	old1 := mkmsg(1, "old1", 89*time.Minute)
	old2 := mkmsg(2, "old2", 90*time.Minute)
	near := mkmsg(3, "near", 98*time.Minute)
	trigger := mkmsg(4, "t", 100*time.Minute)

	session := clusterSession(trigger, newestFirst(old1, old2, near), 5*time.Minute)

	if len(session) != 1 {
		t.Fatalf("session size = %d, want 1", len(session))
	}
	if session[0].SequenceID != "near" {
		t.Errorf("session[0] = %q, want %q", session[0].SequenceID, "near")
	}
}

func TestClusterSession_EmptyWhenFirstGapExceeds(t *testing.T) {
	t.Parallel()

	old := mkmsg(1, "old", 0)
	trigger := mkmsg(2, "t", 3*time.Hour)

	session := clusterSession(trigger, newestFirst(old), time.Hour)
	if len(session) != 0 {
		t.Fatalf("session size = %d, want 0 (trigger stands alone)", len(session))
	}
}

func TestClusterSession_AllOfHistory(t *testing.T) {
	t.Parallel()

	// Five messages one minute apart, generous threshold: the session
	// legitimately spans all of history, oldest first.
	var msgs []message.Message
	for i := range 5 {
		msgs = append(msgs, mkmsg(int64(i+1), string(rune('a'+i)), time.Duration(i)*time.Minute))
	}
	trigger := mkmsg(6, "t", 5*time.Minute)

	session := clusterSession(trigger, newestFirst(msgs...), time.Hour)

	if len(session) != 5 {
		t.Fatalf("session size = %d, want 5", len(session))
	}
	for i := range session {
		if session[i].SequenceID != msgs[i].SequenceID {
			t.Errorf("session[%d] = %q, want %q", i, session[i].SequenceID, msgs[i].SequenceID)
		}
	}
}

func TestClusterSession_SlowButContinuousSurvives(t *testing.T) {
	t.Parallel()

	// Each consecutive gap is 50m with a 1h threshold, but the oldest
	// message is 4h10m from the trigger. Cursor anchoring to the previous
	// included message keeps the whole run.
	var msgs []message.Message
	for i := range 5 {
		msgs = append(msgs, mkmsg(int64(i+1), string(rune('a'+i)), time.Duration(i)*50*time.Minute))
	}
	trigger := mkmsg(6, "t", 250*time.Minute)

	session := clusterSession(trigger, newestFirst(msgs...), time.Hour)
	if len(session) != 5 {
		t.Fatalf("session size = %d, want 5 (continuous run)", len(session))
	}
}

func TestClusterSession_TriggerNotDoubleCounted(t *testing.T) {
	t.Parallel()

	// The trigger was appended before retrieval, so it shows up in the
	// lookback window. It must not appear in its own session.
	a := mkmsg(1, "a", 0)
	trigger := mkmsg(2, "t", time.Minute)

	session := clusterSession(trigger, newestFirst(a, trigger), time.Hour)

	if len(session) != 1 {
		t.Fatalf("session size = %d, want 1", len(session))
	}
	if session[0].SequenceID != "a" {
		t.Errorf("session[0] = %q, want %q", session[0].SequenceID, "a")
	}
}

func TestClusterSession_NegativeGapIncluded(t *testing.T) {
	t.Parallel()

	// A candidate stamped marginally after the trigger (out-of-order
	// arrival) has a negative gap and stays in the session.
	late := mkmsg(1, "late", time.Minute+time.Second)
	trigger := mkmsg(2, "t", time.Minute)

	session := clusterSession(trigger, newestFirst(late), time.Hour)
	if len(session) != 1 {
		t.Fatalf("session size = %d, want 1", len(session))
	}
}
