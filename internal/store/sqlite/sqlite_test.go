package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/backscroll/internal/store"
	"github.com/flemzord/backscroll/pkg/message"
)

var base = time.Date(2025, 6, 1, 8, 0, 0, 123456000, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return s
}

func testMsg(conv, seq string, at time.Time) message.Message {
	return message.Message{
		ConversationID: conv,
		SenderID:       "u1",
		SequenceID:     seq,
		Role:           message.RoleUser,
		Text:           "msg " + seq,
		CreatedAt:      at,
	}
}

func TestAppendAndRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	msg := testMsg("c1", "1", base)
	msg.Role = message.RoleAssistant
	msg.ReplyToSequenceID = "0"
	msg.Raw = json.RawMessage(`{"update_id":99}`)

	stored, err := s.Append(ctx, msg)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("storage key not assigned")
	}

	got, err := s.BySequenceID(ctx, "c1", "1")
	if err != nil {
		t.Fatalf("by sequence id: %v", err)
	}

	if got.Role != message.RoleAssistant {
		t.Errorf("role = %q, want assistant", got.Role)
	}
	if got.Text != msg.Text || got.SenderID != msg.SenderID || got.ReplyToSequenceID != "0" {
		t.Errorf("fields not preserved: %+v", got)
	}
	// Microsecond precision survives the integer encoding.
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, base)
	}
	if string(got.Raw) != `{"update_id":99}` {
		t.Errorf("raw payload not preserved verbatim: %s", got.Raw)
	}
}

func TestRecentOrderingAndLimit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := range 6 {
		if _, err := s.Append(ctx, testMsg("c1", fmt.Sprint(i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Recent(ctx, "c1", 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d messages, want 4", len(got))
	}
	for i, want := range []string{"5", "4", "3", "2"} {
		if got[i].SequenceID != want {
			t.Errorf("recent[%d] = %q, want %q", i, got[i].SequenceID, want)
		}
	}

	if got, err := s.Recent(ctx, "c1", 0); err != nil || got != nil {
		t.Errorf("recent with limit 0 = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestRecentTieBreakByInsertion(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		if _, err := s.Append(ctx, testMsg("c1", fmt.Sprint(i), base)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Recent(ctx, "c1", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	for i, want := range []string{"2", "1", "0"} {
		if got[i].SequenceID != want {
			t.Errorf("recent[%d] = %q, want %q", i, got[i].SequenceID, want)
		}
	}
}

func TestBySequenceIDNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, testMsg("c1", "1", base)); err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, err := s.BySequenceID(ctx, "c1", "2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.BySequenceID(ctx, "c2", "1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for other conversation", err)
	}
	if _, err := s.BySequenceID(ctx, "c1", ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for empty sequence id", err)
	}
}

func TestDuplicateSequenceRejected(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, testMsg("c1", "42", base)); err != nil {
		t.Fatalf("append: %v", err)
	}

	_, err := s.Append(ctx, testMsg("c1", "42", base.Add(time.Second)))
	if !errors.Is(err, store.ErrDuplicateSequence) {
		t.Errorf("err = %v, want ErrDuplicateSequence", err)
	}

	// Same sequence id in another conversation is allowed.
	if _, err := s.Append(ctx, testMsg("c2", "42", base)); err != nil {
		t.Errorf("cross-conversation append: %v", err)
	}

	// Synthetic messages carry no sequence id and never collide.
	for range 2 {
		if _, err := s.Append(ctx, testMsg("c1", "", base)); err != nil {
			t.Errorf("synthetic append: %v", err)
		}
	}
}

func TestConversationIsolation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := range 4 {
		if _, err := s.Append(ctx, testMsg("a", fmt.Sprintf("a%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("append a: %v", err)
		}
		if _, err := s.Append(ctx, testMsg("b", fmt.Sprintf("b%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("append b: %v", err)
		}
	}

	got, err := s.Recent(ctx, "a", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d messages, want 4", len(got))
	}
	for _, m := range got {
		if m.ConversationID != "a" {
			t.Errorf("message %q leaked from conversation %q", m.SequenceID, m.ConversationID)
		}
	}
}

func TestDeleteOlderThan(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, testMsg("c1", "old", base)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.Append(ctx, testMsg("c1", "new", base.Add(48*time.Hour))); err != nil {
		t.Fatalf("append: %v", err)
	}

	n, err := s.DeleteOlderThan(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d rows, want 1", n)
	}

	count, err := s.Count(ctx, "c1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if _, err := s.BySequenceID(ctx, "c1", "new"); err != nil {
		t.Errorf("survivor missing: %v", err)
	}
}

func TestCheckpoint(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Checkpoint(context.Background()); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Append(context.Background(), testMsg("c1", "1", base)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Migration is idempotent and the log survives a restart.
	s, err = Open(Config{Path: path}, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.BySequenceID(context.Background(), "c1", "1")
	if err != nil {
		t.Fatalf("by sequence id after reopen: %v", err)
	}
	if got.Text != "msg 1" {
		t.Errorf("text = %q, want %q", got.Text, "msg 1")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if _, err := Open(Config{}, nil); err == nil {
		t.Error("expected error for missing path")
	}

	cfg := Config{Path: "x.db", BusyTimeout: -1}
	if err := cfg.validate(); err == nil {
		t.Error("expected error for negative busy_timeout")
	}
}
