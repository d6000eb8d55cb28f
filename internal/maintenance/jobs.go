package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// checkpointer is satisfied by the SQLite store.
type checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// sweeper is satisfied by the SQLite store.
type sweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CheckpointJob truncates the SQLite WAL on a schedule.
type CheckpointJob struct {
	Store        checkpointer
	CronSchedule string
}

func (j *CheckpointJob) Name() string     { return "wal-checkpoint" }
func (j *CheckpointJob) Schedule() string { return j.CronSchedule }

func (j *CheckpointJob) Run(ctx context.Context) error {
	return j.Store.Checkpoint(ctx)
}

// RetentionJob deletes messages older than MaxAge. The engine itself
// never deletes; this exists for operators who bound disk usage.
type RetentionJob struct {
	Store        sweeper
	MaxAge       time.Duration
	CronSchedule string
	Logger       *slog.Logger
}

func (j *RetentionJob) Name() string     { return "retention-sweep" }
func (j *RetentionJob) Schedule() string { return j.CronSchedule }

func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.MaxAge)
	n, err := j.Store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 && j.Logger != nil {
		j.Logger.Info("retention sweep removed messages",
			"removed", n,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return nil
}
