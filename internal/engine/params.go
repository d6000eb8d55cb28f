// Package engine implements context retrieval over the conversation log:
// reply-anchor resolution, time-gap session clustering, and window
// assembly.
package engine

import (
	"errors"
	"fmt"
	"time"
)

// Params holds the tuning knobs for a retrieval. Both knobs are
// caller-supplied; the clustering algorithm itself bakes in no defaults.
type Params struct {
	// LookbackLimit is the maximum number of stored messages inspected
	// per retrieval. It bounds both cost and session length.
	LookbackLimit int `yaml:"lookback_limit"`

	// GapThreshold is the maximum silence between two consecutive
	// messages for them to belong to the same session. A gap exactly
	// equal to the threshold is still inside the session.
	GapThreshold time.Duration `yaml:"gap_threshold"`
}

// withDefaults returns a copy of p with zero-valued fields replaced by
// sensible defaults. Used only when loading configuration; per-call
// overrides are validated as given.
func (p Params) withDefaults() Params {
	if p.LookbackLimit == 0 {
		p.LookbackLimit = 25
	}
	if p.GapThreshold == 0 {
		p.GapThreshold = time.Hour
	}
	return p
}

// Validate rejects parameter values that indicate a caller bug. It runs
// before any store I/O.
func (p Params) Validate() error {
	var errs []error
	if p.LookbackLimit <= 0 {
		errs = append(errs, fmt.Errorf("engine: lookback_limit must be positive, got %d", p.LookbackLimit))
	}
	if p.GapThreshold <= 0 {
		errs = append(errs, fmt.Errorf("engine: gap_threshold must be positive, got %s", p.GapThreshold))
	}
	return errors.Join(errs...)
}
