// Package uniqueness deduplicates DNA sequences across a run and enforces the
// cumulative collision tolerance.
package uniqueness

import (
	"strconv"

	"github.com/louisbranch/dnaforge/internal/engine/dna"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// ErrToleranceExceeded indicates the cumulative collision count reached the
// configured tolerance.
var ErrToleranceExceeded = apperrors.New(apperrors.CodeUniquenessExhausted, "unique dna tolerance exceeded")

// Tracker records accepted uniqueness keys and counts collisions.
//
// The failure counter is cumulative for the lifetime of the tracker and is
// never reset by an accepted sequence. A Tracker is not safe for concurrent
// use.
type Tracker struct {
	tolerance int
	history   map[string]struct{}
	failures  int
}

// NewTracker returns a tracker that fails once failures reach tolerance.
// A tolerance below 1 fails on the first collision.
func NewTracker(tolerance int) *Tracker {
	if tolerance < 1 {
		tolerance = 1
	}
	return &Tracker{
		tolerance: tolerance,
		history:   make(map[string]struct{}),
	}
}

// IsUnique reports whether raw's uniqueness key has not been accepted yet.
func (t *Tracker) IsUnique(raw string) bool {
	_, seen := t.history[dna.Key(raw)]
	return !seen
}

// Accept records raw's uniqueness key.
func (t *Tracker) Accept(raw string) {
	t.history[dna.Key(raw)] = struct{}{}
}

// Reject counts one collision and returns ErrToleranceExceeded once the
// cumulative count reaches the tolerance.
func (t *Tracker) Reject() error {
	t.failures++
	if t.failures >= t.tolerance {
		return apperrors.WithMetadata(ErrToleranceExceeded.Code, ErrToleranceExceeded.Message, map[string]string{
			"failures":  strconv.Itoa(t.failures),
			"tolerance": strconv.Itoa(t.tolerance),
		})
	}
	return nil
}

// Check accepts raw when unique. On collision it counts a failure and reports
// false, with ErrToleranceExceeded when the run must stop.
func (t *Tracker) Check(raw string) (bool, error) {
	if t.IsUnique(raw) {
		t.Accept(raw)
		return true, nil
	}
	return false, t.Reject()
}

// Failures returns the cumulative collision count.
func (t *Tracker) Failures() int {
	return t.failures
}

// Len returns the number of accepted keys.
func (t *Tracker) Len() int {
	return len(t.history)
}
