// Package ledger defines persistence contracts for the record of edition
// runs: which seed produced which editions, so a collection can be audited
// or reproduced later.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/dnaforge/internal/engine/sampler"
)

var (
	// ErrNotFound indicates a requested run is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a run id, edition number or dna key is
	// already recorded for the run.
	ErrAlreadyExists = errors.New("record already exists")
)

// RunStatus tracks the lifecycle of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusExhausted RunStatus = "exhausted"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one generator invocation.
type Run struct {
	ID          string
	Seed        int64
	Target      int
	Status      RunStatus
	Editions    int
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Edition is one accepted edition of a run.
type Edition struct {
	RunID      string
	Edition    int
	DNA        string
	Key        string
	Hash       string
	Attributes []sampler.Attribute
	CreatedAt  time.Time
}

// Store persists runs and their editions.
type Store interface {
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	CompleteRun(ctx context.Context, id string, status RunStatus, editions int, at time.Time) error
	PutEdition(ctx context.Context, edition Edition) error
	ListEditions(ctx context.Context, runID string) ([]Edition, error)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}
