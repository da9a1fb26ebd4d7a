package feasibility

import (
	"fmt"
	"sync"
)

// RunStatus is the lifecycle state of a single analysis run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusComputing RunStatus = "computing"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// IsValid checks if the status is known
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusComputing, RunStatusComplete, RunStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusComplete || s == RunStatusFailed
}

// CanTransition reports whether moving from s to next is allowed
func (s RunStatus) CanTransition(next RunStatus) bool {
	switch s {
	case RunStatusPending:
		return next == RunStatusComputing || next == RunStatusFailed
	case RunStatusComputing:
		return next == RunStatusComplete || next == RunStatusFailed
	default:
		return false
	}
}

// RunState tracks one run through pending -> computing -> complete | failed
type RunState struct {
	mu sync.RWMutex

	ProjectID string
	Mode      Mode
	Status    RunStatus
	Err       error
}

// NewRunState creates a run in the pending state
func NewRunState(projectID string, mode Mode) *RunState {
	return &RunState{
		ProjectID: projectID,
		Mode:      mode,
		Status:    RunStatusPending,
	}
}

// Start marks the run as computing
func (r *RunState) Start() error {
	return r.transition(RunStatusComputing, nil)
}

// Complete marks the run as complete
func (r *RunState) Complete() error {
	return r.transition(RunStatusComplete, nil)
}

// Fail marks the run as failed with the cause
func (r *RunState) Fail(err error) error {
	return r.transition(RunStatusFailed, err)
}

// Current returns the current status
func (r *RunState) Current() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

func (r *RunState) transition(next RunStatus, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next)
	}
	r.Status = next
	if cause != nil {
		r.Err = cause
	}
	return nil
}
