// Package status tracks pipeline activity for external monitors.
package status

import (
	"sync"
	"time"
)

// State is the tracker's activity state.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
)

// Outcome classifies the most recent finished run.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Snapshot is a point-in-time copy of the tracker state.
type Snapshot struct {
	State              State
	LastOutcome        Outcome
	LastSourcePath     string
	LastFinished       time.Time
	ProcessesPerformed int
}

// Tracker records working/idle state and a running count of completed
// pipeline runs. Safe for concurrent use.
type Tracker struct {
	mu                 sync.Mutex
	state              State
	lastOutcome        Outcome
	lastSourcePath     string
	lastFinished       time.Time
	processesPerformed int
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

// Started marks the tracker as working on sourcePath.
func (t *Tracker) Started(sourcePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateWorking
	t.lastSourcePath = sourcePath
}

// Finished records the outcome of a run and returns to idle. Skipped
// runs do not count as performed processes.
func (t *Tracker) Finished(outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
	t.lastOutcome = outcome
	t.lastFinished = time.Now()
	if outcome == OutcomeSuccess {
		t.processesPerformed++
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:              t.state,
		LastOutcome:        t.lastOutcome,
		LastSourcePath:     t.lastSourcePath,
		LastFinished:       t.lastFinished,
		ProcessesPerformed: t.processesPerformed,
	}
}
