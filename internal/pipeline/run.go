package pipeline

import (
	"sync"
	"time"

	"stocktag/internal/config"
)

// RunState is the lifecycle of a pipeline run.
type RunState string

const (
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateCancelled RunState = "cancelled"
)

// Terminal reports whether the state is final.
func (s RunState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// ItemOutcome is the final per-item record carried in the run summary.
type ItemOutcome struct {
	ItemID   string
	Filename string
	Status   string
	Attempts int
	Err      string
}

// Summary is the final report of a run: aggregate counters plus a per-item
// outcome with a diagnosable reason for every failure.
type Summary struct {
	RunID     string
	State     RunState
	Counters  Counters
	StartedAt time.Time
	EndedAt   time.Time
	Items     []ItemOutcome
}

// Run is one batch execution session with a fixed configuration snapshot.
// All mutable run state is scoped here; nothing is process-global, so tests
// can drive concurrent runs.
type Run struct {
	ID      string
	Config  config.RunConfig
	ItemIDs []string

	// policy is the scheduler's backoff shape with this run's retry cap.
	policy RetryPolicy

	mu         sync.Mutex
	state      RunState
	counters   Counters
	startedAt  time.Time
	endedAt    time.Time
	cancelled  bool
	cancelOnce sync.Once
	cancelCh   chan struct{}
	done       chan struct{}
	summary    *Summary
}

// State returns the current run state.
func (r *Run) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Counters returns a snapshot of the aggregate counters.
func (r *Run) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// Cancel requests cooperative cancellation. In-flight requests are allowed
// to finish; no new item is dispatched. Cancellation is monotonic: a
// cancelled run never resumes.
func (r *Run) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
	r.cancelOnce.Do(func() { close(r.cancelCh) })
}

// Cancelled reports whether cancellation has been requested.
func (r *Run) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Wait blocks until the run reaches a terminal state and returns the
// summary.
func (r *Run) Wait() *Summary {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}
