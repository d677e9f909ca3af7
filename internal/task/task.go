package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskferry-labs/taskferry-go/internal/exchange"
)

// State is the lifecycle position of a single task run.
type State string

const (
	StatePending         State = "pending"
	StateResolvingParams State = "resolving_params"
	StateFetching        State = "fetching"
	StateMaterializing   State = "materializing"
	StateDelivering      State = "delivering"
	StatePublishing      State = "publishing"
	StateSucceeded       State = "succeeded"
	StateSkipped         State = "skipped"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateSkipped || s == StateFailed
}

// Operator is a schedulable unit of work. Execute runs the whole pipeline
// synchronously and returns nil on success, a SkipError for a non-failing
// early exit, or any other error for failure.
type Operator interface {
	Execute(ctx context.Context, rc *RunContext) error
}

// RunContext carries the per-run collaborators an operator needs: identity,
// logging, and the cross-task exchange.
type RunContext struct {
	TaskID   string
	RunID    string
	Log      *slog.Logger
	Exchange exchange.Exchange

	state   State
	history []State
}

func NewRunContext(taskID string, log *slog.Logger, ex exchange.Exchange) *RunContext {
	if log == nil {
		log = slog.Default()
	}
	return &RunContext{
		TaskID:   taskID,
		RunID:    uuid.NewString(),
		Log:      log.With("task_id", taskID),
		Exchange: ex,
		state:    StatePending,
		history:  []State{StatePending},
	}
}

// Transition records a state change. Moving out of a terminal state is a
// programming error and panics.
func (rc *RunContext) Transition(s State) {
	if rc.state.Terminal() {
		panic(fmt.Sprintf("task %s: transition %s -> %s after terminal state", rc.TaskID, rc.state, s))
	}
	rc.state = s
	rc.history = append(rc.history, s)
	rc.Log.Debug("task state", "state", string(s))
}

func (rc *RunContext) State() State { return rc.state }

func (rc *RunContext) History() []State {
	out := make([]State, len(rc.history))
	copy(out, rc.history)
	return out
}
