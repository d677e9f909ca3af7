// Package runner executes task definitions in order against a shared
// exchange, recording each task's terminal state.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskferry-labs/taskferry-go/internal/exchange"
	"github.com/taskferry-labs/taskferry-go/internal/operators/apitostorage"
	"github.com/taskferry-labs/taskferry-go/internal/operators/sqltoslack"
	"github.com/taskferry-labs/taskferry-go/internal/task"
)

// Deps are the external collaborators operators are built from. Only the
// collaborators the definition actually uses need to be non-nil.
type Deps struct {
	Source   apitostorage.Querier
	Store    apitostorage.Putter
	DB       sqltoslack.Querier
	Slack    sqltoslack.FileSender
	Exchange exchange.Exchange
	Log      *slog.Logger
}

type Runner struct {
	deps Deps
}

func New(deps Deps) (*Runner, error) {
	if deps.Exchange == nil {
		return nil, fmt.Errorf("runner: exchange is required")
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Runner{deps: deps}, nil
}

// TaskResult is one task's outcome within a run.
type TaskResult struct {
	TaskID  string
	State   task.State
	History []task.State
	Err     error
}

// Run executes every task in order. The first failure stops the run; tasks
// after it stay pending in the returned results. The returned error is the
// failing task's error, or nil when every task succeeded or skipped.
func (r *Runner) Run(ctx context.Context, def Definition) ([]TaskResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	results := make([]TaskResult, 0, len(def.Tasks))
	var failed error
	for _, td := range def.Tasks {
		if failed != nil {
			results = append(results, TaskResult{TaskID: td.ID, State: task.StatePending})
			continue
		}

		rc := task.NewRunContext(td.ID, r.deps.Log, r.deps.Exchange)
		op, err := r.buildOperator(td)
		if err == nil {
			rc.Log.Info("task starting", "run_id", rc.RunID, "type", td.Type)
			err = op.Execute(ctx, rc)
		}

		switch {
		case err == nil:
			rc.Transition(task.StateSucceeded)
			rc.Log.Info("task succeeded", "run_id", rc.RunID)
		case task.IsSkip(err):
			rc.Transition(task.StateSkipped)
			rc.Log.Info("task skipped", "run_id", rc.RunID, "reason", err.Error())
			err = nil
		default:
			rc.Transition(task.StateFailed)
			rc.Log.Error("task failed", "run_id", rc.RunID, "error", err)
			failed = fmt.Errorf("task %q: %w", td.ID, err)
		}

		results = append(results, TaskResult{
			TaskID:  td.ID,
			State:   rc.State(),
			History: rc.History(),
			Err:     err,
		})
	}
	return results, failed
}

func (r *Runner) buildOperator(td TaskDef) (task.Operator, error) {
	switch td.Type {
	case TypeAPIToStorage:
		if r.deps.Source == nil || r.deps.Store == nil {
			return nil, fmt.Errorf("task %q needs an api client and an object store", td.ID)
		}
		return apitostorage.New(td.APIToStorage.toConfig(), r.deps.Source, r.deps.Store)
	case TypeSQLToSlack:
		if r.deps.DB == nil || r.deps.Slack == nil {
			return nil, fmt.Errorf("task %q needs a database and a slack sender", td.ID)
		}
		cfg, err := td.SQLToSlack.toConfig()
		if err != nil {
			return nil, err
		}
		return sqltoslack.New(cfg, r.deps.DB, r.deps.Slack)
	default:
		return nil, fmt.Errorf("task %q has unknown type %q", td.ID, td.Type)
	}
}
