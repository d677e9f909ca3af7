// Package sqltoslack runs a SQL query, renders the result as a file and
// uploads it to Slack channels.
package sqltoslack

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskferry-labs/taskferry-go/internal/materialize"
	"github.com/taskferry-labs/taskferry-go/internal/tabular"
	"github.com/taskferry-labs/taskferry-go/internal/task"
)

// Querier is the slice of *sql.DB the operator uses.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// FileSender is the messaging sink contract.
type FileSender interface {
	SendFile(ctx context.Context, channels []string, path, filename, comment, title string) error
}

type Operator struct {
	cfg    Config
	db     Querier
	sender FileSender

	format      materialize.Format
	compression materialize.Compression
	onEmpty     EmptyPolicy
}

func New(cfg Config, db Querier, sender FileSender) (*Operator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sql_to_slack config: %w", err)
	}
	if db == nil {
		return nil, fmt.Errorf("sql_to_slack: database is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sql_to_slack: slack sender is required")
	}
	format, compression, err := materialize.ParseFilename(cfg.Filename, materialize.TabularFormats)
	if err != nil {
		return nil, fmt.Errorf("sql_to_slack config: %w", err)
	}
	onEmpty := cfg.OnEmpty
	if onEmpty == "" {
		onEmpty = EmptySend
	}
	return &Operator{
		cfg:         cfg,
		db:          db,
		sender:      sender,
		format:      format,
		compression: compression,
		onEmpty:     onEmpty,
	}, nil
}

func (o *Operator) Execute(ctx context.Context, rc *task.RunContext) error {
	rc.Log.Info("transferring sql result to slack",
		"filename", o.cfg.Filename, "format", string(o.format), "channels", o.cfg.Channels)

	rc.Transition(task.StateFetching)
	result, err := o.fetch(ctx)
	if err != nil {
		return err
	}

	if result.Empty() {
		switch o.onEmpty {
		case EmptySkip:
			return task.Skip("query returned no rows, skipping delivery")
		case EmptyError:
			return fmt.Errorf("query returned no rows and the empty-result policy is %q", EmptyError)
		}
	}

	rc.Transition(task.StateMaterializing)
	path, cleanup, err := materialize.TempFile(o.cfg.Filename)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := materialize.WriteResultFile(path, o.cfg.Filename, o.format, o.compression, result); err != nil {
		return fmt.Errorf("materialize %s: %w", o.cfg.Filename, err)
	}

	rc.Transition(task.StateDelivering)
	err = o.sender.SendFile(ctx, o.cfg.Channels, path, o.cfg.Filename, o.cfg.InitialComment, o.cfg.Title)
	if err != nil {
		return fmt.Errorf("deliver %s: %w", o.cfg.Filename, err)
	}
	return nil
}

func (o *Operator) fetch(ctx context.Context) (tabular.Result, error) {
	rows, err := o.db.QueryContext(ctx, o.cfg.SQL, o.cfg.Args...)
	if err != nil {
		return tabular.Result{}, fmt.Errorf("run query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	result, err := tabular.FromRows(rows)
	if err != nil {
		return tabular.Result{}, fmt.Errorf("read query result: %w", err)
	}
	return result, nil
}
