package exchange

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres stores exchange entries in a database table so that tasks running
// in separate processes can share values. Write-once is enforced by the
// primary key on (task_id, key).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) (*Postgres, error) {
	if db == nil {
		return nil, fmt.Errorf("exchange: db is required")
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS exchange_entries (
    task_id    TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    value      JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (task_id, key)
)`
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure exchange schema: %w", err)
	}
	return nil
}

func (p *Postgres) Pull(ctx context.Context, taskIDs []string, key string) (json.RawMessage, bool, error) {
	for _, taskID := range taskIDs {
		var value json.RawMessage
		err := p.db.QueryRowContext(ctx,
			`SELECT value FROM exchange_entries WHERE task_id = $1 AND key = $2`,
			taskID, key,
		).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("pull %s/%s: %w", taskID, key, err)
		}
		return value, true, nil
	}
	return nil, false, nil
}

func (p *Postgres) Push(ctx context.Context, taskID, key string, value json.RawMessage) error {
	if err := checkSize(value); err != nil {
		return fmt.Errorf("push %s/%s: %w (%d bytes)", taskID, key, err, len(value))
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO exchange_entries (task_id, key, value) VALUES ($1, $2, $3)`,
		taskID, key, []byte(value),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("push %s/%s: %w", taskID, key, ErrDuplicateKey)
		}
		return fmt.Errorf("push %s/%s: %w", taskID, key, err)
	}
	return nil
}
