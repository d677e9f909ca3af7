package sqltoslack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskferry-labs/taskferry-go/internal/materialize"
)

// EmptyPolicy selects what happens when the query returns no rows.
type EmptyPolicy string

const (
	// EmptySend delivers an empty file of the selected format.
	EmptySend EmptyPolicy = "send"
	// EmptySkip ends the run in the skipped terminal state, delivering nothing.
	EmptySkip EmptyPolicy = "skip"
	// EmptyError fails the run, delivering nothing.
	EmptyError EmptyPolicy = "error"
)

func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch EmptyPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case EmptySend, "":
		return EmptySend, nil
	case EmptySkip:
		return EmptySkip, nil
	case EmptyError:
		return EmptyError, nil
	default:
		return "", fmt.Errorf("invalid empty-result policy %q, expected send, skip or error", s)
	}
}

// Config describes one SQL-to-Slack transfer. The filename picks the output
// format and optional compression; anything it cannot express is rejected
// before the database or Slack is touched.
type Config struct {
	SQL  string
	Args []any

	// Filename is the display name of the uploaded file, e.g. "report.csv"
	// or "report.json.zip".
	Filename string

	Channels       []string
	InitialComment string
	Title          string

	OnEmpty EmptyPolicy
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SQL) == "" {
		return errors.New("sql is required")
	}
	if strings.TrimSpace(c.Filename) == "" {
		return errors.New("filename is required")
	}
	if _, _, err := materialize.ParseFilename(c.Filename, materialize.TabularFormats); err != nil {
		return err
	}
	switch c.OnEmpty {
	case EmptySend, EmptySkip, EmptyError:
	case "":
		// Defaulted to send by the constructor.
	default:
		return fmt.Errorf("invalid empty-result policy %q, expected send, skip or error", c.OnEmpty)
	}
	return nil
}
