package tabular

import (
	"database/sql"
	"fmt"
)

// Result is a fully materialized query result. Rows hold driver values
// normalized so that []byte column data becomes string.
type Result struct {
	Columns []string
	Rows    [][]any
}

func (r Result) Empty() bool { return len(r.Rows) == 0 }

// FromRows drains rows into a Result. The caller keeps ownership of rows and
// should still close them; FromRows only iterates.
func FromRows(rows *sql.Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("columns: %w", err)
	}

	result := Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("scan row %d: %w", len(result.Rows), err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
