package task

import (
	"errors"
	"fmt"
)

// SkipError terminates a run early without failing it. The runner maps it to
// the skipped terminal state.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return e.Reason }

func Skip(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

func IsSkip(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}

// PermanentError marks a failure that retrying cannot fix, such as an
// oversized exchange value.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
