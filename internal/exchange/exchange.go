package exchange

import (
	"context"
	"encoding/json"
	"errors"
)

// MaxValueSize is the largest serialized value, in bytes, the exchange will
// accept. Values are measured by their JSON byte length, not by any in-memory
// estimate. Chosen to stay under the engine's 48KB transport limit.
const MaxValueSize = 49344

// DefaultKey is used when a producer publishes without naming a key.
const DefaultKey = "return_value"

var (
	// ErrValueTooLarge is returned by Push for any value whose serialized
	// size is MaxValueSize bytes or more. No implementation ever stores
	// such a value.
	ErrValueTooLarge = errors.New("exchange: value exceeds size ceiling")

	// ErrDuplicateKey is returned when a task pushes the same key twice.
	ErrDuplicateKey = errors.New("exchange: key already written for task")
)

// Exchange is the cross-task key/value store tasks use to pass small values
// to downstream tasks. Writes are append-only and write-once per (task, key);
// readers look values up by producing-task ID and key.
type Exchange interface {
	// Pull returns the first value found for key among the given producing
	// task IDs, in order. The second return is false when no producer has
	// written the key.
	Pull(ctx context.Context, taskIDs []string, key string) (json.RawMessage, bool, error)

	// Push stores value under (taskID, key). It fails with ErrValueTooLarge
	// for oversized values and ErrDuplicateKey on rewrite.
	Push(ctx context.Context, taskID, key string, value json.RawMessage) error
}

func checkSize(value json.RawMessage) error {
	if len(value) >= MaxValueSize {
		return ErrValueTooLarge
	}
	return nil
}
