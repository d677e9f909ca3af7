package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type entryKey struct {
	taskID string
	key    string
}

// Memory is an in-process Exchange for single-binary runs and tests.
type Memory struct {
	mu      sync.Mutex
	entries map[entryKey]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[entryKey]json.RawMessage)}
}

func (m *Memory) Pull(_ context.Context, taskIDs []string, key string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, taskID := range taskIDs {
		if v, ok := m.entries[entryKey{taskID: taskID, key: key}]; ok {
			out := make(json.RawMessage, len(v))
			copy(out, v)
			return out, true, nil
		}
	}
	return nil, false, nil
}

func (m *Memory) Push(_ context.Context, taskID, key string, value json.RawMessage) error {
	if err := checkSize(value); err != nil {
		return fmt.Errorf("push %s/%s: %w (%d bytes)", taskID, key, err, len(value))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ek := entryKey{taskID: taskID, key: key}
	if _, ok := m.entries[ek]; ok {
		return fmt.Errorf("push %s/%s: %w", taskID, key, ErrDuplicateKey)
	}
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	m.entries[ek] = stored
	return nil
}
