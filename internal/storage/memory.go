package storage

import "sync"

// Memory is an in-memory Backend for tests and throwaway deployments.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Name identifies the backend.
func (m *Memory) Name() string {
	return "memory"
}

// ApplyBatch applies the batch under one lock acquisition.
func (m *Memory) ApplyBatch(batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range batch.ops {
		if op.delete {
			delete(m.data, string(op.key))
			continue
		}
		value := make([]byte, len(op.value))
		copy(value, op.value)
		m.data[string(op.key)] = value
	}
	return nil
}

// ForEach visits every pair. Order is unspecified.
func (m *Memory) ForEach(fn func(key, value []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for k, v := range m.data {
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
