package storage

import (
	"context"
	"sync"
)

// Memory keeps objects in a map. Used when S3 is not configured and in tests.
type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Base    string
}

func NewMemory() *Memory {
	return &Memory{Objects: map[string][]byte{}, Base: "memory://objects"}
}

func (m *Memory) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = append([]byte(nil), body...)
	return m.URL(key), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

func (m *Memory) URL(key string) string { return m.Base + "/" + key }
