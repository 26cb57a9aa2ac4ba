package storage

import (
	"context"
	"sync"
)

type memoryKV struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryKV crea un KV en memoria; no sobrevive al proceso.
func NewMemoryKV() KV {
	return &memoryKV{
		items: make(map[string]string),
	}
}

func (s *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *memoryKV) SetMany(_ context.Context, entries map[string]string) error {
	if err := checkKeys(entries); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.items[k] = v
	}
	return nil
}

func (s *memoryKV) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}
