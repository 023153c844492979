package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage is a process-local Storage, used by tests and by the CLI's
// dry-run mode.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func memKey(path string) string {
	return strings.Trim(path, "/")
}

func (s *MemoryStorage) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[memKey(path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorage) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[memKey(path)] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey(path)
	if _, ok := s.blobs[k]; !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	delete(s.blobs, k)
	return nil
}

func (s *MemoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir := memKey(prefix)
	if dir != "" {
		dir += "/"
	}
	var paths []string
	for k := range s.blobs {
		rest, ok := strings.CutPrefix(k, dir)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *MemoryStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[memKey(path)]
	return ok, nil
}
