package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Store tracks the temporary files behind each qr_id.
type Store struct {
	dir string

	mu    sync.Mutex
	files map[string]string
}

// NewStore creates dir if needed and returns an empty store rooted there.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "qrform-uploads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir, files: make(map[string]string)}, nil
}

// Dir is the storage directory.
func (s *Store) Dir() string { return s.dir }

// NewID returns a fresh artifact id and the path its PNG should be written to.
func (s *Store) NewID() (string, string) {
	id := uuid.NewString()
	return id, filepath.Join(s.dir, id+".png")
}

// Track registers path under key so it is removed by Remove or Close.
func (s *Store) Track(key, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = path
}

// Path returns the file for key if it is tracked and still on disk.
func (s *Store) Path(key string) (string, bool) {
	s.mu.Lock()
	path, ok := s.files[key]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Remove deletes the file for key. Unknown keys are ignored.
func (s *Store) Remove(key string) bool {
	s.mu.Lock()
	path, ok := s.files[key]
	delete(s.files, key)
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false
	}
	return true
}

// Len is the number of tracked files.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Close removes every tracked file.
func (s *Store) Close() error {
	s.mu.Lock()
	files := s.files
	s.files = make(map[string]string)
	s.mu.Unlock()
	var firstErr error
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
