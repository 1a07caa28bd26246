package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileUserStore keeps the full user set in a single pretty-printed JSON
// array on disk. Every Load re-reads the file; nothing is cached.
type FileUserStore struct {
	path string
	mu   sync.Mutex
}

// NewFileUserStore creates a store backed by the file at path. The parent
// directory and an empty-array file are created lazily on first access.
func NewFileUserStore(path string) *FileUserStore {
	return &FileUserStore{path: path}
}

// Path returns the location of the backing file.
func (s *FileUserStore) Path() string {
	return s.path
}

func (s *FileUserStore) ensureFile() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return os.WriteFile(s.path, []byte("[]"), 0644)
	} else if err != nil {
		return err
	}
	return nil
}

func (s *FileUserStore) load() ([]User, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []User{}, nil
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		// Corrupt store file: unrecoverable for this call.
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (s *FileUserStore) save(users []User) error {
	if err := s.ensureFile(); err != nil {
		return err
	}

	if users == nil {
		users = []User{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileUserStore) Load() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileUserStore) Save(users []User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(users)
}

// Update runs fn against the on-disk record set and writes the result back,
// all under one lock.
func (s *FileUserStore) Update(fn func(users []User) ([]User, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	updated, err := fn(users)
	if err != nil {
		return err
	}
	return s.save(updated)
}
