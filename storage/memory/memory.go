// Package memory is a DocumentStore that keeps documents in process memory. Used by tests and
// by the "memory" storage driver.
package memory

import (
	"context"
	"sync"

	"github.com/coursebox/backend/core/store"
)

type (
	Store struct {
		docs *docTable
	}

	docTable struct {
		sync.RWMutex
		table map[string][]byte
	}
)

var _ store.DocumentStore = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{docs: &docTable{table: make(map[string][]byte)}}
}

func (s *Store) Load(ctx context.Context, name string) (store.Document, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}
	s.docs.RLock()
	defer s.docs.RUnlock()

	data, ok := s.docs.table[name]
	if !ok {
		return store.Document{}, nil
	}
	return store.Decode(name, data)
}

func (s *Store) Save(ctx context.Context, name string, doc store.Document) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	data, err := store.Encode(doc)
	if err != nil {
		return err
	}

	s.docs.Lock()
	defer s.docs.Unlock()
	s.docs.table[name] = data
	return nil
}

// Put stores raw bytes under name as-is. Tests use it to seed malformed content.
func (s *Store) Put(name string, data []byte) {
	s.docs.Lock()
	defer s.docs.Unlock()
	s.docs.table[name] = append([]byte(nil), data...)
}

// Raw returns the bytes stored under name.
func (s *Store) Raw(name string) ([]byte, bool) {
	s.docs.RLock()
	defer s.docs.RUnlock()
	data, ok := s.docs.table[name]
	return append([]byte(nil), data...), ok
}
