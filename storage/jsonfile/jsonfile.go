// Package jsonfile is a DocumentStore that keeps each document in its own JSON file:
// <dir>/<name>.json.
package jsonfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

const fileExt = ".json"

type Store struct {
	dir    string
	logger core.Logger
}

var _ store.DocumentStore = (*Store)(nil) // interface compliance check

// Open returns a Store rooted at dir, creating the directory if needed.
func Open(dir string, logger core.Logger) (*Store, error) {
	if logger == nil {
		logger = core.NopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

func (s *Store) Load(ctx context.Context, name string) (store.Document, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("document not found, starting empty", "name", name)
			return store.Document{}, nil
		}
		return nil, errors.Wrapf(err, "reading document %q", name)
	}
	s.logger.Debug("document loaded", "name", name, "bytes", len(data))
	return store.Decode(name, data)
}

// Save writes doc to a temp file in the same directory and renames it over the target, so a
// crash leaves either the previous file or the new one.
func (s *Store) Save(ctx context.Context, name string, doc store.Document) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	data, err := store.Encode(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding document %q", name)
	}
	if err = renameio.WriteFile(s.path(name), data, 0o644); err != nil {
		return errors.Wrapf(err, "replacing document %q", name)
	}
	s.logger.Debug("document saved", "name", name, "bytes", len(data))
	return nil
}
