package store

import (
	"context"
	"errors"
	"os"

	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/game"
)

// FileStore keeps the saved state as a JSON document on disk
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the state is written to
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (game.SavedState, error) {
	var state game.SavedState
	err := fileutil.ReadJSON(s.path, &state)
	if errors.Is(err, os.ErrNotExist) {
		return game.SavedState{}, ErrNotFound
	}
	return state, err
}

func (s *FileStore) Save(ctx context.Context, state game.SavedState) error {
	return fileutil.WriteJSONAtomic(s.path, state)
}

func (s *FileStore) Clear(ctx context.Context) error {
	return fileutil.RemoveIfExists(s.path)
}

func (s *FileStore) Close() error { return nil }
