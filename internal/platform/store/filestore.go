package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// FileStore persists each family as <dir>/<family>.json. All access to a
// family is serialized behind a per-family mutex; writes go through a temp
// file and rename so a crash never leaves a half-written collection.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store: data directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	return &FileStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *FileStore) lockFor(family string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[family]
	if !ok {
		l = &sync.Mutex{}
		s.locks[family] = l
	}
	return l
}

func (s *FileStore) path(family string) string {
	return filepath.Join(s.dir, family+".json")
}

func (s *FileStore) read(family string) (*Collection, error) {
	data, err := os.ReadFile(s.path(family))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewCollection(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", shared.ErrPersistence, family, err)
	}
	col := NewCollection()
	if err := json.Unmarshal(data, col); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrPersistence, family, err)
	}
	if col.NextNumber < 1 {
		col.NextNumber = 1
	}
	return col, nil
}

func (s *FileStore) write(family string, col *Collection) error {
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrPersistence, family, err)
	}
	tmp, err := os.CreateTemp(s.dir, family+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: temp file for %s: %v", shared.ErrPersistence, family, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", shared.ErrPersistence, family, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", shared.ErrPersistence, family, err)
	}
	if err := os.Rename(tmp.Name(), s.path(family)); err != nil {
		return fmt.Errorf("%w: rename %s: %v", shared.ErrPersistence, family, err)
	}
	return nil
}

// ReadCollection loads a family's collection, returning an empty one when the
// file does not exist yet.
func (s *FileStore) ReadCollection(ctx context.Context, family string) (*Collection, error) {
	l := s.lockFor(family)
	l.Lock()
	defer l.Unlock()
	return s.read(family)
}

// WriteCollection replaces a family's collection on disk.
func (s *FileStore) WriteCollection(ctx context.Context, family string, col *Collection) error {
	l := s.lockFor(family)
	l.Lock()
	defer l.Unlock()
	return s.write(family, col)
}

// Update runs fn against the current collection and persists the result while
// holding the family lock. If fn returns an error nothing is written.
func (s *FileStore) Update(ctx context.Context, family string, fn func(col *Collection) error) error {
	l := s.lockFor(family)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	col, err := s.read(family)
	if err != nil {
		return err
	}
	if err := fn(col); err != nil {
		return err
	}
	return s.write(family, col)
}
