package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
)

// File names inside a FileStore directory.
const (
	LastCheckedFile = "last_checked.json"
	ValuesFile      = "values.json"
)

// FileStore keeps state as JSON files in one directory. Writes go through a
// temp file and a rename so readers never see a partial document.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "state"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "store: create %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string        { return s.dir }
func (s *FileStore) LastPath() string   { return filepath.Join(s.dir, LastCheckedFile) }
func (s *FileStore) ValuesPath() string { return filepath.Join(s.dir, ValuesFile) }

func (s *FileStore) SaveLast(_ context.Context, last LastChecked) error {
	data, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: encode last checked")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.LastPath(), data)
}

func (s *FileStore) Last(_ context.Context) (LastChecked, bool, error) {
	data, err := os.ReadFile(s.LastPath())
	if errors.Is(err, fs.ErrNotExist) {
		return LastChecked{}, false, nil
	}
	if err != nil {
		return LastChecked{}, false, eris.Wrap(err, "store: read last checked")
	}
	var last LastChecked
	if err := json.Unmarshal(data, &last); err != nil {
		return LastChecked{}, false, eris.Wrap(err, "store: decode last checked")
	}
	return last, true, nil
}

func (s *FileStore) Values(_ context.Context) (ValueTable, error) {
	data, err := os.ReadFile(s.ValuesPath())
	if errors.Is(err, fs.ErrNotExist) {
		return ValueTable{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: read values")
	}
	return DecodeValues(data)
}

func (s *FileStore) ReplaceValues(_ context.Context, table ValueTable) error {
	data, err := table.Encode()
	if err != nil {
		return eris.Wrap(err, "store: encode values")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.ValuesPath(), data)
}

func (s *FileStore) Close() error { return nil }

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "store: temp file for %s", path)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return eris.Wrapf(err, "store: write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return eris.Wrapf(err, "store: sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return eris.Wrapf(err, "store: close %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return eris.Wrapf(err, "store: rename %s", path)
	}
	return nil
}
