package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Storage is a small string key-value store. FileStorage backs the
// persistent token, MemStorage is for tests and one-shot runs.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

type MemStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{data: map[string]string{}}
}

func (m *MemStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage keeps its keys in a single TOML file readable only by the
// owner. Every write rewrites the file; concurrent processes race and the
// last write wins. A file that does not parse reads as empty and is
// replaced on the next write.
type FileStorage struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path, logger: slog.Default().With("module", "session")}
}

func (f *FileStorage) SetLogger(l *slog.Logger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger = l
}

func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _, err := f.read()
	if err != nil {
		return "", false
	}
	v, ok := data[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _, err := f.read()
	if err != nil {
		return err
	}
	data[key] = value
	return f.write(data)
}

func (f *FileStorage) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, corrupt, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok && !corrupt {
		return nil
	}
	delete(data, key)
	if len(data) == 0 {
		err = os.Remove(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return f.write(data)
}

// read reports corrupt when the file exists but does not parse.
func (f *FileStorage) read() (data map[string]string, corrupt bool, err error) {
	data = map[string]string{}
	content, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if err := toml.Unmarshal(content, &data); err != nil {
		f.logger.Warn("discarding unreadable storage file", "path", f.path, "error", err)
		return map[string]string{}, true, nil
	}
	return data, false, nil
}

func (f *FileStorage) write(data map[string]string) error {
	content, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
