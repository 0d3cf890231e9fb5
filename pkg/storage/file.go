package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const fileStoreName = "store.json"

// FileStore keeps every key in one JSON object on disk. Each Set or Remove
// rewrites the file before returning.
type FileStore struct {
	Values map[string]string
	Path   string
	mu     sync.RWMutex
}

// NewFileStore opens the store at path. A missing file is an empty store; an
// unreadable one is logged and treated as empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	fs := &FileStore{
		Values: make(map[string]string),
		Path:   path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := fs.Load(); err != nil {
			log.Printf("Warning: ignoring unreadable store %s: %v", path, err)
			fs.Values = make(map[string]string)
		}
	}
	return fs, nil
}

func (fs *FileStore) Load() error {
	f, err := os.Open(fs.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	values := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return fmt.Errorf("failed to decode store: %w", err)
	}
	fs.mu.Lock()
	fs.Values = values
	fs.mu.Unlock()
	return nil
}

// save writes a temp file and renames it over Path so a reader never sees a
// half-written store. Caller holds mu.
func (fs *FileStore) save() error {
	dir := filepath.Dir(fs.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fs.Values); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fs.Path)
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.Values[key]
	return v, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.Values[key] = value
	return fs.save()
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, exists := fs.Values[key]; !exists {
		return nil
	}
	delete(fs.Values, key)
	return fs.save()
}

func (fs *FileStore) Close() error {
	return nil
}
