// Package storage is the persistence gateway: typed records serialized to JSON text
// and kept in a string-keyed, string-valued store.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Open returns the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(filepath.Join(dir, fileStoreName))
	case BackendBadger:
		return OpenBadger(BadgerConfig{Path: filepath.Join(dir, "badger"), SyncWrites: true})
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
