// Package store provides the persistence abstraction for crudd.
//
// A Store owns a set of named record collections, one per resource definition
// it was constructed with. Backends:
//   - file: JSON file storage (pkg/store/file)
//   - memory: ephemeral in-process storage (internal/storage)
//
// File storage follows the XDG Base Directory Specification, defaulting to
// ~/.local/share/crudd.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/getcrudd/crudd/pkg/record"
)

// Common errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
	ErrReadOnly  = errors.New("store is read-only")
)

// Backend represents a storage backend type.
type Backend string

const (
	// BackendFile uses a JSON file for storage.
	BackendFile Backend = "file"
	// BackendMemory uses in-memory storage (no persistence).
	BackendMemory Backend = "memory"
)

// Config holds store configuration.
type Config struct {
	// Backend specifies the storage backend to use.
	Backend Backend `json:"backend" yaml:"backend"`

	// DataDir is the base directory for data storage.
	// Defaults to XDG_DATA_HOME/crudd or ~/.local/share/crudd.
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`

	// ReadOnly prevents any write operations.
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		DataDir: DefaultDataDir(),
	}
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "crudd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".crudd")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "crudd")
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "crudd")
		}
		return filepath.Join(home, "AppData", "Local", "crudd")
	default:
		return filepath.Join(home, ".local", "share", "crudd")
	}
}

// RecordStore handles persistence for one resource collection. Implementations
// return deep copies; mutating a returned record never changes stored state
// until it is written back with Save or Upsert.
type RecordStore interface {
	// List returns all records in the collection.
	List(ctx context.Context) ([]record.Record, error)

	// Get returns a single record by id.
	Get(ctx context.Context, id string) (record.Record, error)

	// Create inserts a new record, assigning its identity (and createdAt
	// when the resource definition enables timestamps). The stored record
	// is returned.
	Create(ctx context.Context, fields record.Record) (record.Record, error)

	// Upsert creates or replaces the record at id. An existing record's
	// createdAt survives the replacement. The stored record is returned.
	Upsert(ctx context.Context, id string, fields record.Record) (record.Record, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error

	// Save writes back a mutated record that already exists in the
	// collection, keyed by its id field.
	Save(ctx context.Context, rec record.Record) error
}

// Store is the main interface for data persistence.
type Store interface {
	// Lifecycle.
	Open(ctx context.Context) error
	Close() error

	// Records returns the store for a named resource, or nil when the
	// resource was not part of the store's definitions.
	Records(resource string) RecordStore

	// Resources lists the resource names this store was built with.
	Resources() []string
}
