// Package file provides a file-based implementation of the store interfaces.
// All collections are stored as a single JSON document in the data directory.
package file

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// Current data format version for migration support.
const dataVersion = 1

const dataFileName = "records.json"

// FileStore implements store.Store using a JSON file.
type FileStore struct {
	cfg          store.Config
	defs         map[string]record.Definition
	names        []string
	mu           sync.RWMutex
	data         *storeData
	dirty        atomic.Bool
	saving       atomic.Bool
	saveDebounce time.Duration
	saveCh       chan struct{}
	closeCh      chan struct{}
	closeOnce    sync.Once
	closedCh     chan struct{} // signals when saveLoop has exited
	log          *slog.Logger
}

// storeData holds all persisted data, one record slice per resource.
type storeData struct {
	Version     int                        `json:"version"`
	Collections map[string][]record.Record `json:"collections"`
}

// New creates a FileStore serving the given resource definitions.
func New(cfg store.Config, defs []record.Definition) *FileStore {
	if cfg.DataDir == "" {
		cfg.DataDir = store.DefaultDataDir()
	}
	fs := &FileStore{
		cfg:          cfg,
		defs:         make(map[string]record.Definition, len(defs)),
		data:         emptyData(),
		saveDebounce: 500 * time.Millisecond,
		saveCh:       make(chan struct{}, 1),
		closeCh:      make(chan struct{}),
		closedCh:     make(chan struct{}),
		log:          slog.Default(),
	}
	for _, def := range defs {
		fs.defs[def.Name] = def
		fs.names = append(fs.names, def.Name)
	}
	go fs.saveLoop()
	return fs
}

func emptyData() *storeData {
	return &storeData{
		Version:     dataVersion,
		Collections: make(map[string][]record.Record),
	}
}

// SetLogger sets the operational logger used for save failures.
func (s *FileStore) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// Open creates the data directory and loads data from disk.
func (s *FileStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.cfg.DataDir, 0700); err != nil {
		return err
	}

	raw, err := os.ReadFile(s.dataFile())
	if err != nil {
		if os.IsNotExist(err) {
			s.data = emptyData()
			return nil
		}
		return err
	}

	var stored storeData
	if err := json.Unmarshal(raw, &stored); err != nil {
		return err
	}
	if stored.Collections == nil {
		stored.Collections = make(map[string][]record.Record)
	}
	s.data = &stored
	s.dirty.Store(false)
	return nil
}

// Close flushes pending changes and stops the save loop. Safe to call more
// than once.
func (s *FileStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
	<-s.closedCh
	return nil
}

// Records returns the store for a named resource, or nil when the resource is
// not part of this store's definitions.
func (s *FileStore) Records(resource string) store.RecordStore {
	def, ok := s.defs[resource]
	if !ok {
		return nil
	}
	return &recordStore{fs: s, def: def}
}

// Resources lists the configured resource names.
func (s *FileStore) Resources() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// DataDir returns the data directory path.
func (s *FileStore) DataDir() string {
	return s.cfg.DataDir
}

func (s *FileStore) dataFile() string {
	return filepath.Join(s.cfg.DataDir, dataFileName)
}

// saveLoop debounces saves to avoid a disk write per mutation.
func (s *FileStore) saveLoop() {
	defer close(s.closedCh)
	var timer *time.Timer
	for {
		select {
		case <-s.saveCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.saveDebounce, func() {
				if s.dirty.Load() && !s.saving.Load() {
					if err := s.doSave(); err != nil {
						s.log.Error("failed to save store data", "error", err)
					}
				}
			})
		case <-s.closeCh:
			if timer != nil {
				timer.Stop()
			}
			// Final save on close.
			if s.dirty.Load() {
				if err := s.doSave(); err != nil {
					s.log.Error("failed to save store data on close", "error", err)
				}
			}
			return
		}
	}
}

// markDirty marks data as needing a save. Callers must hold the write lock.
func (s *FileStore) markDirty() {
	s.dirty.Store(true)
	select {
	case s.saveCh <- struct{}{}:
	default:
		// Save already pending.
	}
}

// ForceSave immediately writes data to disk.
func (s *FileStore) ForceSave() error {
	s.dirty.Store(true)
	return s.doSave()
}

// doSave writes the data file atomically: temp file, then rename.
func (s *FileStore) doSave() error {
	if !s.saving.CompareAndSwap(false, true) {
		return nil // already saving
	}
	defer s.saving.Store(false)

	s.mu.RLock()
	if s.cfg.ReadOnly {
		s.mu.RUnlock()
		return store.ErrReadOnly
	}
	s.data.Version = dataVersion
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	dataFile := s.dataFile()
	tmpFile := dataFile + ".tmp"
	if err := os.WriteFile(tmpFile, raw, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, dataFile); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}

	s.dirty.Store(false)
	return nil
}
