// Package storage provides the in-memory store backend. Nothing survives a
// process restart; it exists for tests and for running without a data dir.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// MemoryStore is a thread-safe in-memory implementation of store.Store.
type MemoryStore struct {
	mu    sync.RWMutex
	defs  map[string]record.Definition
	names []string
	// collections preserves insertion order per resource.
	collections map[string][]record.Record
}

// NewMemoryStore creates a MemoryStore serving the given resource definitions.
func NewMemoryStore(defs []record.Definition) *MemoryStore {
	s := &MemoryStore{
		defs:        make(map[string]record.Definition, len(defs)),
		collections: make(map[string][]record.Record),
	}
	for _, def := range defs {
		s.defs[def.Name] = def
		s.names = append(s.names, def.Name)
	}
	return s
}

// Open is a no-op for the memory backend.
func (s *MemoryStore) Open(ctx context.Context) error { return nil }

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }

// Records returns the store for a named resource, or nil when unknown.
func (s *MemoryStore) Records(resource string) store.RecordStore {
	def, ok := s.defs[resource]
	if !ok {
		return nil
	}
	return &memoryRecordStore{ms: s, def: def}
}

// Resources lists the configured resource names.
func (s *MemoryStore) Resources() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// memoryRecordStore implements store.RecordStore for one collection.
type memoryRecordStore struct {
	ms  *MemoryStore
	def record.Definition
}

func (s *memoryRecordStore) List(ctx context.Context) ([]record.Record, error) {
	s.ms.mu.RLock()
	defer s.ms.mu.RUnlock()

	stored := s.ms.collections[s.def.Name]
	result := make([]record.Record, 0, len(stored))
	for _, rec := range stored {
		result = append(result, rec.Clone())
	}
	return result, nil
}

func (s *memoryRecordStore) Get(ctx context.Context, id string) (record.Record, error) {
	s.ms.mu.RLock()
	defer s.ms.mu.RUnlock()

	for _, rec := range s.ms.collections[s.def.Name] {
		if rec.ID() == id {
			return rec.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memoryRecordStore) Create(ctx context.Context, fields record.Record) (record.Record, error) {
	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()

	rec := fields.Clone()
	if rec == nil {
		rec = record.Record{}
	}
	rec.SetID(uuid.NewString())
	if s.def.Timestamps {
		rec[record.FieldCreatedAt] = time.Now().UTC().Format(time.RFC3339)
	}
	s.ms.collections[s.def.Name] = append(s.ms.collections[s.def.Name], rec)
	return rec.Clone(), nil
}

func (s *memoryRecordStore) Upsert(ctx context.Context, id string, fields record.Record) (record.Record, error) {
	if id == "" {
		return nil, store.ErrInvalidID
	}

	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()

	rec := fields.Clone()
	if rec == nil {
		rec = record.Record{}
	}
	rec.SetID(id)

	coll := s.ms.collections[s.def.Name]
	for i, existing := range coll {
		if existing.ID() == id {
			if ts := existing.CreatedAt(); ts != "" {
				rec[record.FieldCreatedAt] = ts
			}
			coll[i] = rec
			return rec.Clone(), nil
		}
	}

	if s.def.Timestamps {
		rec[record.FieldCreatedAt] = time.Now().UTC().Format(time.RFC3339)
	}
	s.ms.collections[s.def.Name] = append(coll, rec)
	return rec.Clone(), nil
}

func (s *memoryRecordStore) Delete(ctx context.Context, id string) error {
	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()

	coll := s.ms.collections[s.def.Name]
	for i, rec := range coll {
		if rec.ID() == id {
			s.ms.collections[s.def.Name] = append(coll[:i], coll[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memoryRecordStore) Save(ctx context.Context, rec record.Record) error {
	id := rec.ID()
	if id == "" {
		return store.ErrInvalidID
	}

	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()

	coll := s.ms.collections[s.def.Name]
	for i, existing := range coll {
		if existing.ID() == id {
			stored := rec.Clone()
			if ts := existing.CreatedAt(); ts != "" {
				stored[record.FieldCreatedAt] = ts
			}
			coll[i] = stored
			return nil
		}
	}
	return store.ErrNotFound
}
