package file

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// recordStore implements store.RecordStore for one collection of a FileStore.
type recordStore struct {
	fs  *FileStore
	def record.Definition
}

// List returns all records in the collection.
func (s *recordStore) List(ctx context.Context) ([]record.Record, error) {
	s.fs.mu.RLock()
	defer s.fs.mu.RUnlock()

	stored := s.fs.data.Collections[s.def.Name]
	result := make([]record.Record, 0, len(stored))
	for _, rec := range stored {
		result = append(result, rec.Clone())
	}
	return result, nil
}

// Get returns a single record by id.
func (s *recordStore) Get(ctx context.Context, id string) (record.Record, error) {
	s.fs.mu.RLock()
	defer s.fs.mu.RUnlock()

	for _, rec := range s.fs.data.Collections[s.def.Name] {
		if rec.ID() == id {
			return rec.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

// Create inserts a new record with a store-assigned identity.
func (s *recordStore) Create(ctx context.Context, fields record.Record) (record.Record, error) {
	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	if s.fs.cfg.ReadOnly {
		return nil, store.ErrReadOnly
	}

	rec := fields.Clone()
	if rec == nil {
		rec = record.Record{}
	}
	rec.SetID(uuid.NewString())
	if s.def.Timestamps {
		rec[record.FieldCreatedAt] = time.Now().UTC().Format(time.RFC3339)
	}

	s.fs.data.Collections[s.def.Name] = append(s.fs.data.Collections[s.def.Name], rec)
	s.fs.markDirty()
	return rec.Clone(), nil
}

// Upsert creates or replaces the record at id. The path-supplied id wins over
// anything in fields, and an existing createdAt survives the replacement.
func (s *recordStore) Upsert(ctx context.Context, id string, fields record.Record) (record.Record, error) {
	if id == "" {
		return nil, store.ErrInvalidID
	}

	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	if s.fs.cfg.ReadOnly {
		return nil, store.ErrReadOnly
	}

	rec := fields.Clone()
	if rec == nil {
		rec = record.Record{}
	}
	rec.SetID(id)

	coll := s.fs.data.Collections[s.def.Name]
	for i, existing := range coll {
		if existing.ID() == id {
			if ts := existing.CreatedAt(); ts != "" {
				rec[record.FieldCreatedAt] = ts
			}
			coll[i] = rec
			s.fs.markDirty()
			return rec.Clone(), nil
		}
	}

	if s.def.Timestamps {
		rec[record.FieldCreatedAt] = time.Now().UTC().Format(time.RFC3339)
	}
	s.fs.data.Collections[s.def.Name] = append(coll, rec)
	s.fs.markDirty()
	return rec.Clone(), nil
}

// Delete removes a record by id.
func (s *recordStore) Delete(ctx context.Context, id string) error {
	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	if s.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	coll := s.fs.data.Collections[s.def.Name]
	for i, rec := range coll {
		if rec.ID() == id {
			s.fs.data.Collections[s.def.Name] = append(coll[:i], coll[i+1:]...)
			s.fs.markDirty()
			return nil
		}
	}
	return store.ErrNotFound
}

// Save writes back a mutated record that already exists, keyed by its id.
func (s *recordStore) Save(ctx context.Context, rec record.Record) error {
	id := rec.ID()
	if id == "" {
		return store.ErrInvalidID
	}

	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	if s.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	coll := s.fs.data.Collections[s.def.Name]
	for i, existing := range coll {
		if existing.ID() == id {
			stored := rec.Clone()
			// createdAt is write-once.
			if ts := existing.CreatedAt(); ts != "" {
				stored[record.FieldCreatedAt] = ts
			}
			coll[i] = stored
			s.fs.markDirty()
			return nil
		}
	}
	return store.ErrNotFound
}
