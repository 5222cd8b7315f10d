package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// ============================================================================
// Test Helpers
// ============================================================================

var testDefs = []record.Definition{
	{Name: "items", Timestamps: true},
	{Name: "notes"},
}

// newTestStore creates a FileStore backed by a temp directory. It opens the
// store and registers cleanup to close it.
func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs := New(store.Config{DataDir: t.TempDir()}, testDefs)
	if err := fs.Open(context.Background()); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = fs.Close() })
	return fs
}

func mustCreate(t *testing.T, rs store.RecordStore, fields record.Record) record.Record {
	t.Helper()
	rec, err := rs.Create(context.Background(), fields)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return rec
}

// ============================================================================
// Lifecycle / Persistence
// ============================================================================

func TestFileStore_OpenEmpty(t *testing.T) {
	fs := newTestStore(t)

	records, err := fs.Records("items").List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() on fresh store = %d records, want 0", len(records))
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs := New(store.Config{DataDir: dir}, testDefs)
	if err := fs.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	created := mustCreate(t, fs.Records("items"), record.Record{"name": "a"})
	if err := fs.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	fs2 := New(store.Config{DataDir: dir}, testDefs)
	if err := fs2.Open(ctx); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = fs2.Close() })

	got, err := fs2.Records("items").Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if got["name"] != "a" {
		t.Errorf("record after reopen = %v, want name=a", got)
	}
}

func TestFileStore_DataFileIsValidJSON(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs := New(store.Config{DataDir: dir}, testDefs)
	if err := fs.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	mustCreate(t, fs.Records("items"), record.Record{"name": "a"})
	if err := fs.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, dataFileName))
	if err != nil {
		t.Fatalf("data file not written: %v", err)
	}
	var data storeData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("data file is not valid JSON: %v", err)
	}
	if data.Version != dataVersion {
		t.Errorf("version = %d, want %d", data.Version, dataVersion)
	}
	if len(data.Collections["items"]) != 1 {
		t.Errorf("items collection = %d records, want 1", len(data.Collections["items"]))
	}
}

func TestFileStore_CloseIdempotent(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Close(); err != nil {
		t.Fatalf("first Close() failed: %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
}

func TestFileStore_UnknownResource(t *testing.T) {
	fs := newTestStore(t)
	if rs := fs.Records("nope"); rs != nil {
		t.Error("Records() for unknown resource should be nil")
	}
}

func TestFileStore_Resources(t *testing.T) {
	fs := newTestStore(t)
	names := fs.Resources()
	if len(names) != 2 || names[0] != "items" || names[1] != "notes" {
		t.Errorf("Resources() = %v, want [items notes]", names)
	}
}

// ============================================================================
// Record operations
// ============================================================================

func TestRecordStore_CreateAssignsID(t *testing.T) {
	fs := newTestStore(t)
	rec := mustCreate(t, fs.Records("items"), record.Record{"name": "a"})

	if rec.ID() == "" {
		t.Error("Create() did not assign an id")
	}
	if rec.CreatedAt() == "" {
		t.Error("Create() did not assign createdAt with Timestamps enabled")
	}
}

func TestRecordStore_CreateIgnoresTimestampsWhenDisabled(t *testing.T) {
	fs := newTestStore(t)
	rec := mustCreate(t, fs.Records("notes"), record.Record{"name": "a"})
	if rec.CreatedAt() != "" {
		t.Error("Create() assigned createdAt with Timestamps disabled")
	}
}

func TestRecordStore_GetRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")
	created := mustCreate(t, rs, record.Record{"name": "a", "count": float64(2)})

	got, err := rs.Get(context.Background(), created.ID())
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got["name"] != "a" || got["count"] != float64(2) {
		t.Errorf("Get() = %v, want created record", got)
	}
}

func TestRecordStore_GetNotFound(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Records("items").Get(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRecordStore_ReturnsClones(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")
	created := mustCreate(t, rs, record.Record{"name": "a"})

	got, err := rs.Get(context.Background(), created.ID())
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	got["name"] = "mutated"

	again, err := rs.Get(context.Background(), created.ID())
	if err != nil {
		t.Fatalf("second Get() failed: %v", err)
	}
	if again["name"] != "a" {
		t.Error("mutating a returned record changed stored state")
	}
}

func TestRecordStore_UpsertCreatesWhenAbsent(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")

	rec, err := rs.Upsert(context.Background(), "fixed-id", record.Record{"name": "a"})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if rec.ID() != "fixed-id" {
		t.Errorf("Upsert() id = %q, want fixed-id", rec.ID())
	}
	if rec.CreatedAt() == "" {
		t.Error("Upsert() insert did not assign createdAt")
	}
}

func TestRecordStore_UpsertReplacesAndKeepsCreatedAt(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")
	ctx := context.Background()

	first, err := rs.Upsert(ctx, "fixed-id", record.Record{"name": "a", "tmp": true})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	second, err := rs.Upsert(ctx, "fixed-id", record.Record{"name": "b"})
	if err != nil {
		t.Fatalf("second Upsert() failed: %v", err)
	}
	if second["name"] != "b" {
		t.Errorf("Upsert() did not replace fields: %v", second)
	}
	if _, ok := second["tmp"]; ok {
		t.Error("Upsert() merged instead of replacing")
	}
	if second.CreatedAt() != first.CreatedAt() {
		t.Errorf("createdAt changed on replacement: %q -> %q", first.CreatedAt(), second.CreatedAt())
	}

	records, err := rs.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("List() = %d records after upsert of same id, want 1", len(records))
	}
}

func TestRecordStore_UpsertOverridesBodyID(t *testing.T) {
	fs := newTestStore(t)
	rec, err := fs.Records("items").Upsert(context.Background(), "path-id", record.Record{"id": "body-id"})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if rec.ID() != "path-id" {
		t.Errorf("Upsert() id = %q, want path-id", rec.ID())
	}
}

func TestRecordStore_UpsertEmptyID(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Records("items").Upsert(context.Background(), "", record.Record{})
	if !errors.Is(err, store.ErrInvalidID) {
		t.Errorf("Upsert(\"\") error = %v, want ErrInvalidID", err)
	}
}

func TestRecordStore_Save(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")
	ctx := context.Background()
	created := mustCreate(t, rs, record.Record{"name": "a"})

	created["name"] = "b"
	if err := rs.Save(ctx, created); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := rs.Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got["name"] != "b" {
		t.Errorf("Save() not persisted: %v", got)
	}
	if got.CreatedAt() != created.CreatedAt() {
		t.Error("Save() changed createdAt")
	}
}

func TestRecordStore_SaveNotFound(t *testing.T) {
	fs := newTestStore(t)
	err := fs.Records("items").Save(context.Background(), record.Record{"id": "missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Save() error = %v, want ErrNotFound", err)
	}
}

func TestRecordStore_SaveKeepsCreatedAtWriteOnce(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")
	ctx := context.Background()
	created := mustCreate(t, rs, record.Record{"name": "a"})

	created[record.FieldCreatedAt] = "2001-01-01T00:00:00Z"
	if err := rs.Save(ctx, created); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := rs.Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.CreatedAt() == "2001-01-01T00:00:00Z" {
		t.Error("Save() allowed createdAt to be rewritten")
	}
}

func TestRecordStore_Delete(t *testing.T) {
	fs := newTestStore(t)
	rs := fs.Records("items")
	ctx := context.Background()
	created := mustCreate(t, rs, record.Record{"name": "a"})

	if err := rs.Delete(ctx, created.ID()); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := rs.Get(ctx, created.ID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestRecordStore_DeleteNotFound(t *testing.T) {
	fs := newTestStore(t)
	err := fs.Records("items").Delete(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// ============================================================================
// Read-only mode
// ============================================================================

func TestRecordStore_ReadOnly(t *testing.T) {
	fs := New(store.Config{DataDir: t.TempDir(), ReadOnly: true}, testDefs)
	if err := fs.Open(context.Background()); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = fs.Close() })

	rs := fs.Records("items")
	ctx := context.Background()

	if _, err := rs.Create(ctx, record.Record{}); !errors.Is(err, store.ErrReadOnly) {
		t.Errorf("Create() error = %v, want ErrReadOnly", err)
	}
	if _, err := rs.Upsert(ctx, "x", record.Record{}); !errors.Is(err, store.ErrReadOnly) {
		t.Errorf("Upsert() error = %v, want ErrReadOnly", err)
	}
	if err := rs.Delete(ctx, "x"); !errors.Is(err, store.ErrReadOnly) {
		t.Errorf("Delete() error = %v, want ErrReadOnly", err)
	}
	if err := rs.Save(ctx, record.Record{"id": "x"}); !errors.Is(err, store.ErrReadOnly) {
		t.Errorf("Save() error = %v, want ErrReadOnly", err)
	}
}
