package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// lookupResource resolves the {resource} path segment. Unknown resources get
// a 404 and a false return.
func (s *Server) lookupResource(w http.ResponseWriter, r *http.Request) (*resource, store.RecordStore, bool) {
	name := r.PathValue("resource")
	res, ok := s.resources[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_resource", "no such resource: "+name)
		return nil, nil, false
	}
	rs := s.dataStore.Records(name)
	if rs == nil {
		writeError(w, http.StatusNotFound, "unknown_resource", "no such resource: "+name)
		return nil, nil, false
	}
	return res, rs, true
}

// decodeRecord decodes a JSON object body. Failures get a 400 and a false
// return.
func decodeRecord(w http.ResponseWriter, r *http.Request) (record.Record, bool) {
	var rec record.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body: "+err.Error())
		return nil, false
	}
	return rec, true
}

// validateRecord checks the body against the resource's schema, if one is
// configured. Failures get a 422 and a false return.
func validateRecord(w http.ResponseWriter, res *resource, rec record.Record) bool {
	if res.schema == nil {
		return true
	}
	if err := res.schema.Validate(map[string]any(rec)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return false
	}
	return true
}

// handleIndex returns all records of a resource.
// GET /api/{resource}
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, rs, ok := s.lookupResource(w, r)
	if !ok {
		return
	}

	records, err := rs.List(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleShow returns a single record by id.
// GET /api/{resource}/{id}
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	_, rs, ok := s.lookupResource(w, r)
	if !ok {
		return
	}

	rec, err := rs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCreate inserts a new record; the store assigns its identity.
// POST /api/{resource}
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	res, rs, ok := s.lookupResource(w, r)
	if !ok {
		return
	}

	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	rec.StripIdentity()
	if !validateRecord(w, res, rec) {
		return
	}

	created, err := rs.Create(r.Context(), rec)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpsert creates or replaces the record at the path-supplied id. Any id
// in the body is stripped first; the path is the sole source of identity.
// PUT /api/{resource}/{id}
func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	res, rs, ok := s.lookupResource(w, r)
	if !ok {
		return
	}

	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	rec.StripIdentity()
	if !validateRecord(w, res, rec) {
		return
	}

	stored, err := rs.Upsert(r.Context(), r.PathValue("id"), rec)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handlePatch applies an RFC 6902 patch to one record and persists the result
// in a single write. Application is all-or-nothing: any failing op rejects
// the whole patch before the store is touched.
// PATCH /api/{resource}/{id}
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	_, rs, ok := s.lookupResource(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body: "+err.Error())
		return
	}
	patch, err := jsonpatch.DecodePatch(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patch", "Failed to parse patch document: "+err.Error())
		return
	}

	current, err := rs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}

	patched, err := applyPatch(current, patch)
	if err != nil {
		// Record left untouched; the failure carries the op detail.
		writeServerError(w, err)
		return
	}

	// A patch must not move the record's identity or creation time.
	patched.SetID(id)
	if ts := current.CreatedAt(); ts != "" {
		patched[record.FieldCreatedAt] = ts
	}

	if err := rs.Save(r.Context(), patched); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patched)
}

// handleDestroy deletes a record by id.
// DELETE /api/{resource}/{id}
func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request) {
	_, rs, ok := s.lookupResource(w, r)
	if !ok {
		return
	}

	if err := rs.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
