// Package record defines the generic record document stored and served by
// crudd, along with the resource definitions that describe each collection.
package record

// Reserved field names. The store owns both: "id" identifies a record within
// its collection and "createdAt" is set once at insert time.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
)

// Record is one persisted entity instance: an arbitrary JSON object with a
// store-assigned identity under the "id" field.
type Record map[string]any

// ID returns the record's identity, or "" if none is set.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// SetID sets the record's identity.
func (r Record) SetID(id string) {
	r[FieldID] = id
}

// StripIdentity removes any caller-supplied "id" field. The path-supplied id
// is the sole source of identity; a body-supplied id must never spoof it.
func (r Record) StripIdentity() {
	delete(r, FieldID)
}

// CreatedAt returns the creation timestamp field, or "" if unset.
func (r Record) CreatedAt() string {
	ts, _ := r[FieldCreatedAt].(string)
	return ts
}

// Clone returns a deep copy of the record. Stores hand out clones so callers
// can mutate results freely without touching stored state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneMap(r)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		// JSON scalars (string, float64, bool, nil) are immutable.
		return v
	}
}
