package server

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/getcrudd/crudd/pkg/record"
)

// applyPatch applies an ordered RFC 6902 op sequence to a record and returns
// the result. The input record is never mutated: ops run against a marshaled
// copy, so a failing op (including a failed "test") leaves the caller's
// record exactly as it was.
func applyPatch(rec record.Record, patch jsonpatch.Patch) (record.Record, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	patchedDoc, err := patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}

	var patched record.Record
	if err := json.Unmarshal(patchedDoc, &patched); err != nil {
		return nil, fmt.Errorf("decode patched record: %w", err)
	}
	return patched, nil
}
