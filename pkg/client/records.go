package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/getcrudd/crudd/pkg/record"
)

// Typed helpers over the generic verbs, one call per controller operation.

func resourcePath(resource string) string {
	return "/api/" + url.PathEscape(resource)
}

func recordPath(resource, id string) string {
	return resourcePath(resource) + "/" + url.PathEscape(id)
}

// ListRecords returns all records of a resource.
func (c *Client) ListRecords(ctx context.Context, resource string) ([]record.Record, error) {
	raw, err := c.Get(ctx, resourcePath(resource), nil)
	if err != nil {
		return nil, err
	}
	var records []record.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// GetRecord returns a single record by id.
func (c *Client) GetRecord(ctx context.Context, resource, id string) (record.Record, error) {
	raw, err := c.Get(ctx, recordPath(resource, id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// CreateRecord creates a new record; the server assigns its identity.
func (c *Client) CreateRecord(ctx context.Context, resource string, fields record.Record) (record.Record, error) {
	raw, err := c.Post(ctx, resourcePath(resource), fields)
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// UpsertRecord creates or replaces the record at id.
func (c *Client) UpsertRecord(ctx context.Context, resource, id string, fields record.Record) (record.Record, error) {
	raw, err := c.Put(ctx, recordPath(resource, id), fields)
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// PatchRecord applies an ordered RFC 6902 op sequence to the record at id and
// returns the patched record.
func (c *Client) PatchRecord(ctx context.Context, resource, id string, ops []map[string]any) (record.Record, error) {
	raw, err := c.Patch(ctx, recordPath(resource, id), ops)
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// DeleteRecord deletes the record at id.
func (c *Client) DeleteRecord(ctx context.Context, resource, id string) error {
	return c.Delete(ctx, recordPath(resource, id))
}

func decodeRecord(raw json.RawMessage) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}
