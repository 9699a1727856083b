package store

import (
	"encoding/json"
	"fmt"
)

// unmarshalValue decodes a JSON value read from cache into out
// Drivers hand values back as string (both in-memory and redis) but []byte is accepted too
//
// Parameters:
//   - val: the raw cache value
//   - out: pointer to decode into
//   - entityType: the entity type name (e.g., "user") for error messages
func unmarshalValue(val interface{}, out interface{}, entityType string) error {
	var raw []byte
	switch v := val.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("failed to unmarshal %s: unexpected cache value type %T", entityType, val)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", entityType, err)
	}
	return nil
}
