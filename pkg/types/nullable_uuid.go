package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NullableUUID distinguishes an absent JSON field from an explicit null on
// PATCH bodies. Valid is set whenever the key was present.
type NullableUUID struct {
	Valid bool
	Value *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	n.Valid = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("uuid must be a string: %w", err)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid uuid %q: %w", raw, err)
	}
	n.Value = &parsed
	return nil
}

// MarshalJSON writes null for a cleared or absent value.
func (n NullableUUID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value.String())
}

// Clears reports an explicit null.
func (n NullableUUID) Clears() bool {
	return n.Valid && n.Value == nil
}

// Ptr returns a copy of the value so callers never alias the request body.
func (n NullableUUID) Ptr() *uuid.UUID {
	if n.Value == nil {
		return nil
	}
	v := *n.Value
	return &v
}
