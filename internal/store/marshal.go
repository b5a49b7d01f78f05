package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalDocument encodes v as compact JSON TEXT for storage.
// HTML escaping is disabled so terminal output such as "<target>" is
// stored as typed.
func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
