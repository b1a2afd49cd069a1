// Package iojson reads and writes JSON for commands run with --json.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the body written to stderr when a --json command fails.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Encode writes v to w as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteError writes err as an Error to w. data may be nil.
func WriteError(w io.Writer, err error, data map[string]any) error {
	return Encode(w, Error{Message: err.Error(), Data: data})
}
