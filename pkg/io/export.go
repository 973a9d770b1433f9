package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteLayout encodes a layout as indented JSON. Any JSON-serialisable
// layout works; the pie and bar layouts are the intended inputs.
func WriteLayout(w io.Writer, layout any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(layout); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes a layout to a JSON file at path.
func ExportLayout(layout any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(f, layout)
}
