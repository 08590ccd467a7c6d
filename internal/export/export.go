// Package export serializes feature records.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/clintrovert/taskfeatures/pkg/types"
)

// Format is an output encoding
type Format string

// Supported formats
const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// ContentType returns the media type of the format
func (f Format) ContentType() string {
	if f == FormatJSONL {
		return "application/x-ndjson"
	}
	return "application/json"
}

// Write encodes features to w: an indented array for json, one record per
// line for jsonl
func Write(w io.Writer, features []types.Feature, format Format) error {
	switch format {
	case FormatJSON:
		if features == nil {
			features = []types.Feature{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(features); err != nil {
			return fmt.Errorf("failed to encode features: %w", err)
		}
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, f := range features {
			if err := enc.Encode(f); err != nil {
				return fmt.Errorf("failed to encode feature %s: %w", f.ID, err)
			}
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
