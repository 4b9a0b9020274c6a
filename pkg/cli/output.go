package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseFormat parses an --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// TextLines is implemented by results with a human-readable rendering.
type TextLines interface {
	Lines() []string
}

// Write renders data to w in the given format. Text output uses Lines when
// data provides it and fmt's default formatting otherwise.
func Write(w io.Writer, format OutputFormat, data any) error {
	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}

	lines, ok := data.(TextLines)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
	for _, line := range lines.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
