// Package parsers reads bulk entity creation records from various formats.
package parsers

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
)

// RawRecord is one entity to create, as parsed from an external source and
// before validation.
type RawRecord struct {
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	SortName       string          `json:"sort_name,omitempty"`
	LanguageID     *int64          `json:"language_id,omitempty"`
	Disambiguation string          `json:"disambiguation,omitempty"`
	Annotation     string          `json:"annotation,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Identifiers    []RawIdentifier `json:"identifiers,omitempty"`
	Note           string          `json:"note,omitempty"`
	LineNum        int             `json:"-"` // Line number in source file (set by parser)
}

// RawIdentifier is an external identifier attached to a RawRecord.
type RawIdentifier struct {
	TypeID int64  `json:"identifier_type_id"`
	Value  string `json:"value"`
}

// Parser defines the interface for parsing records from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawRecord, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
