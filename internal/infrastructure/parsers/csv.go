package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVParser parses records from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed records.
// Expected columns: kind, name, sort_name, language_id, disambiguation,
// annotation, data (a JSON object), identifier_type_id, identifier_value, note.
func (p *CSVParser) Parse(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	requiredCols := []string{"kind", "name"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawRecords.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawRecord, error) {
	var records []RawRecord
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		record, err := p.parseRow(row, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// parseRow converts a CSV row to a RawRecord.
func (p *CSVParser) parseRow(row []string, colIndex map[string]int, lineNum int) (RawRecord, error) {
	record := RawRecord{
		Kind:           getColumn(row, colIndex, "kind"),
		Name:           getColumn(row, colIndex, "name"),
		SortName:       getColumn(row, colIndex, "sort_name"),
		Disambiguation: getColumn(row, colIndex, "disambiguation"),
		Annotation:     getColumn(row, colIndex, "annotation"),
		Note:           getColumn(row, colIndex, "note"),
		LineNum:        lineNum,
	}

	if lang := getColumn(row, colIndex, "language_id"); lang != "" {
		id, err := strconv.ParseInt(lang, 10, 64)
		if err != nil {
			return RawRecord{}, fmt.Errorf("line %d: invalid language_id %q: %w", lineNum, lang, err)
		}
		record.LanguageID = &id
	}

	if data := getColumn(row, colIndex, "data"); data != "" {
		if !json.Valid([]byte(data)) {
			return RawRecord{}, fmt.Errorf("line %d: data column is not valid JSON", lineNum)
		}
		record.Data = json.RawMessage(data)
	}

	typeStr := getColumn(row, colIndex, "identifier_type_id")
	value := getColumn(row, colIndex, "identifier_value")
	if typeStr != "" || value != "" {
		typeID, err := strconv.ParseInt(typeStr, 10, 64)
		if err != nil {
			return RawRecord{}, fmt.Errorf("line %d: invalid identifier_type_id %q: %w", lineNum, typeStr, err)
		}
		record.Identifiers = []RawIdentifier{{TypeID: typeID, Value: value}}
	}

	return record, nil
}

// getColumn safely retrieves a trimmed column value from a row.
func getColumn(row []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
