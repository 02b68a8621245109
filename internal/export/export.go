// Package export serializes a record set as CSV, JSON or an XLSX workbook.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// Format is an export payload type.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Speeds"

// ParseFormat accepts csv|json|xlsx (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s (use csv|json|xlsx)", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".xlsx":
		return XLSX
	default:
		return CSV
	}
}

// Write serializes records in format f.
func Write(w io.Writer, f Format, records []dataset.Record) error {
	switch f {
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records)
	case XLSX:
		return WriteXLSX(w, records)
	default:
		return fmt.Errorf("unsupported export format: %s", f)
	}
}

// WriteCSV writes the canonical header and one row per record. Missing
// readings are written as "null" so the output parses back unchanged.
func WriteCSV(w io.Writer, records []dataset.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dataset.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(dataset.FormatRow(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []dataset.Record) error {
	if records == nil {
		records = []dataset.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Missing readings are left blank.
func WriteXLSX(w io.Writer, records []dataset.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	for col, h := range dataset.Header() {
		if err := setCell(f, col+1, 1, h); err != nil {
			return err
		}
	}
	for i, r := range records {
		row := i + 2
		labels := []string{r.Country, r.MajorArea, r.Region}
		for col, v := range labels {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
		for j, y := range dataset.Years {
			v, ok := r.Value(y)
			if !ok {
				continue
			}
			if err := setCell(f, len(labels)+j+1, row, v); err != nil {
				return err
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}
