package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXParser parses Float exports downloaded as .xlsx workbooks. The first
// sheet carries the same columns as the CSV export, so rows are fed through
// the same header-addressed parsing.
type XLSXParser struct{}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads the first sheet of an xlsx workbook and returns its rows.
func (p *XLSXParser) Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return parseAll(records, false)
}
