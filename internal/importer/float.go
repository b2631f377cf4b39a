package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/float2qb-dev/float2qb/internal/model"
)

// Column names in Float exports. Exports are header-addressed, so column
// order is Float's business, not ours.
const (
	colTransactionID = "Transaction ID"
	colExpenseDate   = "Expense Date"
	colDescription   = "Description"
	colMerchant      = "Merchant Name"
	colSpender       = "Spender"
	colCategory      = "Category"
	colGLCode        = "GL Code ID"
	colSubtotal      = "Subtotal"
	colTax           = "Tax"
	colTotal         = "Total"
	colCurrency      = "Currency"
	colReportName    = "Report Name"
	colRequester     = "Requester"
)

// Float writes dates as yy-mm-dd in transaction exports and dd/mm/yy in
// reimbursement exports; newer exports use four-digit years.
const (
	floatDateFormat     = "06-01-02"
	floatDateFormatLong = "2006-01-02"
	reimbDateFormat     = "02/01/06"
	reimbDateFormatLong = "02/01/2006"
)

// FloatParser parses Float transaction CSV exports. A file carrying a
// "Report Name" column is a reimbursement export and is parsed as such,
// matching Float's own convention for distinguishing the two.
type FloatParser struct{}

// Format returns the parser name.
func (p *FloatParser) Format() string { return "float" }

// Parse reads a Float CSV export and returns its rows. Only an unreadable
// file is an error; malformed rows come back as Row.Err.
func (p *FloatParser) Parse(r io.Reader) ([]Row, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return parseAll(records, false)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // short rows become per-row errors, not file errors

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading float CSV: %w", err)
	}
	return records, nil
}

func parseAll(records [][]string, forceReimbursement bool) ([]Row, error) {
	if len(records) <= 1 {
		return nil, nil
	}

	h := indexHeader(records[0])
	reimbursement := forceReimbursement || h.has(colReportName)

	var rows []Row
	for i, rec := range records[1:] {
		num := i + 1
		var (
			record model.FloatRecord
			err    error
		)
		if reimbursement {
			record, err = parseReimbursementRow(h, rec, num)
		} else {
			record, err = parseFloatRow(h, rec, num)
		}
		rows = append(rows, Row{Num: num, Record: record, Err: err})
	}
	return rows, nil
}

// header maps column names to indexes.
type header map[string]int

func indexHeader(rec []string) header {
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.TrimSpace(name)] = i
	}
	return h
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

func (h header) get(rec []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseFloatRow(h header, rec []string, num int) (model.FloatRecord, error) {
	date, err := parseDate(h.get(rec, colExpenseDate), floatDateFormat, floatDateFormatLong)
	if err != nil {
		return model.FloatRecord{}, &ParseError{Row: num, Field: "date", Err: err}
	}

	merchant := h.get(rec, colMerchant)
	if merchant == "" {
		return model.FloatRecord{}, &ParseError{Row: num, Field: "merchant", Err: errors.New("missing required field")}
	}

	category := h.get(rec, colCategory)
	if category == "" {
		return model.FloatRecord{}, &ParseError{Row: num, Field: "category", Err: errors.New("missing required field")}
	}

	total, subtotal, tax, err := parseAmounts(h, rec, num)
	if err != nil {
		return model.FloatRecord{}, err
	}

	record := model.FloatRecord{
		Reference:   h.get(rec, colTransactionID),
		Date:        date,
		Description: h.get(rec, colDescription),
		Merchant:    merchant,
		Spender:     h.get(rec, colSpender),
		Category:    model.Category(strings.ToLower(category)),
		GLCode:      h.get(rec, colGLCode),
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		Currency:    h.get(rec, colCurrency),
	}
	return record, nil
}

func parseAmounts(h header, rec []string, num int) (total, subtotal, tax decimal.Decimal, err error) {
	raw := h.get(rec, colTotal)
	if raw == "" {
		return total, subtotal, tax, &ParseError{Row: num, Field: "total", Err: errors.New("missing required field")}
	}
	total, err = decimal.NewFromString(raw)
	if err != nil {
		return total, subtotal, tax, &ParseError{Row: num, Field: "total", Err: err}
	}

	if raw := h.get(rec, colSubtotal); raw != "" {
		subtotal, err = decimal.NewFromString(raw)
		if err != nil {
			return total, subtotal, tax, &ParseError{Row: num, Field: "subtotal", Err: err}
		}
	}
	if raw := h.get(rec, colTax); raw != "" {
		tax, err = decimal.NewFromString(raw)
		if err != nil {
			return total, subtotal, tax, &ParseError{Row: num, Field: "tax", Err: err}
		}
	}
	return total, subtotal, tax, nil
}

func parseDate(raw string, formats ...string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing required field")
	}
	var err error
	for _, f := range formats {
		var t time.Time
		if t, err = time.Parse(f, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: %w", raw, err)
}
