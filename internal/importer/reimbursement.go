package importer

import (
	"errors"
	"io"

	"github.com/float2qb-dev/float2qb/internal/model"
)

// ReimbursementParser parses Float reimbursement exports. The requester is
// the payee; every row is a reimbursement regardless of any category column.
type ReimbursementParser struct{}

// Format returns the parser name.
func (p *ReimbursementParser) Format() string { return "float-reimbursement" }

// Parse reads a reimbursement CSV export and returns its rows.
func (p *ReimbursementParser) Parse(r io.Reader) ([]Row, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return parseAll(records, true)
}

func parseReimbursementRow(h header, rec []string, num int) (model.FloatRecord, error) {
	date, err := parseDate(h.get(rec, colExpenseDate), reimbDateFormat, reimbDateFormatLong)
	if err != nil {
		return model.FloatRecord{}, &ParseError{Row: num, Field: "date", Err: err}
	}

	requester := h.get(rec, colRequester)
	if requester == "" {
		return model.FloatRecord{}, &ParseError{Row: num, Field: "requester", Err: errors.New("missing required field")}
	}

	total, subtotal, tax, err := parseAmounts(h, rec, num)
	if err != nil {
		return model.FloatRecord{}, err
	}

	merchant := h.get(rec, colMerchant)
	if merchant == "" {
		merchant = requester
	}

	record := model.FloatRecord{
		Reference:   h.get(rec, colTransactionID),
		Date:        date,
		Description: h.get(rec, colDescription),
		Merchant:    merchant,
		Spender:     requester,
		Category:    model.CategoryReimbursement,
		GLCode:      h.get(rec, colGLCode),
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		Currency:    h.get(rec, colCurrency),
	}
	return record, nil
}
