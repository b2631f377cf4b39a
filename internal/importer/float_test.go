package importer

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/float2qb-dev/float2qb/internal/model"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestFloatParser_Parse(t *testing.T) {
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(readFixture(t, "float_transactions.csv")))
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.NoError(t, row.Err, "row %d", row.Num)
	}

	// First: GitHub purchase with GST.
	first := rows[0].Record
	assert.Equal(t, "FLT-10231", first.Reference)
	assert.Equal(t, 2025, first.Date.Year())
	assert.Equal(t, 1, int(first.Date.Month()))
	assert.Equal(t, 3, first.Date.Day())
	assert.Equal(t, "GITHUB", first.Merchant)
	assert.Equal(t, "Dana Okafor", first.Spender)
	assert.Equal(t, model.CategoryPurchase, first.Category)
	assert.Equal(t, "Software & Subscriptions", first.GLCode)
	assert.Equal(t, "4.00", first.Subtotal.StringFixed(2))
	assert.Equal(t, "0.20", first.Tax.StringFixed(2))
	assert.Equal(t, "4.20", first.Total.StringFixed(2))
	assert.Equal(t, "CAD", first.Currency)

	// Second: interest credit, negative total.
	interest := rows[1].Record
	assert.Equal(t, model.CategoryInterest, interest.Category)
	assert.True(t, interest.Total.IsNegative())
	assert.Equal(t, "-1.02", interest.Total.StringFixed(2))

	// Fourth: export carried no transaction ID.
	assert.Empty(t, rows[3].Record.Reference)
	assert.Equal(t, model.CategoryRefund, rows[3].Record.Category)
}

func TestFloatParser_DetectsReimbursementHeader(t *testing.T) {
	// A file with a Report Name column is a reimbursement export even when
	// parsed through the plain float parser.
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(readFixture(t, "float_reimbursements.csv")))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		require.NoError(t, row.Err)
		assert.Equal(t, model.CategoryReimbursement, row.Record.Category)
	}
	assert.Equal(t, "A. Lee", rows[0].Record.Spender)
}

func TestFloatParser_BadDate(t *testing.T) {
	csv := "Expense Date,Merchant Name,Category,Total\nNOTADATE,GITHUB,purchase,4.20\n"
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var perr *ParseError
	require.ErrorAs(t, rows[0].Err, &perr)
	assert.Equal(t, 1, perr.Row)
	assert.Equal(t, "date", perr.Field)
}

func TestFloatParser_BadAmount(t *testing.T) {
	csv := "Expense Date,Merchant Name,Category,Total\n25-01-03,GITHUB,purchase,NOTANUMBER\n"
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var perr *ParseError
	require.ErrorAs(t, rows[0].Err, &perr)
	assert.Equal(t, "total", perr.Field)
}

func TestFloatParser_MissingMerchant(t *testing.T) {
	csv := "Expense Date,Merchant Name,Category,Total\n25-01-03,,purchase,4.20\n"
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var perr *ParseError
	require.ErrorAs(t, rows[0].Err, &perr)
	assert.Equal(t, "merchant", perr.Field)
}

func TestFloatParser_BadRowDoesNotAbortFile(t *testing.T) {
	csv := "Expense Date,Merchant Name,Category,Total\n" +
		"NOTADATE,GITHUB,purchase,4.20\n" +
		"25-01-03,GITHUB,purchase,4.20\n"
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Error(t, rows[0].Err)
	assert.NoError(t, rows[1].Err)
}

func TestFloatParser_ShortRow(t *testing.T) {
	csv := "Expense Date,Merchant Name,Category,Total\n25-01-03,GITHUB\n"
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, errors.As(rows[0].Err, new(*ParseError)))
}

func TestFloatParser_LongYearDates(t *testing.T) {
	csv := "Expense Date,Merchant Name,Category,Total\n2025-01-03,GITHUB,purchase,4.20\n"
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.NoError(t, rows[0].Err)
	assert.Equal(t, 2025, rows[0].Record.Date.Year())
}

func TestFloatParser_EmptyFile(t *testing.T) {
	p := &FloatParser{}
	rows, err := p.Parse(strings.NewReader("Expense Date,Merchant Name,Category,Total\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestFloatParser_Format(t *testing.T) {
	p := &FloatParser{}
	assert.Equal(t, "float", p.Format())
}
