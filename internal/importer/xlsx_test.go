package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/float2qb-dev/float2qb/internal/model"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestXLSXParser_Parse(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Transaction ID", "Expense Date", "Merchant Name", "Category", "GL Code ID", "Subtotal", "Tax", "Total", "Currency"},
		{"FLT-20001", "25-01-03", "GITHUB", "purchase", "Software & Subscriptions", "4.00", "0.20", "4.20", "CAD"},
		{"FLT-20002", "25-01-05", "Float", "interest", "", "", "", "-1.02", "CAD"},
	})

	p := &XLSXParser{}
	rows, err := p.Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, rows[0].Err)
	assert.Equal(t, "FLT-20001", rows[0].Record.Reference)
	assert.Equal(t, "GITHUB", rows[0].Record.Merchant)
	assert.Equal(t, model.CategoryPurchase, rows[0].Record.Category)
	assert.Equal(t, "4.20", rows[0].Record.Total.StringFixed(2))

	require.NoError(t, rows[1].Err)
	assert.Equal(t, model.CategoryInterest, rows[1].Record.Category)
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	p := &XLSXParser{}
	_, err := p.Parse(bytes.NewBufferString("this is not a workbook"))
	assert.Error(t, err)
}

func TestXLSXParser_Format(t *testing.T) {
	p := &XLSXParser{}
	assert.Equal(t, "xlsx", p.Format())
}
