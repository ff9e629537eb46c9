package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	csv := "sku,pricelistId,name,description,isBox,taxRate1,mrp,currency\n" +
		"P1,PL1,Widget,Standard widget,yes,9,100.50,Rs\n" +
		"P2,PL1,Gadget,,false,,75,USD\n"

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "P1", rows[0].SKU)
	assert.Equal(t, "PL1", rows[0].PricelistID)
	assert.Equal(t, "Widget", rows[0].Name)
	assert.Equal(t, "Standard widget", rows[0].Description)
	assert.True(t, rows[0].IsBox)
	assert.Equal(t, "9", rows[0].TaxRate1.String())
	assert.Equal(t, "100.5", rows[0].MRP.String())
	assert.True(t, rows[0].MRPValid)
	assert.Equal(t, "Rs", rows[0].Currency)
	assert.Equal(t, 2, rows[0].RowNumber)

	assert.False(t, rows[1].IsBox)
	assert.Equal(t, 3, rows[1].RowNumber)
}

func TestParseCSVHeaderNormalization(t *testing.T) {
	// Headers from a downloaded template carry the required marker and
	// arbitrary casing.
	csv := "SKU *,PricelistID *,Name *,MRP *,Currency *\nP1,PL1,Widget,100,Rs\n"

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P1", rows[0].SKU)
	assert.Equal(t, "Rs", rows[0].Currency)
}

func TestParseCSVMissingRequiredColumn(t *testing.T) {
	csv := "sku,name,mrp\nP1,Widget,100\n"

	_, err := ParseCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "pricelistid")
	assert.Contains(t, err.Error(), "currency")
}

func TestParseCSVEmptyFile(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseCSV(strings.NewReader("sku,pricelistId,name,mrp,currency\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseCSVMalformedMRPCarried(t *testing.T) {
	csv := "sku,pricelistId,name,mrp,currency\nP1,PL1,Widget,abc,Rs\n"

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err, "bad cell values are verdicts, not parse errors")
	require.Len(t, rows, 1)
	assert.False(t, rows[0].MRPValid)
}

func TestParseCSVRaggedRows(t *testing.T) {
	csv := "sku,pricelistId,name,mrp,currency\nP1,PL1,Widget\n"

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Currency)
	assert.False(t, rows[0].MRPValid)
}

func buildXLSX(t *testing.T, sheet string, records [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.SetActiveSheet(index)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &record))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseXLSX(t *testing.T) {
	buf := buildXLSX(t, "Products", [][]interface{}{
		{"sku", "pricelistId", "name", "mrp", "currency"},
		{"P1", "PL1", "Widget", 100, "Rs"},
		{"P2", "PL1", "Gadget", 50.25, "USD"},
	})

	rows, err := ParseXLSX(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P1", rows[0].SKU)
	assert.True(t, rows[0].MRPValid)
	assert.Equal(t, "50.25", rows[1].MRP.String())
	assert.Equal(t, 3, rows[1].RowNumber)
}

func TestParseXLSXHeaderOnly(t *testing.T) {
	buf := buildXLSX(t, "Products", [][]interface{}{
		{"sku", "pricelistId", "name", "mrp", "currency"},
	})

	_, err := ParseXLSX(buf)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
