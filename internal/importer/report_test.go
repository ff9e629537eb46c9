package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func TestFormatReport(t *testing.T) {
	batch := []models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
		testRow("P2", "PL1", "Gadget", -5, "Rs"),
	}
	batch[0].RowNumber = 2
	batch[1].RowNumber = 3
	summary := Aggregate(batch, nil)

	report := FormatReport(summary.Rows)
	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, `"rowNumber","status","action","sku","pricelistId","name","mrp","currency","remark"`, lines[0])
	assert.Equal(t, `"2","accepted","insert","P1","PL1","Widget","100","Rs","Product will be added"`, lines[1])
	assert.Equal(t, `"3","error","skip","P2","PL1","Gadget","-5","Rs","MRP must be greater than or equal to 0"`, lines[2])
}

func TestFormatReportEmpty(t *testing.T) {
	report := FormatReport(nil)
	assert.Equal(t, `"rowNumber","status","action","sku","pricelistId","name","mrp","currency","remark"`+"\n", report)
}

func TestCatalogExportRow(t *testing.T) {
	header := CatalogExportHeader()
	require.Len(t, header, 18)
	assert.Equal(t, "sku", header[0])
	assert.Equal(t, "updatedBy", header[17])

	desc := "Standard widget"
	p := models.CatalogProduct{
		SKU:         "P1",
		PricelistID: "PL1",
		Name:        "Widget",
		Description: &desc,
		IsBox:       true,
		Currency:    "Rs",
		Status:      models.ProductStatusActive,
	}

	row := CatalogExportRow(p, "Beverages", "Retail")
	require.Len(t, row, len(header))
	assert.Equal(t, "P1", row[0])
	assert.Equal(t, "Standard widget", row[3])
	assert.Equal(t, "true", row[6])
	assert.Equal(t, "false", row[7])
	assert.Equal(t, "ACTIVE", row[12])
	assert.Equal(t, "Beverages", row[13])
	assert.Equal(t, "Retail", row[14])
}
