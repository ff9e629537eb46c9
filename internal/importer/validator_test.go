package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"catalog-service/internal/models"
)

func testRow(sku, pricelist, name string, mrp int64, currency string) models.ImportedRow {
	return models.ImportedRow{
		SKU:         sku,
		PricelistID: pricelist,
		Name:        name,
		MRP:         decimal.NewFromInt(mrp),
		MRPValid:    true,
		Currency:    currency,
	}
}

func activeProduct(sku string) models.CatalogProduct {
	return models.CatalogProduct{
		SKU:    sku,
		Status: models.ProductStatusActive,
	}
}

func TestValidateNewProductAccepted(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 100, "Rs")

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusAccepted, verdict.Status)
	assert.Equal(t, models.RowActionInsert, verdict.Action)
	assert.Empty(t, verdict.Errors)
	assert.Empty(t, verdict.Warnings)
	assert.Equal(t, "Product will be added", verdict.Remark)
}

func TestValidateExistingProductUpdates(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 100, "Rs")
	catalog := []models.CatalogProduct{activeProduct("P1")}

	verdict := Validate(row, 0, catalog, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusAccepted, verdict.Status)
	assert.Equal(t, models.RowActionUpdate, verdict.Action)
	assert.Equal(t, "Product will be updated", verdict.Remark)
}

func TestValidateNegativeMRP(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", -5, "Rs")

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusError, verdict.Status)
	assert.Equal(t, models.RowActionSkip, verdict.Action)
	assert.Contains(t, verdict.Errors, "MRP must be greater than or equal to 0")
}

func TestValidateMalformedMRP(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 0, "Rs")
	row.MRPValid = false

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusError, verdict.Status)
	assert.Contains(t, verdict.Errors, "MRP must be greater than or equal to 0")
}

func TestValidateUnsupportedCurrency(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 100, "EUR")

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusError, verdict.Status)
	assert.Equal(t, models.RowActionSkip, verdict.Action)
	assert.Contains(t, verdict.Errors, `Currency "EUR" is not supported`)
}

func TestValidateDuplicateRowsBothFlagged(t *testing.T) {
	batch := []models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
		testRow("P1", "PL1", "Widget again", 120, "Rs"),
	}

	for i := range batch {
		verdict := Validate(batch[i], i, nil, batch)
		assert.Equal(t, models.RowStatusError, verdict.Status, "row %d", i)
		assert.Equal(t, models.RowActionSkip, verdict.Action, "row %d", i)
		assert.Contains(t, verdict.Errors, `Duplicate row for pricelist "PL1" and product "P1"`)
	}
}

func TestValidateSameSKUDifferentPricelistNotDuplicate(t *testing.T) {
	batch := []models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
		testRow("P1", "PL2", "Widget", 110, "Rs"),
	}

	for i := range batch {
		verdict := Validate(batch[i], i, nil, batch)
		assert.Equal(t, models.RowStatusAccepted, verdict.Status, "row %d", i)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		row     models.ImportedRow
		message string
	}{
		{"missing sku", testRow("", "PL1", "Widget", 100, "Rs"), "Product identifier is required"},
		{"missing pricelist", testRow("P1", "", "Widget", 100, "Rs"), "Pricelist identifier is required"},
		{"missing name", testRow("P1", "PL1", "", 100, "Rs"), "Product name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Validate(tt.row, 0, nil, []models.ImportedRow{tt.row})
			assert.Equal(t, models.RowStatusError, verdict.Status)
			assert.Equal(t, models.RowActionSkip, verdict.Action)
			assert.Contains(t, verdict.Errors, tt.message)
		})
	}
}

func TestValidateZeroMRPWarns(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 0, "Rs")

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusWarning, verdict.Status)
	assert.Equal(t, models.RowActionInsert, verdict.Action, "warnings never change the action")
	assert.Contains(t, verdict.Warnings, "MRP is zero")
	assert.Empty(t, verdict.Errors)
}

func TestValidateTaxRateOutOfRangeWarns(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 100, "Rs")
	row.TaxRate1 = decimal.NewFromInt(150)

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusWarning, verdict.Status)
	assert.Contains(t, verdict.Warnings, "Tax rate is outside 0-100")
}

func TestValidateErrorsTakePrecedenceOverWarnings(t *testing.T) {
	row := testRow("P1", "PL1", "Widget", 0, "EUR")

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusError, verdict.Status)
	assert.Equal(t, models.RowActionSkip, verdict.Action)
	assert.NotEmpty(t, verdict.Errors)
	assert.NotEmpty(t, verdict.Warnings)
}

func TestValidateMultipleErrorsJoinedInRemark(t *testing.T) {
	row := testRow("", "PL1", "Widget", -1, "EUR")

	verdict := Validate(row, 0, nil, []models.ImportedRow{row})

	assert.Equal(t, models.RowStatusError, verdict.Status)
	assert.Len(t, verdict.Errors, 3)
	assert.Contains(t, verdict.Remark, "MRP must be greater than or equal to 0")
	assert.Contains(t, verdict.Remark, "; ")
}

// Status is error exactly when at least one error fired, regardless of the
// rest of the verdict.
func TestValidateStatusMatchesErrors(t *testing.T) {
	rows := []models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
		testRow("P2", "PL1", "Gadget", -2, "Rs"),
		testRow("P3", "PL1", "Gizmo", 0, "Rs"),
		testRow("", "", "", 100, "USD"),
	}

	for i, row := range rows {
		verdict := Validate(row, i, nil, rows)
		if len(verdict.Errors) > 0 {
			assert.Equal(t, models.RowStatusError, verdict.Status, "row %d", i)
			assert.Equal(t, models.RowActionSkip, verdict.Action, "row %d", i)
		} else {
			assert.NotEqual(t, models.RowStatusError, verdict.Status, "row %d", i)
			assert.NotEqual(t, models.RowActionSkip, verdict.Action, "row %d", i)
		}
	}
}
