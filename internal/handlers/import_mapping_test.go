package handlers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func TestProductFromRow(t *testing.T) {
	row := models.ImportedRow{
		SKU:         "P1",
		PricelistID: "PL1",
		Name:        "Widget",
		Description: "Standard widget",
		IsBox:       true,
		TaxRate1:    decimal.NewFromInt(9),
		MRP:         decimal.NewFromInt(100),
		MRPValid:    true,
		Currency:    "Rs",
	}

	product := productFromRow(row, "user-1")

	assert.Equal(t, "P1", product.SKU)
	assert.Equal(t, "PL1", product.PricelistID)
	assert.Equal(t, models.ProductStatusActive, product.Status)
	require.NotNil(t, product.Description)
	assert.Equal(t, "Standard widget", *product.Description)
	assert.Nil(t, product.UOMCode, "empty cells map to nil, not empty strings")
	require.NotNil(t, product.CreatedBy)
	assert.Equal(t, "user-1", *product.CreatedBy)
}

func TestUpdatesFromRow(t *testing.T) {
	row := models.ImportedRow{
		SKU:         "P1",
		PricelistID: "PL2",
		Name:        "Widget v2",
		MRP:         decimal.NewFromInt(120),
		MRPValid:    true,
		Currency:    "USD",
	}

	updates := updatesFromRow(row, "user-1")

	assert.Equal(t, "PL2", updates["pricelist_id"])
	assert.Equal(t, "Widget v2", updates["name"])
	assert.Equal(t, "USD", updates["currency"])
	assert.Equal(t, models.ProductStatusActive, updates["status"])
	assert.Equal(t, "user-1", updates["updated_by"])
	// Empty optional cells never clobber stored values.
	assert.NotContains(t, updates, "description")
	assert.NotContains(t, updates, "remark")
}
