package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func mixedBatch() []models.ImportedRow {
	return []models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),   // update of existing P1
		testRow("P2", "PL1", "Gadget", 50, "USD"),   // new insert
		testRow("P3", "PL1", "Gizmo", -5, "Rs"),     // error: negative MRP
		testRow("P4", "PL1", "Doohickey", 0, "Rs"),  // warning: zero MRP
		testRow("", "PL1", "Nameless", 100, "Rs"),   // error: missing sku
	}
}

func TestAggregateCounts(t *testing.T) {
	catalog := []models.CatalogProduct{activeProduct("P1")}
	summary := Aggregate(mixedBatch(), catalog)

	assert.Equal(t, 5, summary.TotalRows)
	assert.Equal(t, 2, summary.AcceptedRows)
	assert.Equal(t, 2, summary.ErrorRows)
	assert.Equal(t, 1, summary.WarningRows)
	assert.Equal(t, 2, summary.InsertCount)
	assert.Equal(t, 1, summary.UpdateCount)
	assert.Equal(t, 2, summary.SkipCount)
}

// Both count triples partition the batch, whatever the mix.
func TestAggregateCountsPartitionTotal(t *testing.T) {
	catalog := []models.CatalogProduct{activeProduct("P1"), activeProduct("P9")}
	summary := Aggregate(mixedBatch(), catalog)

	assert.Equal(t, summary.TotalRows, summary.AcceptedRows+summary.ErrorRows+summary.WarningRows)
	assert.Equal(t, summary.TotalRows, summary.InsertCount+summary.UpdateCount+summary.SkipCount)
	assert.Len(t, summary.Rows, summary.TotalRows)
}

func TestAggregatePreservesFileOrder(t *testing.T) {
	summary := Aggregate(mixedBatch(), nil)

	require.Len(t, summary.Rows, 5)
	for i, row := range summary.Rows {
		assert.Equal(t, i, row.RowIndex)
	}
	assert.Equal(t, "P1", summary.Rows[0].SKU)
	assert.Equal(t, "P2", summary.Rows[1].SKU)
}

func TestAggregateMissingProducts(t *testing.T) {
	catalog := []models.CatalogProduct{
		activeProduct("P1"),
		activeProduct("P9"),
		{SKU: "P8", Status: models.ProductStatusInactive},
	}

	summary := Aggregate(mixedBatch(), catalog)

	// P1 appears in the batch; P9 does not; P8 is inactive and never counts.
	require.Len(t, summary.MissingProducts, 1)
	assert.Equal(t, "P9", summary.MissingProducts[0].SKU)
}

// A SKU mentioned on an error row still counts as present in the batch.
func TestAggregateErrorRowSKUStillCoversCatalog(t *testing.T) {
	batch := []models.ImportedRow{
		testRow("P3", "PL1", "Gizmo", -5, "Rs"), // error row, but P3 is mentioned
	}
	catalog := []models.CatalogProduct{activeProduct("P3")}

	summary := Aggregate(batch, catalog)

	assert.Equal(t, 1, summary.ErrorRows)
	assert.Empty(t, summary.MissingProducts)
}

func TestAggregateIdempotent(t *testing.T) {
	batch := mixedBatch()
	catalog := []models.CatalogProduct{activeProduct("P1"), activeProduct("P9")}

	first := Aggregate(batch, catalog)
	second := Aggregate(batch, catalog)

	assert.Equal(t, first, second)
}

func TestAggregateEmptyBatchReportsAllActiveMissing(t *testing.T) {
	catalog := []models.CatalogProduct{activeProduct("P1"), activeProduct("P2")}

	summary := Aggregate(nil, catalog)

	assert.Equal(t, 0, summary.TotalRows)
	assert.Len(t, summary.MissingProducts, 2)
	assert.NotNil(t, summary.Rows)
}
