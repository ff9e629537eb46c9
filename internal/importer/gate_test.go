package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog-service/internal/models"
)

func TestCanSyncCleanBatch(t *testing.T) {
	summary := Aggregate([]models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
	}, nil)

	assert.True(t, CanSync(summary))
}

func TestCanSyncWarningsDoNotBlock(t *testing.T) {
	summary := Aggregate([]models.ImportedRow{
		testRow("P1", "PL1", "Widget", 0, "Rs"), // zero MRP warning
	}, nil)

	assert.Equal(t, 1, summary.WarningRows)
	assert.True(t, CanSync(summary))
}

func TestCanSyncSingleErrorBlocksWholeBatch(t *testing.T) {
	summary := Aggregate([]models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
		testRow("P2", "PL1", "Gadget", -1, "Rs"),
	}, nil)

	assert.Equal(t, 1, summary.AcceptedRows)
	assert.False(t, CanSync(summary))
}

// Missing products are informational and never gate sync.
func TestCanSyncIgnoresMissingProducts(t *testing.T) {
	catalog := []models.CatalogProduct{activeProduct("P9")}
	summary := Aggregate([]models.ImportedRow{
		testRow("P1", "PL1", "Widget", 100, "Rs"),
	}, catalog)

	assert.NotEmpty(t, summary.MissingProducts)
	assert.True(t, CanSync(summary))
}
