package importer

import (
	"catalog-service/internal/models"
)

// Aggregate runs the validator over the full batch in file order and bundles
// the batch-level statistics: per-status and per-action counts plus the
// active catalog products absent from the import ("missing products").
// Purely functional: identical inputs always produce an identical summary,
// and no reference to the inputs outlives the call.
func Aggregate(batch []models.ImportedRow, catalog []models.CatalogProduct) models.ValidationSummary {
	summary := models.ValidationSummary{
		TotalRows:       len(batch),
		MissingProducts: make([]models.CatalogProduct, 0),
		Rows:            make([]models.ValidatedRow, 0, len(batch)),
	}

	// Any identifier present anywhere in the batch counts, even on rows
	// that themselves fail validation.
	batchSKUs := make(map[string]struct{}, len(batch))
	for _, row := range batch {
		if row.SKU != "" {
			batchSKUs[row.SKU] = struct{}{}
		}
	}

	for i, row := range batch {
		verdict := Validate(row, i, catalog, batch)
		summary.Rows = append(summary.Rows, models.ValidatedRow{
			ImportedRow: row,
			RowIndex:    i,
			Verdict:     verdict,
		})

		switch verdict.Status {
		case models.RowStatusAccepted:
			summary.AcceptedRows++
		case models.RowStatusError:
			summary.ErrorRows++
		case models.RowStatusWarning:
			summary.WarningRows++
		}

		switch verdict.Action {
		case models.RowActionInsert:
			summary.InsertCount++
		case models.RowActionUpdate:
			summary.UpdateCount++
		case models.RowActionSkip:
			summary.SkipCount++
		}
	}

	for i := range catalog {
		if catalog[i].Status != models.ProductStatusActive {
			continue
		}
		if _, inBatch := batchSKUs[catalog[i].SKU]; !inBatch {
			summary.MissingProducts = append(summary.MissingProducts, catalog[i])
		}
	}

	return summary
}
